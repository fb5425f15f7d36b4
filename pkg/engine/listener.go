package engine

import "github.com/matzehuels/flowgrid/pkg/layout"

// Listener receives engine notifications.
//
// Methods are called synchronously while the engine lock is held: they
// must return quickly and must not call back into the Engine.
type Listener interface {
	// OnLayoutComputed delivers a fresh placement set. The slice is a copy
	// the listener may keep.
	OnLayoutComputed(placements []layout.Placement, strategy layout.Strategy)

	// OnLayoutChange reports a strategy switch, before the placements
	// computed under the new strategy are delivered.
	OnLayoutChange(strategy layout.Strategy)

	// OnError reports a rejected item or an aborted operation. Use
	// errors.GetCode to classify it.
	OnError(err error)
}

// NoopListener ignores every notification.
type NoopListener struct{}

func (NoopListener) OnLayoutComputed([]layout.Placement, layout.Strategy) {}
func (NoopListener) OnLayoutChange(layout.Strategy)                      {}
func (NoopListener) OnError(error)                                       {}

// ListenerFuncs adapts optional callbacks to Listener. Nil fields are
// skipped.
type ListenerFuncs struct {
	LayoutComputed func([]layout.Placement, layout.Strategy)
	LayoutChange   func(layout.Strategy)
	Error          func(error)
}

func (f ListenerFuncs) OnLayoutComputed(ps []layout.Placement, s layout.Strategy) {
	if f.LayoutComputed != nil {
		f.LayoutComputed(ps, s)
	}
}

func (f ListenerFuncs) OnLayoutChange(s layout.Strategy) {
	if f.LayoutChange != nil {
		f.LayoutChange(s)
	}
}

func (f ListenerFuncs) OnError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}

var (
	_ Listener = NoopListener{}
	_ Listener = ListenerFuncs{}
)
