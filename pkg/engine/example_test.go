package engine_test

import (
	"fmt"

	"github.com/matzehuels/flowgrid/pkg/engine"
	"github.com/matzehuels/flowgrid/pkg/item"
	"github.com/matzehuels/flowgrid/pkg/layout"
)

func ExampleEngine() {
	e, err := engine.New(engine.Config{
		Strategy: layout.Square,
		Options:  layout.Options{Gutter: 10},
		Width:    620,
		Debounce: engine.NoDebounce,
	}, engine.WithListener(engine.ListenerFuncs{
		Error: func(err error) { fmt.Println("rejected:", err) },
	}))
	if err != nil {
		panic(err)
	}
	defer e.Destroy()

	_ = e.SetItems([]item.Input{
		{ID: "a", Src: "a.jpg", Width: 400, Height: 400},
		{ID: "b", Src: "b.jpg", Width: 800, Height: 400},
		{ID: "c", Src: "c.jpg", Width: -1, Height: 400},
	})
	for _, p := range e.Placements() {
		fmt.Printf("%s at (%.0f,%.0f) %.0fx%.0f crop=%v\n", p.ItemID, p.X, p.Y, p.Width, p.Height, p.Crop)
	}
	// Output:
	// rejected: item 2: INVALID_ITEM: width must be positive, got -1
	// a at (0,0) 200x200 crop=false
	// b at (210,0) 200x200 crop=true
}
