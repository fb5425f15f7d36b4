// Package pkg provides the core libraries for Flowgrid gallery layouts.
//
// # Overview
//
// Flowgrid arranges an ordered list of images and text blocks inside a
// container of a given width. Each layout strategy turns items with known
// aspect ratios into absolute placements: position, size, and a crop offset
// when an item is scaled to cover a frame of a different shape.
//
// The pkg directory is organized into three areas:
//
//  1. Domain logic: [item], [layout], [responsive]
//  2. Session state: [engine]
//  3. Infrastructure: [metrics], [cache], [config], [observability]
//
// # Architecture
//
// The typical data flow through Flowgrid:
//
//	items file / HTTP request
//	         ↓
//	    [item] package (normalize inputs, reject invalid items)
//	         ↓
//	    [metrics] package (measure images that declare no size)
//	         ↓
//	    [responsive] package (apply breakpoint overrides for the width)
//	         ↓
//	    [layout] package (compute placements)
//	         ↓
//	    placements JSON / terminal preview
//
// [engine] ties these together into a long-lived session with resize
// debouncing, asynchronous measurement and change notifications.
//
// # Quick Start
//
// Compute a justified layout directly:
//
//	items := []item.Item{
//	    {ID: "a", Kind: item.KindImage, Src: "a.jpg", AspectRatio: 1.5},
//	    {ID: "b", Kind: item.KindImage, Src: "b.jpg", AspectRatio: 0.75},
//	}
//	p := layout.Options{Gutter: 8}.Params(layout.Justified)
//	placements, err := layout.Compute(layout.Justified, items, 1200, p)
//
// Or run a session that measures images and follows the container:
//
//	eng, _ := engine.New(engine.Config{Strategy: layout.Masonry, Width: 1200},
//	    engine.WithResolver(metrics.NewFileResolver("photos")),
//	    engine.WithListener(listener),
//	)
//	defer eng.Destroy()
//	eng.SetItems(inputs)
//	eng.Resize(800)
//
// # Main Packages
//
// ## Domain Logic
//
// [item] - Item inputs (bare sources or records), normalization into items
// with stable IDs, and the items file format.
//
// [layout] - The closed set of strategies (justified, masonry, square,
// overflow-height, fit-screen), their parameters, per-strategy option
// records and the placements result format.
//
// [responsive] - Breakpoint tables: validation and resolution of the
// overrides in effect at a container width.
//
// ## Session State
//
// [engine] - A layout session behind a single-writer lock. Accepts item
// batches, strategy and option changes, and resizes; resolves missing image
// metrics in bounded parallel batches; reports results and per-item errors
// through a Listener.
//
// ## Infrastructure
//
// [metrics] - Image dimension resolvers for local files and HTTP URLs, with
// a cached wrapper.
//
// [cache] - Byte caches (file, Redis, memory, null) and key builders shared
// by the metrics resolver and the CLI layout cache.
//
// [config] - TOML, YAML and JSON configuration files.
//
// [observability] - Hook registry for engine, cache and resolver events,
// implemented by the HTTP server's Prometheus collectors.
//
// [samples] - Numbered placeholder images for trying out layouts.
//
// [errors] - Code-typed errors shared by every package.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/layout/...       # Specific package
//	go test -run Example ./pkg/... # Examples only
//
// [item]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/item
// [layout]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/layout
// [responsive]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/responsive
// [engine]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/engine
// [metrics]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/metrics
// [cache]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/observability
// [samples]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/samples
// [errors]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/errors
package pkg
