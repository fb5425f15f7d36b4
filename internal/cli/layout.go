package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowgrid/pkg/cache"
	"github.com/matzehuels/flowgrid/pkg/engine"
	"github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/item"
	"github.com/matzehuels/flowgrid/pkg/layout"
)

// layoutCommand creates the layout command for computing placements.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags     layoutFlags
		output    string
		noCache   bool
		redisAddr string
	)

	cmd := &cobra.Command{
		Use:   "layout [items.json]",
		Short: "Compute placements for an items file",
		Long: `Compute placements for an items file.

The items file is a JSON array (or {"items": [...]}) of image paths, image
URLs, or item records. Images without declared dimensions are measured;
relative paths resolve against the items file's directory.

The output is a placements file (<input>.placements.json) holding the
strategy, container width, total height and one placement per item.

Measured dimensions and finished layouts are cached locally for faster
subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], s, flags, output, noCache, redisAddr)
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64VarP(&flags.width, "width", "w", defaultWidth, "container width")
	cmd.Flags().Float64Var(&flags.viewport, "viewport-height", 0, "viewport height (required by fit-screen)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.placements.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for a shared cache (host:port)")

	return cmd
}

// cachedLayout is the layout cache payload: the result plus the messages of
// items the run rejected, so a cache hit reports the same warnings.
type cachedLayout struct {
	Result   layout.Result `json:"result"`
	Rejected []string      `json:"rejected,omitempty"`
}

// runLayout reads the items file, computes the layout and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, s settings, flags layoutFlags, output string, noCache bool, redisAddr string) error {
	if flags.width <= 0 {
		return errors.Configuration("width must be positive, got %v", flags.width)
	}

	raw, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read items %s: %w", input, err)
	}
	inputs, err := item.ReadInputs(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("load items %s: %w", input, err)
	}

	store, err := newCache(ctx, s.file.Cache, noCache, redisAddr)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer store.Close()

	baseDir := filepath.Dir(input)
	key := layoutKey(baseDir, s, flags, raw)

	res, rejected, cached := c.lookupLayout(ctx, store, key)
	if !cached {
		res, rejected, err = c.computeLayout(ctx, inputs, baseDir, store, s, flags)
		if err != nil {
			return err
		}
		if data, err := json.Marshal(cachedLayout{Result: res, Rejected: rejected}); err == nil {
			if err := store.Set(ctx, key, data, cache.LayoutTTL); err != nil {
				c.Logger.Warn("layout cache write failed", "error", err)
			}
		}
	}

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".placements.json"
	}
	if err := layout.WriteResultFile(res, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(len(res.Placements), len(rejected), res.Height, cached)
	for _, msg := range rejected {
		printWarning("%s", msg)
	}
	printNewline()
	printNextStep("Preview", "flowgrid preview "+input)
	return nil
}

// computeLayout runs an engine over inputs and waits for every metrics
// batch to settle.
func (c *CLI) computeLayout(ctx context.Context, inputs []item.Input, baseDir string, store cache.Cache, s settings, flags layoutFlags) (layout.Result, []string, error) {
	var (
		mu       sync.Mutex
		rejected []string
	)
	listener := engine.ListenerFuncs{
		Error: func(err error) {
			mu.Lock()
			rejected = append(rejected, err.Error())
			mu.Unlock()
		},
	}

	cfg := engine.Config{
		Strategy: s.strategy,
		Options:  s.options,
		Width:    flags.width,
		Debounce: engine.NoDebounce,
	}
	if flags.viewport > 0 {
		h := flags.viewport
		cfg.Viewport = func() float64 { return h }
	}

	eng, err := engine.New(cfg,
		engine.WithLogger(c.Logger),
		engine.WithResolver(newResolver(baseDir, store)),
		engine.WithListener(listener),
	)
	if err != nil {
		return layout.Result{}, nil, err
	}
	defer eng.Destroy()

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, fmt.Sprintf("Computing %s layout...", s.strategy))
	spinner.Start()

	if err := eng.SetItems(inputs); err != nil {
		spinner.StopWithError("Layout failed")
		return layout.Result{}, nil, err
	}
	if err := eng.Wait(ctx); err != nil {
		spinner.StopWithError("Layout cancelled")
		return layout.Result{}, nil, err
	}
	spinner.Stop()

	ps := eng.Placements()
	prog.done(fmt.Sprintf("Laid out %d items", len(ps)))

	mu.Lock()
	defer mu.Unlock()
	return layout.NewResult(eng.Strategy(), eng.Width(), eng.Params(), ps), rejected, nil
}

// lookupLayout looks up a finished layout. Backend errors count as misses.
func (c *CLI) lookupLayout(ctx context.Context, store cache.Cache, key string) (layout.Result, []string, bool) {
	data, ok, err := store.Get(ctx, key)
	if err != nil {
		c.Logger.Debug("layout cache read failed", "error", err)
		return layout.Result{}, nil, false
	}
	if !ok {
		return layout.Result{}, nil, false
	}
	var entry cachedLayout
	if err := json.Unmarshal(data, &entry); err != nil || !entry.Result.Strategy.Valid() {
		c.Logger.Debug("discarding corrupt layout cache entry", "key", key)
		return layout.Result{}, nil, false
	}
	return entry.Result, entry.Rejected, true
}

// layoutKey identifies one layout run: its options, container and the raw
// items file contents, scoped to the directory relative sources resolve in.
func layoutKey(baseDir string, s settings, flags layoutFlags, raw []byte) string {
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), cache.Hash([]byte(baseDir))[:12]+":")
	return keyer.LayoutKey(cache.LayoutKeyOpts{
		Strategy: string(s.strategy),
		Width:    flags.width,
		Params: struct {
			Options        layout.Options `json:"options"`
			ViewportHeight float64        `json:"viewport_height,omitempty"`
		}{s.options, flags.viewport},
		ItemsHash: cache.Hash(raw),
	})
}
