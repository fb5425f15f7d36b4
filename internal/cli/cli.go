package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowgrid/pkg/buildinfo"
	"github.com/matzehuels/flowgrid/pkg/cache"
	"github.com/matzehuels/flowgrid/pkg/config"
	"github.com/matzehuels/flowgrid/pkg/layout"
	"github.com/matzehuels/flowgrid/pkg/metrics"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "flowgrid"

	// defaultWidth is the container width when neither flag nor config
	// sets one.
	defaultWidth = 1200.0
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Flowgrid arranges images and text blocks into gallery layouts",
		Long:         `Flowgrid computes justified, masonry, square and single-column layouts for lists of images and text blocks, from the command line, in a terminal preview, or over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.samplesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Layout settings shared by layout and preview
// =============================================================================

// layoutFlags are the flags that shape a layout. Flags win over the config
// file; the config file wins over built-in defaults.
type layoutFlags struct {
	configPath string
	strategy   string
	gutter     float64
	width      float64
	viewport   float64
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "config file (.toml, .yaml, .json)")
	cmd.Flags().StringVarP(&f.strategy, "strategy", "t", "", "layout strategy: justified, masonry, square, overflow-height, fit-screen")
	cmd.Flags().Float64Var(&f.gutter, "gutter", 0, "space between items")
}

// settings is the resolved outcome of layoutFlags.
type settings struct {
	file     config.File
	strategy layout.Strategy
	options  layout.Options
	debounce time.Duration
}

func (f *layoutFlags) resolve(cmd *cobra.Command) (settings, error) {
	var s settings
	if f.configPath != "" {
		file, err := config.Load(f.configPath)
		if err != nil {
			return s, err
		}
		s.file = file
	}
	if cmd.Flags().Changed("gutter") {
		s.file.Gutter = f.gutter
	}
	if f.strategy != "" {
		s.file.Strategy = f.strategy
	}

	var err error
	if s.strategy, err = s.file.StrategyValue(); err != nil {
		return s, err
	}
	if s.options, err = s.file.Options(); err != nil {
		return s, err
	}
	if s.debounce, err = s.file.DebounceValue(); err != nil {
		return s, err
	}
	return s, nil
}

// =============================================================================
// Metrics resolver and cache
// =============================================================================

// newCache picks the metrics cache backend: none, redis when an address is
// configured, otherwise the file cache.
func newCache(ctx context.Context, sec config.CacheSection, noCache bool, redisAddr string) (cache.Cache, error) {
	if noCache || sec.Disabled {
		return cache.NewNullCache(), nil
	}
	rc := sec.Redis
	if redisAddr != "" {
		rc.Addr = redisAddr
	}
	if rc.Addr != "" {
		return cache.NewRedisCache(ctx, rc)
	}

	dir := sec.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// newResolver measures local files relative to baseDir and remote images
// over HTTP, caching results per base directory.
func newResolver(baseDir string, c cache.Cache) metrics.Resolver {
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	inner := metrics.NewSchemeResolver(metrics.NewFileResolver(baseDir), metrics.NewHTTPResolver(nil))
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), cache.Hash([]byte(baseDir))[:12]+":")
	return metrics.NewCachedResolver(inner, c, keyer)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/flowgrid/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
