package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowgrid/internal/httpapi"
	"github.com/matzehuels/flowgrid/pkg/cache"
	"github.com/matzehuels/flowgrid/pkg/config"
	"github.com/matzehuels/flowgrid/pkg/observability"
)

// serveCommand creates the serve command for the HTTP layout service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		configPath string
		redisAddr  string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP layout service",
		Long: `Run the HTTP layout service.

POST an item list to /v1/layout and receive placements as JSON. The config
file (if any) supplies defaults for requests that carry no config of their
own. Prometheus metrics are exposed on /metrics.

Responses are cached in memory, or in Redis when an address is given
(--redis or [cache.redis] in the config file) so several servers share them.

The server shuts down gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var file config.File
			if configPath != "" {
				var err error
				if file, err = config.Load(configPath); err != nil {
					return err
				}
			}
			return runServe(cmd.Context(), file, serveAddr(addr, file), noCache, redisAddr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default "+httpapi.DefaultAddr+")")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (.toml, .yaml, .json)")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for a shared response cache (host:port)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the response cache")

	return cmd
}

// serveAddr picks the listen address: flag, then config, then default.
func serveAddr(flag string, file config.File) string {
	switch {
	case flag != "":
		return flag
	case file.Server.Addr != "":
		return file.Server.Addr
	default:
		return httpapi.DefaultAddr
	}
}

// serveCache picks the response cache: none, redis when an address is
// configured, otherwise the server's bounded in-process cache (nil).
func serveCache(ctx context.Context, sec config.CacheSection, noCache bool, redisAddr string) (cache.Cache, error) {
	if noCache || sec.Disabled {
		return cache.NewNullCache(), nil
	}
	rc := sec.Redis
	if redisAddr != "" {
		rc.Addr = redisAddr
	}
	if rc.Addr == "" {
		return nil, nil
	}
	return cache.NewRedisCache(ctx, rc)
}

func runServe(ctx context.Context, file config.File, addr string, noCache bool, redisAddr string) error {
	logger := loggerFromContext(ctx)

	store, err := serveCache(ctx, file.Cache, noCache, redisAddr)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	if store != nil {
		defer store.Close()
	}

	srv, err := httpapi.New(httpapi.Config{
		Logger:   logger,
		Defaults: file,
		Cache:    store,
	})
	if err != nil {
		return err
	}
	srv.Metrics().Install()
	defer observability.Reset()

	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
