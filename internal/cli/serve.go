package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/matzehuels/matlayer/pkg/api"
	"github.com/matzehuels/matlayer/pkg/cache"
	"github.com/matzehuels/matlayer/pkg/config"
	"github.com/matzehuels/matlayer/pkg/export"
	"github.com/matzehuels/matlayer/pkg/observability"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layer engine over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "listen address")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	rc, err := c.serveCache()
	if err != nil {
		return err
	}
	defer rc.Close()

	matOpts, err := c.materialOptions()
	if err != nil {
		return err
	}
	metrics := api.NewMetrics()
	metrics.Install()
	defer observability.Reset()

	srv := api.New(store,
		api.WithLogger(c.Logger),
		api.WithMetrics(metrics),
		api.WithCache(rc, cache.NewScopedKeyer(nil, "api:")),
		api.WithExportSettings(export.FromConfig(c.cfg.Export)),
		api.WithMaterialOptions(matOpts...),
	)

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- httpSrv.ListenAndServe() }()

	printSuccess("Serving on http://%s", addr)
	printKeyValue("Store", c.cfg.Store.Backend)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// serveCache shares renders through Redis when documents live there, and
// falls back to the local file cache otherwise.
func (c *CLI) serveCache() (cache.Cache, error) {
	if c.noCache || c.cfg.Store.Backend != config.BackendRedis {
		return c.newCache()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     c.cfg.Store.RedisAddr,
		Password: c.cfg.Store.RedisPassword,
		DB:       c.cfg.Store.RedisDB,
	})
	return cache.NewRedisCache(client, config.AppName+":render:"), nil
}
