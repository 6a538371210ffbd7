package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gocalc/internal/config"
	"github.com/njchilds90/gocalc/internal/logging"
	"github.com/njchilds90/gocalc/internal/metrics"
	"github.com/njchilds90/gocalc/internal/server"
)

func (a *app) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var m *metrics.Metrics
			if a.cfg.Metrics {
				m = metrics.New()
			}
			srv := server.New(a.cfg, a.eval, m, a.log)
			errChan := srv.Listen()

			if a.cfgPath != "" {
				w := config.NewWatcher(a.cfgPath, a.applyReload, a.log)
				go func() {
					if err := w.Run(ctx); err != nil {
						a.log.Warn().Err(err).Msg("config watcher stopped")
					}
				}()
			}

			select {
			case <-ctx.Done():
				a.log.Info().Msg("shutting down")
				return srv.GracefulShutdown()
			case err := <-errChan:
				return err
			}
		},
	}

	f := cmd.Flags()
	f.StringVar(&a.cfg.Listen, "listen", a.cfg.Listen, "Address to listen on")
	f.DurationVar(&a.cfg.ReadTimeout, "read-timeout", a.cfg.ReadTimeout, "HTTP read timeout")
	f.DurationVar(&a.cfg.WriteTimeout, "write-timeout", a.cfg.WriteTimeout, "HTTP write timeout")
	f.DurationVar(&a.cfg.ShutdownTimeout, "shutdown-timeout", a.cfg.ShutdownTimeout, "Graceful shutdown timeout")
	f.StringSliceVar(&a.cfg.CORSOrigins, "cors-origin", a.cfg.CORSOrigins, "Allowed CORS origin (repeatable)")
	f.BoolVar(&a.cfg.Metrics, "metrics", a.cfg.Metrics, "Expose Prometheus metrics on /metrics")
	f.Float64Var(&a.cfg.RateLimit, "rate-limit", a.cfg.RateLimit, "Per-client requests per second on compute routes (0 disables)")
	f.IntVar(&a.cfg.RateBurst, "rate-burst", a.cfg.RateBurst, "Per-client burst size on compute routes")
	f.IntVar(&a.cfg.MaxInFlight, "max-in-flight", a.cfg.MaxInFlight, "Evaluations allowed to run at once")
	f.StringVar(&a.cfg.Variable, "var", a.cfg.Variable, "Default variable for requests that omit it")
	return cmd
}

// applyReload hot-applies the log level from an edited config file. The
// other settings need a restart.
func (a *app) applyReload(fc config.FileConfig) {
	cfg := a.cfg
	if err := config.ApplyFileConfig(&cfg, fc, a.changed); err != nil {
		a.log.Warn().Err(err).Msg("ignoring invalid config")
		return
	}
	if err := config.ApplyEnvConfig(&cfg, a.changed); err != nil {
		a.log.Warn().Err(err).Msg("ignoring invalid environment")
		return
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		a.log.Warn().Err(err).Msg("ignoring invalid log level")
		return
	}
	a.log.Info().Str("log_level", cfg.LogLevel).Msg("log level applied")
}
