package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/sftpext/sftpext"
	"github.com/sftpext/sftpext/internal/metrics"
)

func (a *app) watchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch PATH",
		Short: "Export filesystem statistics for PATH as Prometheus metrics",
		Long: `Poll statvfs for PATH, and limits when the server advertises them,
every --interval, exporting the values as Prometheus gauges on --listen.
Stops on SIGINT or SIGTERM.

Examples:
  sftpext watch /data --listen :9100 --interval 30s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.watch(cmd.Context(), args[0]); err != nil {
				return errors.Wrap(err, "watch failed")
			}
			return nil
		},
	}

	cmd.Flags().Duration("interval", time.Minute, "polling interval")
	cmd.Flags().String("listen", "", "address to serve /metrics on, e.g. :9100")

	return cmd
}

func (a *app) watch(ctx context.Context, path string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.registry = prometheus.NewRegistry()
	m := metrics.New(a.registry)
	a.observer = m

	if addr := a.cfg.Metrics.Listen; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server failed", "error", err)
			}
		}()

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		a.logger.Info("serving metrics", "addr", addr)
	}

	mgr, closer, err := a.manager()
	if err != nil {
		return err
	}
	defer closer.Close()

	return mgr.Do(ctx, func(cl *sftpext.Client) error {
		ticker := time.NewTicker(a.cfg.Watch.Interval)
		defer ticker.Stop()

		for {
			if err := a.sample(ctx, cl, m, path); err != nil {
				return err
			}

			select {
			case <-ctx.Done():
				a.logger.Info("stopping watch")
				return nil
			case <-ticker.C:
			}
		}
	})
}

// sample polls once. Errors the client recovers from are logged, all others end the watch.
func (a *app) sample(ctx context.Context, cl *sftpext.Client, m *metrics.Metrics, path string) error {
	st, err := cl.StatVFSContext(ctx, path)
	switch {
	case err == nil:
		m.SetStatVFS(path, st.Map())
		a.logger.Debug("statvfs sample", "path", path, "avail", st.AvailableSpace(), "total", st.TotalSpace())
	case ctx.Err() != nil:
		return nil
	case errors.Is(err, sftpext.ErrConnectionBroken), errors.Is(err, sftpext.ErrExtensionUnsupported):
		return err
	default:
		a.logger.Warn("statvfs failed", "path", path, "error", err)
	}

	if !cl.HasExtension(sftpext.ExtensionLimits) {
		return nil
	}

	l, err := cl.LimitsContext(ctx)
	switch {
	case err == nil:
		m.SetLimits(l.Map())
	case ctx.Err() != nil:
		return nil
	case errors.Is(err, sftpext.ErrConnectionBroken):
		return err
	default:
		a.logger.Warn("limits failed", "error", err)
	}

	return nil
}
