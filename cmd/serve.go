package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexander-bruun/placeholders/assets"
	"github.com/alexander-bruun/placeholders/config"
	"github.com/alexander-bruun/placeholders/handlers"
	"github.com/alexander-bruun/placeholders/placeholder"
	"github.com/alexander-bruun/placeholders/scheduler"
	"github.com/alexander-bruun/placeholders/watcher"
	fiber "github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve command
func NewServeCmd(flags *Flags, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the placeholder HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(flags, func(cfg *config.Config, store *assets.Store) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return serve(ctx, cfg, store, version)
			})
		},
	}
}

// newApp builds the fiber application with all routes registered
func newApp(cfg *config.Config, store *assets.Store, version string) (*fiber.App, error) {
	settings, err := cfg.Settings()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		ServerHeader:  "Placeholders",
		AppName:       fmt.Sprintf("Placeholders %s", version),
		BodyLimit:     cfg.Server.MaxUploadSize,
		ErrorHandler:  handlers.ErrorHandler,
	})

	handlers.Initialize(app, handlers.Options{
		Store:        store,
		Settings:     settings,
		WarmOnImport: cfg.Warm.OnImport,
	})
	return app, nil
}

func serve(ctx context.Context, cfg *config.Config, store *assets.Store, version string) error {
	settings, err := cfg.Settings()
	if err != nil {
		return err
	}

	app, err := newApp(cfg, store, version)
	if err != nil {
		return err
	}

	if cfg.Warm.Schedule != "" {
		sched := scheduler.NewCronScheduler()
		job := &scheduler.WarmJob{
			Context: ctx,
			WarmFunc: func(ctx context.Context) (int, error) {
				return store.WarmAll(ctx, settings)
			},
		}
		if err := sched.AddJob(job.Name(), cfg.Warm.Schedule, job); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
		if next, ok := sched.NextRun(job.Name()); ok {
			log.Infof("Next placeholder warm-up at %s", next.Format(time.RFC3339))
		}
	}

	if cfg.Watch.Directory != "" {
		w, err := watcher.New(cfg.Watch.Directory, cfg.Watch.Debounce, importAndWarm(store, settings, cfg.Warm.OnImport))
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
		go drainWatchResults(ctx, w.Results())
	}

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Infof("Listening on %s", addr)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	return app.ShutdownWithTimeout(shutdownTimeout)
}

// importAndWarm returns the watcher callback: import the file, then
// optionally generate its default placeholders
func importAndWarm(store *assets.Store, settings placeholder.Settings, warm bool) watcher.ImportFunc {
	return func(ctx context.Context, path string) error {
		asset, err := store.ImportFile(ctx, path)
		if err != nil {
			return err
		}
		log.Infof("Imported '%s' as asset %d", path, asset.ID)
		if !warm {
			return nil
		}
		img, err := store.Image(asset.ID)
		if err != nil {
			return err
		}
		return assets.Warm(ctx, img, settings)
	}
}

// drainWatchResults keeps the result channel from filling up; failures are
// already logged by the watcher
func drainWatchResults(ctx context.Context, results <-chan watcher.Result) {
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-results:
			if r.Err == nil {
				log.Debugf("Watch folder import finished: %s", r.Path)
			}
		}
	}
}
