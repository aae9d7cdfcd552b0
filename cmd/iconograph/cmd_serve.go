package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"iconograph/internal/config"
	"iconograph/internal/generation"
	"iconograph/internal/imagesearch"
	"iconograph/internal/logging"
	"iconograph/internal/server"
	"iconograph/internal/stats"
	"iconograph/internal/survey"
)

var noBrowser bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runServe(cfg)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&noBrowser, "no-browser", false,
		"resolve images with plain HTTP instead of a headless browser")
}

func runServe(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := generation.NewClientFromConfig(ctx, cfg.LLM, cfg.LLMTimeout())
	if err != nil {
		return err
	}

	store, err := stats.OpenStore(cfg.Stats.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()
	tracker := stats.NewTracker(cfg.Stats.RecentLimit, store)

	pipeline := survey.NewPipeline(client, sessionOpener(cfg), tracker)
	srv := server.New(cfg.Server.Addr, pipeline, tracker, logger)
	reporter := stats.NewReporter(tracker, cfg.ReportInterval())

	logging.Boot("serve: addr=%s provider=%s model=%s", cfg.Server.Addr, cfg.LLM.Provider, cfg.LLM.Model)
	logger.Info("starting server",
		zap.String("addr", cfg.Server.Addr),
		zap.String("provider", cfg.LLM.Provider))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		err := reporter.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		logging.Boot("serve: shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// sessionOpener picks the image discovery strategy: a headless browser by
// default, a static HTML fetch when disabled.
func sessionOpener(cfg *config.Config) survey.SessionOpener {
	icfg := imagesearch.DefaultConfig()
	icfg.Headless = cfg.Browser.Headless
	icfg.Launch = cfg.Browser.Launch
	icfg.DebuggerURL = cfg.Browser.DebuggerURL
	icfg.NavigationTimeout = cfg.NavigationTimeout()
	icfg.MinImageWidth = cfg.Browser.MinImageWidth
	icfg.MinImageHeight = cfg.Browser.MinImageHeight
	icfg.ResultIndex = cfg.Browser.ResultIndex

	if noBrowser {
		finder := imagesearch.NewStaticFinder(icfg)
		return survey.SessionOpenerFunc(func(ctx context.Context) (survey.ImageSession, error) {
			return finder, nil
		})
	}

	mgr := imagesearch.NewManager(icfg)
	return survey.SessionOpenerFunc(func(ctx context.Context) (survey.ImageSession, error) {
		return mgr.OpenSession(ctx)
	})
}
