// Command examportal runs the exam portal backend: the PWA install
// prompt service and the offline capability diagnostics suite.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/api"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/capability"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/conf"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/datastore"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/datastore/repository"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/installprompt"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/logger"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/offline"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/session"
)

// shutdownTimeout bounds the graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "examportal",
		Short:         "Exam portal install prompt and diagnostics server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the portal HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	root.AddCommand(serve)
	root.RunE = serve.RunE // bare invocation serves
	return root
}

func runServe(ctx context.Context, configPath string) error {
	settings, err := conf.Load(configPath)
	if err != nil {
		return err
	}

	level := logger.LogLevelInfo
	if settings.WebServer.Debug {
		level = logger.LogLevelDebug
	}
	log := logger.NewSlogLogger(os.Stdout, level, []logger.Field{
		logger.String("service", "examportal"),
	})

	db, err := datastore.Open(settings.Database.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := datastore.Close(db); err != nil {
			log.Error("failed to close database", logger.Error(err))
		}
	}()
	probeRuns := repository.NewProbeRunRepository(db)
	installEvents := repository.NewInstallEventRepository(db)

	bus := installprompt.NewEventBus()
	defer bus.Stop()
	eventRecorder := installprompt.NewRecorder(installEvents, log)
	bus.Subscribe(eventRecorder.HandleEvent)

	sessions := session.NewManager(settings.Session.Secret, settings.Session.CookieName)

	offlineSvc := offline.NewService()
	defer offlineSvc.Network.Close()

	prompts := installprompt.NewManager(func(sessionID string) *installprompt.Controller {
		data := sessions.Data(sessionID)
		return installprompt.NewController(installprompt.Config{
			SessionID:   sessionID,
			RevealDelay: settings.InstallPrompt.RevealDelay.Std(),
			Standalone:  data.Standalone,
			Dismissal:   data,
			Bus:         bus,
			Log:         log,
		})
	})
	defer prompts.Close()

	suite := capability.NewDefaultSuite(capability.SuiteConfig{
		Service:           offlineSvc,
		WorkerScope:       "/",
		ManifestURL:       resolveManifestURL(settings),
		ObservationWindow: settings.Diagnostics.ObservationWindow.Std(),
		ScratchDir:        settings.Diagnostics.ScratchDir,
		Log:               log,
	})
	probeRecorder := capability.NewRecorder(probeRuns, log)
	probeRecorder.StartCleanup(settings.Diagnostics.HistoryRetentionDays)
	defer probeRecorder.Stop()

	server := api.New(api.Config{
		Settings:      settings,
		Sessions:      sessions,
		Offline:       offlineSvc,
		Prompts:       prompts,
		Bus:           bus,
		Suite:         suite,
		Recorder:      probeRecorder,
		ProbeRuns:     probeRuns,
		InstallEvents: installEvents,
		Registry:      prometheus.NewRegistry(),
		Log:           log,
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// resolveManifestURL turns a path-relative manifest URL into one the
// probe's HTTP client can fetch against this server.
func resolveManifestURL(settings *conf.Settings) string {
	u := settings.Diagnostics.ManifestURL
	if !strings.HasPrefix(u, "/") {
		return u
	}
	host := settings.WebServer.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d%s", host, settings.WebServer.Port, u)
}
