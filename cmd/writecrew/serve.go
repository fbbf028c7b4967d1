package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kimhons/ai-writing-platform-sub000/internal/config"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/backend"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/guardrails"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/guardrails/deviation"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/guardrails/hallucination"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/guardrails/quality"
	wmetrics "github.com/kimhons/ai-writing-platform-sub000/pkg/metrics"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/orchestrator"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/router"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/submission"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the submission HTTP server and the /metrics listener",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	level, err := logrusLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	log.SetLevel(level)
	logEntry := log.WithField("component", "cmd.serve")

	zapLevel := zap.NewAtomicLevel()
	if err := zapLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		zapLevel.SetLevel(zap.InfoLevel)
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zapLevel
	zapLog, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("serve: building guardrail logger: %w", err)
	}
	defer func() { _ = zapLog.Sync() }()

	gen := buildBackend(cfg.Backend, logEntry)

	reg := worker.NewRegistry()
	generate := func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		resp, err := gen.Generate(ctx, backend.GenerateRequest{Prompt: prompt, MaxTokens: maxTokens})
		if err != nil {
			return "", err
		}
		return resp.Content, nil
	}
	if err := reg.Register(worker.NewGeneralist(generate, cfg.Scheduler.DefaultTaskTimeout, logEntry)); err != nil {
		return fmt.Errorf("serve: registering workers: %w", err)
	}

	rt := router.New(reg, gen, cfg.Permissions.ElevateOnDestructiveIntent, logEntry)

	hallucinationChecker := hallucination.New(gen, cfg.Guardrails.VerificationCacheSize, zapLog.Named("hallucination"))
	qualityChecker := quality.New(gen, zapLog.Named("quality"))
	deviationChecker := deviation.New(gen, zapLog.Named("deviation"))
	pipeline := guardrails.NewPipeline(hallucinationChecker, qualityChecker, deviationChecker, zapLog.Named("guardrails"))

	orch := orchestrator.New(reg, cfg.Scheduler, pipeline, logEntry)
	stopRetention := orch.StartRetention(cfg.Retention)
	defer stopRetention()

	sub := submission.New(rt, orch, logEntry)

	metricsSrv := wmetrics.NewServer(cfg.Server.MetricsPort, log)
	metricsSrv.StartAsync()
	logEntry.WithField("port", cfg.Server.MetricsPort).Info("metrics listener started")

	httpSrv := &http.Server{Addr: cfg.Server.Addr, Handler: sub.Handler}

	go func() {
		logEntry.WithField("addr", cfg.Server.Addr).Info("submission server started")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logEntry.WithError(err).Error("submission server stopped unexpectedly")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logEntry.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
	_ = metricsSrv.Stop(ctx)

	return nil
}

// buildBackend selects the generation Backend adapter per cfg.Backend.Provider
// (spec §6.2), wrapping every provider except "mock" in a circuit breaker
// (spec §5's fail-fast requirement).
func buildBackend(cfg config.BackendConfig, log *logrus.Entry) backend.Backend {
	var inner backend.Backend
	switch cfg.Provider {
	case "anthropic":
		inner = backend.NewAnthropicBackend(cfg.APIKey, cfg.Model, cfg.Timeout)
	default:
		log.WithField("provider", cfg.Provider).Warn("unrecognized backend provider, falling back to mock")
		fallthrough
	case "mock":
		return backend.NewMockBackend("mock backend response")
	}

	return backend.NewBreakerBackend(inner, backend.BreakerSettings{
		Name:         cfg.Provider,
		FailureRatio: cfg.BreakerRatio,
		MinRequests:  cfg.BreakerMinReqs,
		OpenTimeout:  cfg.Timeout,
	})
}

// logrusLevel parses the config's log_level string into a logrus.Level.
func logrusLevel(s string) (logrus.Level, error) {
	if s == "" {
		return logrus.InfoLevel, nil
	}
	return logrus.ParseLevel(s)
}
