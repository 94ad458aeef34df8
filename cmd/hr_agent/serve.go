package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/hr-assistant/internal/fetch"
	"github.com/jonathan/hr-assistant/internal/progress"
	"github.com/jonathan/hr-assistant/internal/resume"
	"github.com/jonathan/hr-assistant/internal/server"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the job description, grading and workflow endpoints, including SSE progress streams.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := appConfig
	if servePort > 0 {
		cfg.Port = servePort
	}

	orchestrator, closeLLM, err := openOrchestrator(ctx)
	if err != nil {
		return err
	}
	defer closeLLM()

	srvCfg := server.Config{
		Port:         cfg.Port,
		Orchestrator: orchestrator,
		Stream: server.StreamSettings{
			MaxLifetime: cfg.Stream.MaxLifetime.Std(),
			Pace:        cfg.Stream.Pace.Std(),
			Buffer:      cfg.Stream.Buffer,
		},
		BatchConcurrency: cfg.BatchConcurrency,
		WeightTolerance:  cfg.WeightTolerance,
		Fetch:            fetchOptions(),
		CORSOrigins:      cfg.CORSOrigins,
		RateLimit:        cfg.RateLimiterConfig(),
		Logger:           logger,
	}

	if cfg.Resume.Enabled() {
		src, err := resume.NewS3Source(ctx, cfg.Resume)
		if err != nil {
			return fmt.Errorf("failed to open resume store: %w", err)
		}
		srvCfg.Resumes = src
		logger.Info("resume store enabled", "bucket", cfg.Resume.Bucket, "endpoint", cfg.Resume.Endpoint)
	}

	if cfg.AMQP.URL != "" {
		sink, err := progress.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return fmt.Errorf("failed to connect to AMQP broker: %w", err)
		}
		defer func() {
			if err := sink.Close(); err != nil {
				logger.Warn("failed to close AMQP sink", "error", err)
			}
		}()
		srvCfg.Sink = sink
		logger.Info("mirroring stream events", "exchange", cfg.AMQP.Exchange)
	}

	srv, err := server.New(srvCfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// fetchOptions builds job page fetch options from the config.
func fetchOptions() *fetch.Options {
	opts := fetch.DefaultOptions()
	if t := appConfig.Fetch.Timeout.Std(); t > 0 {
		opts.Timeout = t
	}
	if appConfig.Fetch.RequestsPerSecond > 0 {
		opts.Limiter = fetch.NewHostLimiter(appConfig.Fetch.RequestsPerSecond, appConfig.Fetch.Burst)
	}
	return opts
}
