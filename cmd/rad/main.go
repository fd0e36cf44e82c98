package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-sod/rad/internal/buildinfo"
	rad "github.com/go-sod/rad/internal/config"
	"github.com/go-sod/rad/internal/detect"
	"github.com/go-sod/rad/internal/logging"
	"github.com/go-sod/rad/internal/pipeline"
	"github.com/go-sod/rad/internal/run/retention"
	"github.com/go-sod/rad/internal/server"
	"github.com/go-sod/rad/internal/setup"
	"github.com/go-sod/rad/internal/shutdown"
	"github.com/go-sod/rad/internal/srvenv"
	"github.com/go-sod/rad/internal/traceio"
	"golang.org/x/sync/errgroup"
)

func main() {
	_, _ = fmt.Fprint(os.Stdout, buildinfo.Graffiti)
	_, _ = fmt.Fprintf(
		os.Stdout,
		"%s: %s, %s\n",
		buildinfo.Info.Name(),
		buildinfo.Info.Time(),
		buildinfo.Info.Tag(),
	)

	ctx, done := shutdown.New()
	defer done()

	config := rad.Config{}
	if err := setup.Load(&config); err != nil {
		logging.FromContext(ctx).Fatal(err)
	}
	logger := logging.NewLogger(config.LogLevel, config.LogDevelopment)
	ctx = logging.WithLogger(ctx, logger)

	if err := run(ctx, &config); err != nil {
		logger.Fatal(err)
	}
}

func run(ctx context.Context, config *rad.Config) error {
	env, err := setup.Setup(ctx, config)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}
	defer func() {
		if err := env.Close(ctx); err != nil {
			logging.FromContext(ctx).Errorf("env.Close: %v", err)
		}
	}()

	switch config.SvcMode() {
	case rad.SvcModeTypeDetect:
		return runDetect(ctx, config, env)
	case rad.SvcModeTypeServe:
		return runServe(ctx, config, env)
	default:
		return fmt.Errorf("unknown service mode: %s", config.SvcMode())
	}
}

func runDetect(ctx context.Context, config *rad.Config, env *srvenv.SrvEnv) error {
	logger := logging.FromContext(ctx)
	if config.Trace.Path == "" {
		return errors.New("RAD_TRACE_FILE is required in DETECT mode")
	}

	data, err := traceio.Open(config.Trace.Path, config.Trace.Format, config.Trace.Scale)
	if err != nil {
		return fmt.Errorf("traceio.Open: %w", err)
	}
	fit := data
	if config.Trace.FitPath != "" {
		if fit, err = traceio.Open(config.Trace.FitPath, config.Trace.Format, config.Trace.Scale); err != nil {
			return fmt.Errorf("traceio.Open: %w", err)
		}
	}
	logger.Infof("read %d samples to score, %d to fit", data.Len(), fit.Len())

	m, err := env.ProvideModel()()
	if err != nil {
		return fmt.Errorf("model provider function error: %w", err)
	}
	res, err := pipeline.New(m, env.Detector(), env.PipelineOptions()...).Run(ctx, fit, data, env.Params())
	if err != nil {
		return fmt.Errorf("pipeline.Run: %w", err)
	}

	logger.Infow("detection finished",
		"run_id", res.RunID.String(),
		"threshold", res.Threshold,
		"scored", res.Scored,
		"dropped", res.Dropped,
		"anomalies", len(res.Anomalies),
	)
	return nil
}

func runServe(ctx context.Context, config *rad.Config, env *srvenv.SrvEnv) error {
	detectHandler, err := detect.NewHandler(&config.Detect, env.ProvideModel(), env.Detector(), env.Params(), env.PipelineOptions()...)
	if err != nil {
		return fmt.Errorf("detect.NewHandler: %w", err)
	}
	routes := server.Routes{Detect: detectHandler}
	if runs := env.Runs(); runs != nil {
		routes.Runs = detect.NewRunsHandler(runs)
	}
	if exporter := env.Exporter(); exporter != nil {
		routes.Metrics = exporter
	}

	var janitor *retention.Janitor
	if runs := env.Runs(); runs != nil && config.Retention.Enabled() {
		if janitor, err = retention.New(runs,
			retention.WithCodebooks(env.Codebooks()),
			retention.WithMaxRuns(config.Retention.MaxRuns),
			retention.WithMaxAge(config.Retention.MaxAge),
			retention.WithInterval(config.Retention.Interval),
		); err != nil {
			return fmt.Errorf("retention.New: %w", err)
		}
	}

	srv, err := server.New(config.SrvAddr)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	var grpcSrv *server.Server
	if config.GRPCAddr != "" {
		if grpcSrv, err = server.New(config.GRPCAddr); err != nil {
			return fmt.Errorf("server.New: %w", err)
		}
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ServeHTTPHandler(gCtx, server.NewRouter(gCtx, routes))
	})
	if grpcSrv != nil {
		g.Go(func() error {
			return grpcSrv.ServeGRPC(gCtx, server.NewGRPC(gCtx))
		})
	}
	if janitor != nil {
		g.Go(func() error {
			janitor.Run(gCtx)
			return nil
		})
	}
	logging.FromContext(ctx).Infof("serving on %s", srv.Addr())
	return g.Wait()
}
