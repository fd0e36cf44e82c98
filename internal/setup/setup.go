// Package setup builds the components of a rad process from its
// configuration.
package setup

import (
	"context"
	"fmt"
	"io"

	"github.com/go-sod/rad/internal/alert"
	"github.com/go-sod/rad/internal/artifact"
	"github.com/go-sod/rad/internal/database"
	"github.com/go-sod/rad/internal/detector"
	"github.com/go-sod/rad/internal/logging"
	"github.com/go-sod/rad/internal/metrics"
	"github.com/go-sod/rad/internal/model"
	"github.com/go-sod/rad/internal/model/identity"
	"github.com/go-sod/rad/internal/model/lowpass"
	"github.com/go-sod/rad/internal/model/windowed"
	"github.com/go-sod/rad/internal/observe"
	"github.com/go-sod/rad/internal/pipeline"
	"github.com/go-sod/rad/internal/srvenv"
	"github.com/kelseyhightower/envconfig"
)

type SvcModeConfigProvider interface {
	SvcMode() string
}

// FileConfigProvider names a toml or yaml file laid over the environment.
type FileConfigProvider interface {
	FilePath() string
}

type MetricsConfigProvider interface {
	Namespace() string
}

type DatabaseConfigProvider interface {
	DatabaseConfig() *database.Config
}

type ArtifactConfigProvider interface {
	ArtifactConfig() *artifact.Config
}

type ModelConfigProvider interface {
	ModelConfig() *model.Config
	WindowedConfig() *windowed.Config
	LowPassConfig() *lowpass.Config
}

type DetectorConfigProvider interface {
	DetectorConfig() *detector.Config
}

type NotifierConfigProvider interface {
	NotifyConfig() *alert.Config
}

// Load fills config from the environment, then from the configuration file
// when one is named. Values found in the file win.
func Load(config interface{}) error {
	if err := envconfig.Process("", config); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}
	if fileProvider, ok := config.(FileConfigProvider); ok && fileProvider.FilePath() != "" {
		if err := LoadFile(fileProvider.FilePath(), config); err != nil {
			return fmt.Errorf("error loading config file: %w", err)
		}
	}
	return nil
}

// Setup builds the server environment from a config already filled by Load.
func Setup(ctx context.Context, config interface{}) (*srvenv.SrvEnv, error) {
	logger := logging.FromContext(ctx)

	var serverEnvOpts []srvenv.Option
	hooks := []observe.Hook{observe.LogHook{}}

	if metricsProvider, ok := config.(MetricsConfigProvider); ok {
		logger.Info("Configuring metrics")
		exporter, err := metrics.NewExporter(metricsProvider.Namespace())
		if err != nil {
			return nil, fmt.Errorf("unable create metrics exporter: %w", err)
		}
		hooks = append(hooks, observe.MetricsHook{})
		serverEnvOpts = append(serverEnvOpts, srvenv.WithExporter(exporter))
	}
	hook := observe.Multi(hooks...)
	serverEnvOpts = append(serverEnvOpts, srvenv.WithHook(hook))

	if dbConfigProvider, ok := config.(DatabaseConfigProvider); ok && dbConfigProvider.DatabaseConfig().Enabled() {
		logger.Info("Configuring db")
		db, err := database.NewFromEnv(ctx, dbConfigProvider.DatabaseConfig())
		if err != nil {
			return nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		serverEnvOpts = append(serverEnvOpts, srvenv.WithDatabase(db))
	}

	if artifactConfigProvider, ok := config.(ArtifactConfigProvider); ok {
		logger.Info("Configuring artifact sink")
		sink, err := artifact.NewFromConfig(ctx, artifactConfigProvider.ArtifactConfig())
		if err != nil {
			return nil, fmt.Errorf("unable create artifact sink: %w", err)
		}
		serverEnvOpts = append(serverEnvOpts, srvenv.WithSink(sink))
	}

	if modelConfigProvider, ok := config.(ModelConfigProvider); ok {
		logger.Info("Configuring model")
		provideFn, err := ProvideModelFor(modelConfigProvider, hook)
		if err != nil {
			return nil, fmt.Errorf("unable create model provide function: %w", err)
		}
		serverEnvOpts = append(serverEnvOpts,
			srvenv.WithModel(string(modelConfigProvider.ModelConfig().ModelType()), provideFn))
	}

	if detectorConfigProvider, ok := config.(DetectorConfigProvider); ok {
		logger.Info("Configuring detector")
		det, params, err := ProvideDetector(detectorConfigProvider.DetectorConfig())
		if err != nil {
			return nil, fmt.Errorf("unable create detector: %w", err)
		}
		serverEnvOpts = append(serverEnvOpts, srvenv.WithDetector(det, params))
	}

	if notifyConfigProvider, ok := config.(NotifierConfigProvider); ok && notifyConfigProvider.NotifyConfig().AllowAlerts {
		logger.Info("Configuring notifier")
		notifier, closers, err := ProvideNotifierFor(notifyConfigProvider)
		if err != nil {
			return nil, fmt.Errorf("unable create notifier: %w", err)
		}
		serverEnvOpts = append(serverEnvOpts, srvenv.WithNotifier(notifier))
		for _, c := range closers {
			serverEnvOpts = append(serverEnvOpts, srvenv.WithCloser(c))
		}
	}

	return srvenv.New(serverEnvOpts...), nil
}

// ProvideModelFor validates the model configuration once and returns a
// factory of fresh, unfitted models.
func ProvideModelFor(provider ModelConfigProvider, hook observe.Hook) (model.ProvideFn, error) {
	var provideFn model.ProvideFn
	switch t := provider.ModelConfig().ModelType(); t {
	case model.TypeWindowed:
		opts, err := provider.WindowedConfig().Options()
		if err != nil {
			return nil, err
		}
		opts = append(opts, windowed.WithHook(hook))
		provideFn = func() (model.Model, error) {
			m, err := windowed.New(opts...)
			if err != nil {
				return nil, fmt.Errorf("unable create windowed model: %w", err)
			}
			return m, nil
		}
	case model.TypeIdentity:
		provideFn = func() (model.Model, error) {
			return identity.New(), nil
		}
	case model.TypeLowPass:
		opts := provider.LowPassConfig().Options()
		provideFn = func() (model.Model, error) {
			m, err := lowpass.New(opts...)
			if err != nil {
				return nil, fmt.Errorf("unable create lowpass model: %w", err)
			}
			return m, nil
		}
	default:
		return nil, fmt.Errorf("unknown model type: %s", t)
	}

	if _, err := provideFn(); err != nil {
		return nil, err
	}
	return provideFn, nil
}

func ProvideDetector(cfg *detector.Config) (*detector.Detector, pipeline.Params, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, pipeline.Params{}, err
	}
	if !(cfg.AnomalyFraction > 0 && cfg.AnomalyFraction < 1) {
		return nil, pipeline.Params{}, fmt.Errorf("%w: %v", detector.ErrFraction, cfg.AnomalyFraction)
	}
	if !(cfg.Compression > 0) {
		return nil, pipeline.Params{}, fmt.Errorf("%w: %v", detector.ErrCompression, cfg.Compression)
	}
	return detector.New(opts...), pipeline.Params{
		AnomalyFraction: cfg.AnomalyFraction,
		Compression:     cfg.Compression,
	}, nil
}

// ProvideNotifierFor builds a webhook notifier for the configured targets and
// a Redis notifier when an address is set. The returned closers release the
// Redis connection.
func ProvideNotifierFor(provider NotifierConfigProvider) (alert.Notifier, []io.Closer, error) {
	cfg := provider.NotifyConfig()
	var (
		notifiers alert.Multi
		closers   []io.Closer
	)
	if len(cfg.Targets) > 0 {
		webhook, err := alert.NewWebhook(
			cfg.Targets,
			alert.WithMaxConcurrentRequest(cfg.MaxConcurrentRequest),
			alert.WithRequestTimeout(cfg.RequestTimeout),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("unable create webhook notifier: %w", err)
		}
		notifiers = append(notifiers, webhook)
	}
	if cfg.Redis.Addr != "" {
		notifier, client := alert.NewRedisFromConfig(cfg.Redis)
		notifiers = append(notifiers, notifier)
		closers = append(closers, client)
	}
	if len(notifiers) == 0 {
		return alert.Nop{}, nil, nil
	}
	return notifiers, closers, nil
}
