package injector

import (
	"github.com/google/wire"
	"github.com/zeusync/fieldflip/internal/config"
	"github.com/zeusync/fieldflip/internal/core/actionset"
	"github.com/zeusync/fieldflip/internal/core/observability/log"
	"github.com/zeusync/fieldflip/internal/server"
)

// ServerSet builds a mirror server from a loaded configuration.
var ServerSet = wire.NewSet(
	ProvideLogger,
	ProvideActionSet,
	ProvideMirror,
	ProvideServer,
)

func ProvideLogger(cfg config.Config) log.Log {
	return log.New(cfg.LogLevel())
}

func ProvideActionSet(cfg config.Config) (*actionset.Set, error) {
	return cfg.ActionSet()
}

func ProvideMirror(cfg config.Config, set *actionset.Set, logger log.Log) *server.Mirror {
	return server.NewMirror(set, cfg.Env, cfg.Mirror.Workers, logger)
}

func ProvideServer(cfg config.Config, mirror *server.Mirror, logger log.Log) *server.Server {
	return server.NewServer(cfg.Server, mirror, logger)
}
