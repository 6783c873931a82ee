package ports

import "go.trai.ch/tsload/internal/core/domain"

// ConfigLoader defines the interface for loading the runtime configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration. An explicit path wins; otherwise the
	// configuration file is searched for from cwd upward. Defaults apply when
	// no file exists.
	Load(cwd, path string) (*domain.Config, error)
}
