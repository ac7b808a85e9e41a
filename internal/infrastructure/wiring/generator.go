package wiring

import (
	"path/filepath"

	"github.com/felixgeelhaar/porter/internal/infrastructure/config"
	"github.com/felixgeelhaar/porter/pkg/ai"
	"github.com/felixgeelhaar/porter/pkg/domain/generate"
	"github.com/felixgeelhaar/porter/pkg/plugin"
)

// LoadGenerator resolves the artifact generator from configuration. A
// configured plugin binary wins over the built-in AI providers. The returned
// cleanup stops any plugin child process and is always safe to call.
func LoadGenerator(cfg *config.Config) (generate.Generator, func(), error) {
	if cfg.PluginPath != "" {
		loader := plugin.NewLoader()
		producer, err := loader.Load(cfg.PluginPath)
		if err != nil {
			loader.Cleanup()
			return nil, func() {}, err
		}
		gen, err := plugin.NewProducerGenerator(filepath.Base(cfg.PluginPath), producer, map[string]string{
			"model": cfg.Model,
		})
		if err != nil {
			loader.Cleanup()
			return nil, func() {}, err
		}
		return gen, loader.Cleanup, nil
	}

	gen, err := ai.NewProviderGenerator(cfg.Provider, cfg.Model)
	if err != nil {
		return nil, func() {}, err
	}
	return gen, func() {}, nil
}
