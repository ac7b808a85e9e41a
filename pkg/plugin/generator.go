package plugin

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/porter/pkg/domain/conversion"
	"github.com/felixgeelhaar/porter/pkg/domain/generate"
	domainPlugin "github.com/felixgeelhaar/porter/pkg/domain/plugin"
)

// ProducerGenerator adapts a loaded producer plugin to the generator
// interface the conversion engine consumes.
type ProducerGenerator struct {
	id       string
	producer domainPlugin.Producer
}

// NewProducerGenerator initializes the producer and wraps it. The id is the
// plugin binary name, used in checklist notes.
func NewProducerGenerator(id string, producer domainPlugin.Producer, config map[string]string) (*ProducerGenerator, error) {
	if err := producer.Init(config); err != nil {
		return nil, fmt.Errorf("plugin init failed: %w", err)
	}
	return &ProducerGenerator{id: id, producer: producer}, nil
}

func (g *ProducerGenerator) ID() string {
	return "plugin:" + g.id
}

// Generate delegates to the plugin process. net/rpc calls cannot be
// cancelled mid-flight, so the context is checked before dispatch.
func (g *ProducerGenerator) Generate(ctx context.Context, unit conversion.Unit, genCtx generate.Context, mode generate.Mode) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := g.producer.Produce(unit, genCtx, mode)
	if err != nil {
		return nil, generate.Failed(err)
	}
	return out, nil
}
