package plugin

import (
	"net/rpc"

	"github.com/felixgeelhaar/porter/pkg/domain/conversion"
	"github.com/felixgeelhaar/porter/pkg/domain/generate"
	goplugin "github.com/hashicorp/go-plugin"
)

// Producer is the interface external generator plugins must implement.
// Plugins run as separate processes and talk net/rpc; they carry their own
// credentials and prompt content.
type Producer interface {
	// Init ensures the plugin can run (auth check, config).
	Init(config map[string]string) error

	// Produce generates a candidate artifact for the unit.
	Produce(unit conversion.Unit, genCtx generate.Context, mode generate.Mode) ([]byte, error)
}

// ProducerPlugin is the go-plugin wrapper so the producer can be served
// and consumed across the process boundary.
type ProducerPlugin struct {
	Impl Producer
}

func (p *ProducerPlugin) Server(*goplugin.MuxBroker) (interface{}, error) {
	return &ProducerRPCServer{Impl: p.Impl}, nil
}

func (p *ProducerPlugin) Client(b *goplugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &ProducerRPCClient{Client: c}, nil
}

// ProduceArgs is the RPC payload for Produce.
type ProduceArgs struct {
	Unit   conversion.Unit
	GenCtx generate.Context
	Mode   generate.Mode
}

type ProducerRPCClient struct{ Client *rpc.Client }

func (g *ProducerRPCClient) Init(config map[string]string) error {
	var resp interface{}
	return g.Client.Call("Plugin.Init", config, &resp)
}

func (g *ProducerRPCClient) Produce(unit conversion.Unit, genCtx generate.Context, mode generate.Mode) ([]byte, error) {
	var resp []byte
	args := &ProduceArgs{Unit: unit, GenCtx: genCtx, Mode: mode}
	err := g.Client.Call("Plugin.Produce", args, &resp)
	return resp, err
}

type ProducerRPCServer struct{ Impl Producer }

func (s *ProducerRPCServer) Init(config map[string]string, resp *interface{}) error {
	return s.Impl.Init(config)
}

func (s *ProducerRPCServer) Produce(args *ProduceArgs, resp *[]byte) error {
	out, err := s.Impl.Produce(args.Unit, args.GenCtx, args.Mode)
	if out != nil {
		*resp = out
	}
	return err
}
