// Package plugin loads external producer plugins over hashicorp go-plugin.
// A producer plugin replaces the built-in AI providers as the artifact
// generator; it runs as a child process and speaks net/rpc.
package plugin

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	domainPlugin "github.com/felixgeelhaar/porter/pkg/domain/plugin"
	goplugin "github.com/hashicorp/go-plugin"
)

var HandshakeConfig = goplugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "PORTER_PLUGIN",
	MagicCookieValue: "porter",
}

var PluginMap = map[string]goplugin.Plugin{
	"producer": &domainPlugin.ProducerPlugin{},
}

type Loader struct {
	plugins map[string]*goplugin.Client
}

func NewLoader() *Loader {
	return &Loader{
		plugins: make(map[string]*goplugin.Client),
	}
}

// Load validates and starts the plugin binary at path, returning its
// producer interface. The caller owns Cleanup.
func (l *Loader) Load(path string) (domainPlugin.Producer, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid plugin path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("plugin not found: %s", absPath)
		}
		return nil, fmt.Errorf("cannot access plugin: %w", err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("plugin path is a directory: %s", absPath)
	}

	if runtime.GOOS != "windows" {
		if info.Mode()&0111 == 0 {
			return nil, fmt.Errorf("plugin is not executable: %s", absPath)
		}
	}

	client := goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins:         PluginMap,
		Cmd:             exec.Command(absPath),
		AllowedProtocols: []goplugin.Protocol{
			goplugin.ProtocolNetRPC,
		},
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("failed to create plugin client: %w", err)
	}

	raw, err := rpcClient.Dispense("producer")
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("failed to dispense plugin: %w", err)
	}

	l.plugins[path] = client
	return raw.(domainPlugin.Producer), nil
}

func (l *Loader) Cleanup() {
	for _, client := range l.plugins {
		client.Kill()
	}
}
