// porter-plugin-mock is a deterministic producer plugin used in tests and
// demos. It emits minimal but lint-clean Ansible artifacts without calling
// any external model.
package main

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-plugin"

	"github.com/felixgeelhaar/porter/pkg/domain/conversion"
	"github.com/felixgeelhaar/porter/pkg/domain/generate"
	domainPlugin "github.com/felixgeelhaar/porter/pkg/domain/plugin"
	infraPlugin "github.com/felixgeelhaar/porter/pkg/plugin"
)

type MockProducer struct{}

func (m *MockProducer) Init(config map[string]string) error {
	return nil
}

func (m *MockProducer) Produce(unit conversion.Unit, genCtx generate.Context, mode generate.Mode) ([]byte, error) {
	log.Printf("producing %s (%s, mode=%s)", unit.TargetPath, unit.Category, mode)

	if mode == generate.ModeFix {
		// Fix mode keeps the existing artifact and appends nothing; the
		// mock's create output is already clean, so findings here mean the
		// file was edited by hand. Return it unchanged.
		return []byte(genCtx.Existing), nil
	}

	switch filepath.Ext(unit.TargetPath) {
	case ".cfg":
		return []byte("[defaults]\ninventory = inventory\nroles_path = roles\n"), nil
	case ".j2":
		return []byte("# " + filepath.Base(unit.TargetPath) + "\n"), nil
	case ".yml", ".yaml":
		if strings.Contains(unit.TargetPath, "meta/") {
			return []byte("---\ngalaxy_info:\n  author: porter\n  min_ansible_version: \"2.16\"\ndependencies: []\n"), nil
		}
		name := strings.TrimSuffix(filepath.Base(unit.TargetPath), filepath.Ext(unit.TargetPath))
		return []byte(fmt.Sprintf("---\n- name: %s placeholder\n  ansible.builtin.debug:\n    msg: converted from %s\n", name, unit.SourcePath)), nil
	default:
		// Static files pass through unchanged.
		return []byte(unit.Content), nil
	}
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: infraPlugin.HandshakeConfig,
		Plugins: map[string]plugin.Plugin{
			"producer": &domainPlugin.ProducerPlugin{Impl: &MockProducer{}},
		},
	})
}
