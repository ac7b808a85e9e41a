// Package conversion defines the source technologies and conversion units
// the engine operates on.
package conversion

import (
	"fmt"
	"os"
	"path/filepath"
)

// Technology is the closed set of supported source formats. It is resolved
// once at the top of a run and passed down as a parameter.
type Technology string

const (
	TechChef   Technology = "chef"
	TechPuppet Technology = "puppet"
	TechSalt   Technology = "salt"
)

// IsValid returns true if the technology is one of the supported values.
func (t Technology) IsValid() bool {
	switch t {
	case TechChef, TechPuppet, TechSalt:
		return true
	default:
		return false
	}
}

func (t Technology) String() string {
	return string(t)
}

// DisplayName returns a human-readable name.
func (t Technology) DisplayName() string {
	switch t {
	case TechChef:
		return "Chef"
	case TechPuppet:
		return "Puppet"
	case TechSalt:
		return "Salt"
	default:
		return string(t)
	}
}

// ParseTechnology parses a string into a Technology.
func ParseTechnology(s string) (Technology, error) {
	t := Technology(s)
	if !t.IsValid() {
		return "", fmt.Errorf("unsupported source technology: %s (expected chef, puppet, or salt)", s)
	}
	return t, nil
}

// DetectTechnology inspects marker files under root and resolves the source
// technology. Ambiguous trees resolve in chef > puppet > salt order; trees
// with no markers are an error.
func DetectTechnology(root string) (Technology, error) {
	markers := []struct {
		tech Technology
		path string
	}{
		{TechChef, "metadata.rb"},
		{TechChef, filepath.Join("recipes", "default.rb")},
		{TechPuppet, filepath.Join("manifests", "init.pp")},
		{TechPuppet, filepath.Join("manifests", "site.pp")},
		{TechSalt, "top.sls"},
		{TechSalt, filepath.Join("salt", "top.sls")},
	}

	for _, m := range markers {
		if _, err := os.Stat(filepath.Join(root, m.path)); err == nil {
			return m.tech, nil
		}
	}

	return "", fmt.Errorf("no chef, puppet, or salt markers found under %s", root)
}
