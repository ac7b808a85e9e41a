package application

import "time"

// Options is the explicit engine configuration handed to the loops at
// construction time. Core logic never reads the process environment; the
// infrastructure config layer fills this in.
type Options struct {
	SourceDir       string
	TargetDir       string
	Workers         int
	MaxAttempts     int
	GenerateTimeout time.Duration
	ValidateTimeout time.Duration
}

// withDefaults fills unset fields with safe values.
func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 2
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.GenerateTimeout <= 0 {
		o.GenerateTimeout = 300 * time.Second
	}
	if o.ValidateTimeout <= 0 {
		o.ValidateTimeout = 120 * time.Second
	}
	return o
}

// schemaForCategory names the target schema the generator must honor for a
// category. The identifier is the contract; prompt content belongs to the
// generator, not the engine.
func schemaForCategory(cat string) string {
	switch cat {
	case "structure":
		return "ansible/structure@2.16"
	case "attributes":
		return "ansible/defaults@2.16"
	case "static-file":
		return "ansible/file@2.16"
	case "template":
		return "ansible/jinja2@2.16"
	case "recipe-task":
		return "ansible/tasks@2.16"
	default:
		return "ansible/unknown"
	}
}
