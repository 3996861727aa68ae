// Package commandstructure holds the building blocks of the media optimisation pipeline:
// named commands created from config parameters, a registry and an invoker.
package commandstructure

// Command transforms one media payload into another
type Command interface {
	Name() string
	Execute(data []byte) ([]byte, error)
}

// CommandFactory creates a command from configuration parameters
type CommandFactory func(params map[string]any) (Command, error)

// CommandConfig names a registered command and its parameters.
// In YAML the parameters sit next to the name.
type CommandConfig struct {
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:",inline"`
}
