package commandstructure

import (
	"fmt"
	"log/slog"
	"time"
)

// CommandInvoker executes a sequence of commands on media data
type CommandInvoker struct {
	commands []Command
}

func NewCommandInvoker(commands []Command) *CommandInvoker {
	return &CommandInvoker{
		commands: commands,
	}
}

// NewCommandInvokerFromConfigs creates every configured command up front so that
// bad parameters surface at startup instead of on the first upload.
func NewCommandInvokerFromConfigs(registry *CommandRegistry, configs []CommandConfig) (*CommandInvoker, error) {
	commands := make([]Command, 0, len(configs))
	for i, config := range configs {
		command, err := registry.Create(config.Name, config.Params)
		if err != nil {
			return nil, fmt.Errorf("failed to create command at index %d (%s): %w", i, config.Name, err)
		}
		commands = append(commands, command)
	}
	return NewCommandInvoker(commands), nil
}

// Len returns the number of commands in the pipeline
func (i *CommandInvoker) Len() int {
	return len(i.commands)
}

// Execute applies all commands in sequence
func (i *CommandInvoker) Execute(data []byte) ([]byte, error) {
	start := time.Now()

	if len(i.commands) == 0 {
		slog.Debug("no commands to execute, returning original media")
		return data, nil
	}

	slog.Info("starting media pipeline",
		"command_count", len(i.commands),
		"input_size_bytes", len(data))

	current := data
	for idx, command := range i.commands {
		commandStart := time.Now()

		processed, err := command.Execute(current)
		if err != nil {
			slog.Error("command execution failed",
				"index", idx,
				"command_name", command.Name(),
				"error", err,
				"input_size_bytes", len(current))
			return nil, fmt.Errorf("command %s (index %d) failed: %w", command.Name(), idx, err)
		}

		slog.Debug("command completed",
			"index", idx,
			"command_name", command.Name(),
			"duration_ms", time.Since(commandStart).Milliseconds(),
			"input_size_bytes", len(current),
			"output_size_bytes", len(processed))

		current = processed
	}

	slog.Info("media pipeline completed",
		"total_duration_ms", time.Since(start).Milliseconds(),
		"command_count", len(i.commands),
		"final_size_bytes", len(current))

	return current, nil
}

// ValidateCommandConfigs checks names are set and unique and that every command can be created
func ValidateCommandConfigs(registry *CommandRegistry, configs []CommandConfig) error {
	seen := make(map[string]bool)
	for i, config := range configs {
		if config.Name == "" {
			return fmt.Errorf("command at index %d has empty name", i)
		}
		if seen[config.Name] {
			return fmt.Errorf("duplicate command name: %s", config.Name)
		}
		seen[config.Name] = true
	}
	_, err := NewCommandInvokerFromConfigs(registry, configs)
	return err
}
