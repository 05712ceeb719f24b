// Package external hands a single file to an external source-to-source
// tool such as darklua, bypassing the bundler.
package external

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultCommand runs darklua. The placeholders {config}, {input} and
// {output} are replaced before the command runs.
var DefaultCommand = []string{"darklua", "process", "--config", "{config}", "{input}", "{output}"}

// DefaultConfig is the payload written to the configuration file when
// none is configured.
func DefaultConfig() map[string]any {
	return map[string]any{
		"generator": "readable",
		"bundle": map[string]any{
			"require_mode": "path",
			"excludes":     []string{"@antiraid/*"},
		},
	}
}

// Options configures Process.
type Options struct {
	Command []string       // nil means DefaultCommand
	Config  map[string]any // nil means DefaultConfig()
}

// Process writes the configuration payload to a temporary file and runs
// the external tool on input, writing to output.
func Process(ctx context.Context, opts Options, input, output string) error {
	command := opts.Command
	if len(command) == 0 {
		command = DefaultCommand
	}
	config := opts.Config
	if config == nil {
		config = DefaultConfig()
	}

	tmpDir, err := os.MkdirTemp("", "templated-*")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	payload, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding tool config: %w", err)
	}
	cfgFile := filepath.Join(tmpDir, "config.json")
	if err := os.WriteFile(cfgFile, payload, 0644); err != nil {
		return fmt.Errorf("writing tool config: %w", err)
	}

	args := Expand(command, cfgFile, input, output)
	slog.Debug("running external tool", "command", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Expand substitutes the placeholders of command.
func Expand(command []string, config, input, output string) []string {
	r := strings.NewReplacer("{config}", config, "{input}", input, "{output}", output)
	args := make([]string, len(command))
	for i, a := range command {
		args[i] = r.Replace(a)
	}
	return args
}
