package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/atlanticdynamic/cartlaunch/internal/config"
	"github.com/atlanticdynamic/cartlaunch/internal/fancy"
	"github.com/urfave/cli/v3"
)

func newValidateCmd() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"lint"},
		Usage:     "Validate one or more configuration files",
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "tree",
				Aliases: []string{"t"},
				Usage:   "Show detailed tree view of the validated configuration",
			},
			&cli.StringFlag{
				Name:      "config",
				Aliases:   []string{"c"},
				Usage:     "Path to the configuration file",
				TakesFile: true,
			},
		},
		Suggest: true,
		Action:  validateAction,
	}
}

// validationResult holds the outcome for one config file
type validationResult struct {
	Path   string
	Config *config.Config
	Error  error
}

func (r validationResult) Valid() bool {
	return r.Error == nil
}

func validateAction(_ context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if configPath := cmd.String("config"); configPath != "" {
		paths = append([]string{configPath}, paths...)
	}
	if len(paths) == 0 {
		return cli.Exit(
			"config file path required (use the --config flag, or provide the config file as positional argument)",
			1,
		)
	}

	results := validateFiles(paths)
	out := cmd.Root().Writer
	invalid := 0
	for _, result := range results {
		printResult(out, result, cmd.Bool("tree"))
		if !result.Valid() {
			invalid++
		}
	}

	if invalid > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d configuration files failed validation", invalid, len(results)), 1)
	}
	return nil
}

func validateFiles(paths []string) []validationResult {
	results := make([]validationResult, 0, len(paths))
	for _, path := range paths {
		result := validationResult{Path: path}

		// NewConfig validates as it loads.
		result.Config, result.Error = config.NewConfig(path)
		results = append(results, result)
	}
	return results
}

func printResult(w io.Writer, result validationResult, treeView bool) {
	if !result.Valid() {
		_, _ = fmt.Fprintf(w, "%s %s\n", fancy.ErrorText("invalid:"), result.Path)
		// errors.Join separates problems with newlines
		for _, line := range strings.Split(result.Error.Error(), "\n") {
			_, _ = fmt.Fprintf(w, "  - %s\n", line)
		}
		return
	}

	_, _ = fmt.Fprintf(w, "%s Configuration file %s is valid\n", fancy.ValidText("✓"), result.Path)
	if treeView {
		_, _ = fmt.Fprintln(w, result.Config)
		return
	}
	_, _ = fmt.Fprintln(w, renderConfigSummary(result.Path, result.Config))
}

// renderConfigSummary creates a formatted summary string for the configuration
func renderConfigSummary(path string, cfg *config.Config) string {
	var summary strings.Builder

	summary.WriteString("\nConfig Summary:\n")
	summary.WriteString(fmt.Sprintf("- Path: %s\n", path))
	summary.WriteString(fmt.Sprintf("- App: %s\n", cfg.App.Type))
	summary.WriteString(fmt.Sprintf("- Allowed hosts default: %s\n", cfg.AllowedHosts))
	summary.WriteString(fmt.Sprintf("- Environment defaults: %d\n", len(cfg.EnvDefaults())))
	summary.WriteString("\nUse --tree for a more detailed view of the config.")

	return summary.String()
}
