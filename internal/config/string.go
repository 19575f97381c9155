package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/atlanticdynamic/cartlaunch/internal/fancy"
	"github.com/charmbracelet/lipgloss/tree"
)

// String returns a pretty-printed tree representation of the config
func (c *Config) String() string {
	return ConfigTree(c)
}

// ConfigTree converts a Config struct into a rendered tree string
func ConfigTree(cfg *Config) string {
	t := fancy.Tree()
	t.Root(fancy.RootStyle.Render("cartlaunch config"))

	workDir := cfg.WorkDir
	if workDir == "" {
		workDir = "(launcher directory)"
	}
	t.Child(fmt.Sprintf("Working directory: %s", fancy.PathText(workDir)))

	defaults := cfg.EnvDefaults()
	envTree := fancy.BranchNode("Environment defaults", fmt.Sprintf("(%d, set if absent)", len(defaults)))
	for _, key := range slices.Sorted(maps.Keys(defaults)) {
		envTree.Child(fancy.EnvText(fmt.Sprintf("%s=%s", key, defaults[key])))
	}
	if cfg.Env.File != "" {
		envTree.Child(fmt.Sprintf("dotenv: %s", fancy.PathText(cfg.Env.File)))
	}
	t.Child(envTree)

	logTree := fancy.BranchNode("Logging", "")
	logTree.Child(fmt.Sprintf("Level: %s", cfg.Log.Level))
	logTree.Child(fmt.Sprintf("Format: %s", cfg.Log.Format))
	output := cfg.Log.Output
	if output == "" {
		output = "stderr"
	}
	logTree.Child(fmt.Sprintf("Output: %s", output))
	t.Child(logTree)

	t.Child(appTree(&cfg.App))

	return t.String()
}

func appTree(app *App) *tree.Tree {
	node := fancy.BranchNode("App", fancy.AppText(string(app.Type)))

	switch app.Type {
	case AppTypeExec, AppTypeProcess:
		cmdline := strings.TrimSpace(app.Command + " " + strings.Join(app.Args, " "))
		node.Child(fmt.Sprintf("Command: %s", fancy.CommandText(fancy.TruncateString(cmdline, 120))))
		for _, key := range slices.Sorted(maps.Keys(app.Env)) {
			node.Child(fancy.EnvText(fmt.Sprintf("%s=%s", key, app.Env[key])))
		}
		if app.Type == AppTypeProcess {
			node.Child(fmt.Sprintf("Stop timeout: %s", app.StopTimeout))
		}
	case AppTypeEcho:
		node.Child(fmt.Sprintf("Listen: %s", app.Listen))
		node.Child(fmt.Sprintf("Response: %q", fancy.TruncateString(app.Response, 60)))
	}

	return node
}
