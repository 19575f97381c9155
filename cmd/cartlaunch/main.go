package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// newApp builds the command tree. Commands hold parsed flag state, so every call returns
// fresh instances.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "cartlaunch",
		Version: Version,
		Usage:   "Prepare the environment and hand off to the shopping cart server",
		UsageText: "cartlaunch [run] [options] [-- command args...]\n" +
			"cartlaunch validate FILE\n" +
			"cartlaunch show [options]",
		Flags:  launchFlags(),
		Action: runAction,
		Commands: []*cli.Command{
			newRunCmd(),
			newValidateCmd(),
			newShowCmd(),
			newVersionCmd(),
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
