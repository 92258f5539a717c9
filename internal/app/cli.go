// Package app wires the scheduling engine's packages (calendar, graph, cpm,
// validate, leveler, baseline, scenario, evm, project) into a urfave/cli/v2
// command-line surface. This is the only place in the module that reads or
// writes project files: every subcommand reads a project YAML file and calls
// one or more internal/project.State facade methods, and the subcommands
// that change the project write the file back. The EngineConfig defaults
// file is read, and can be watched, by internal/core's ConfigManager.
package app

import (
	"os"

	"github.com/urfave/cli/v2"
)

// New builds the scheduler CLI application.
func New() *cli.App {
	return &cli.App{
		Name:  "scheduler",
		Usage: "a pure, synchronous, in-memory CPM/EVM project scheduling engine",

		Writer:    os.Stdout,
		ErrWriter: os.Stderr,

		Commands: []*cli.Command{
			validateCommand(),
			recalculateCommand(),
			levelCommand(),
			baselineCommands(),
			scenarioCommands(),
			evmCommands(),
			exportCommand(),
			importCommand(),
			watchCommand(),
		},
	}
}
