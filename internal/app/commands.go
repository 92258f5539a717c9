package app

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"project-scheduler/internal/core"
	"project-scheduler/internal/evm"
	"project-scheduler/internal/project"
)

const (
	flagFile     = "file"
	flagDefaults = "defaults"
)

func fileFlag() *cli.PathFlag {
	return &cli.PathFlag{
		Name: flagFile, Aliases: []string{"f"}, Value: "project.yaml",
		Usage: "path to the project YAML file", EnvVars: []string{"SCHED_PROJECT_FILE"},
	}
}

func defaultsFlag() *cli.PathFlag {
	return &cli.PathFlag{
		Name: flagDefaults, Usage: "path to a YAML file of EngineConfig defaults (env vars still win)",
		EnvVars: []string{"SCHED_CONFIG_DEFAULTS_FILE"},
	}
}

func loadState(path string) (*project.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	rec, err := project.UnmarshalYAML(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	s := project.New()
	if err := s.ImportState(rec); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return s, nil
}

func saveState(path string, s *project.State) error {
	data, err := project.MarshalYAML(s.ExportState())
	if err != nil {
		return fmt.Errorf("encoding project: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "run the validator over the project file and report errors/warnings",
		Flags: []cli.Flag{fileFlag()},
		Action: func(c *cli.Context) error {
			s, err := loadState(c.Path(flagFile))
			if err != nil {
				return err
			}
			result := s.Validate()
			r := newRenderer(c.App.Writer)
			for _, e := range result.Errors {
				fmt.Fprintln(c.App.ErrWriter, r.warning("error: "+e.Error()))
			}
			for _, w := range result.Warnings {
				fmt.Fprintln(c.App.Writer, r.warning("warning: "+w.Error()))
			}
			if !result.IsValid() {
				return cli.Exit("validation failed", 1)
			}
			fmt.Fprintln(c.App.Writer, r.ok("project is valid"))
			return nil
		},
	}
}

func recalculateCommand() *cli.Command {
	return &cli.Command{
		Name:  "recalculate",
		Usage: "run the CPM solver and write ES/EF/LS/LF/slack/critical-path back to the project file",
		Flags: []cli.Flag{fileFlag()},
		Action: func(c *cli.Context) error {
			path := c.Path(flagFile)
			s, err := loadState(path)
			if err != nil {
				return err
			}
			spin := core.NewSpinner("recalculating dates", core.IsSilent())
			spin.Start()
			result, err := s.RecalculateDates()
			spin.Stop(err == nil)
			if err != nil {
				return err
			}
			r := newRenderer(c.App.Writer)
			fmt.Fprintln(c.App.Writer, "critical path:")
			critical := make(map[string]bool, len(result.CriticalPath))
			for _, id := range result.CriticalPath {
				critical[id] = true
			}
			for _, id := range result.CriticalPath {
				r.printActivityLine(c.App.Writer, id, critical[id])
			}
			for _, w := range result.Report.Warnings {
				fmt.Fprintln(c.App.Writer, r.warning("warning: "+w.Error()))
			}
			return saveState(path, s)
		},
	}
}

func levelCommand() *cli.Command {
	return &cli.Command{
		Name:  "level",
		Usage: "run the resource leveler and write the change log",
		Flags: []cli.Flag{fileFlag(), defaultsFlag()},
		Action: func(c *cli.Context) error {
			path := c.Path(flagFile)
			s, err := loadState(path)
			if err != nil {
				return err
			}
			cfg, err := core.NewConfigManager(nil).Load(c.Path(flagDefaults))
			if err != nil {
				return err
			}
			spin := core.NewSpinner("leveling resources", core.IsSilent())
			spin.Start()
			result, err := s.LevelResources(cfg)
			spin.Stop(err == nil)
			if err != nil {
				return err
			}
			for _, ch := range result.Changes {
				fmt.Fprintf(c.App.Writer, "%s: %s -> %s (%s)\n", ch.ActivityID,
					ch.OriginalStart.Format("2006-01-02"), ch.NewStart.Format("2006-01-02"), ch.Reason)
			}
			return saveState(path, s)
		},
	}
}

func baselineCommands() *cli.Command {
	return &cli.Command{
		Name:  "baseline",
		Usage: "manage baseline snapshots",
		Subcommands: []*cli.Command{
			{
				Name: "save", Usage: "capture a new baseline",
				Flags: []cli.Flag{fileFlag(),
					&cli.StringFlag{Name: "id", Required: true},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "desc"},
				},
				Action: func(c *cli.Context) error {
					path := c.Path(flagFile)
					s, err := loadState(path)
					if err != nil {
						return err
					}
					s.SaveBaseline(c.String("id"), c.String("name"), c.String("desc"))
					return saveState(path, s)
				},
			},
			{
				Name: "apply", Usage: "apply a baseline's snapshot onto current activities",
				Flags: []cli.Flag{fileFlag(), &cli.StringFlag{Name: "id", Required: true}},
				Action: func(c *cli.Context) error {
					path := c.Path(flagFile)
					s, err := loadState(path)
					if err != nil {
						return err
					}
					if err := s.ApplyBaseline(c.String("id")); err != nil {
						return err
					}
					return saveState(path, s)
				},
			},
			{
				Name: "delete", Usage: "delete a baseline",
				Flags: []cli.Flag{fileFlag(), &cli.StringFlag{Name: "id", Required: true}},
				Action: func(c *cli.Context) error {
					path := c.Path(flagFile)
					s, err := loadState(path)
					if err != nil {
						return err
					}
					if err := s.DeleteBaseline(c.String("id")); err != nil {
						return err
					}
					return saveState(path, s)
				},
			},
			{
				Name: "list", Usage: "list baselines",
				Flags: []cli.Flag{fileFlag()},
				Action: func(c *cli.Context) error {
					s, err := loadState(c.Path(flagFile))
					if err != nil {
						return err
					}
					for _, b := range s.GetAllBaselines() {
						fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\n", b.ID, b.Name, b.CreatedAt.Format(time.RFC3339))
					}
					return nil
				},
			},
		},
	}
}

func scenarioCommands() *cli.Command {
	return &cli.Command{
		Name:  "scenario",
		Usage: "manage what-if scenarios",
		Subcommands: []*cli.Command{
			{
				Name: "create", Usage: "create a scenario from the current live state",
				Flags: []cli.Flag{fileFlag(),
					&cli.StringFlag{Name: "id", Required: true},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "desc"},
				},
				Action: func(c *cli.Context) error {
					path := c.Path(flagFile)
					s, err := loadState(path)
					if err != nil {
						return err
					}
					s.CreateScenario(c.String("id"), c.String("name"), c.String("desc"))
					return saveState(path, s)
				},
			},
			{
				Name: "activate", Usage: "activate a scenario as the working state",
				Flags: []cli.Flag{fileFlag(), &cli.StringFlag{Name: "id", Required: true}},
				Action: func(c *cli.Context) error {
					path := c.Path(flagFile)
					s, err := loadState(path)
					if err != nil {
						return err
					}
					if err := s.ActivateScenario(c.String("id")); err != nil {
						return err
					}
					return saveState(path, s)
				},
			},
			{
				Name: "deactivate", Usage: "deactivate the active scenario, restoring the prior live state",
				Flags: []cli.Flag{fileFlag()},
				Action: func(c *cli.Context) error {
					path := c.Path(flagFile)
					s, err := loadState(path)
					if err != nil {
						return err
					}
					if err := s.DeactivateScenario(); err != nil {
						return err
					}
					return saveState(path, s)
				},
			},
			{
				Name: "delete", Usage: "delete an inactive scenario",
				Flags: []cli.Flag{fileFlag(), &cli.StringFlag{Name: "id", Required: true}},
				Action: func(c *cli.Context) error {
					path := c.Path(flagFile)
					s, err := loadState(path)
					if err != nil {
						return err
					}
					if err := s.DeleteScenario(c.String("id")); err != nil {
						return err
					}
					return saveState(path, s)
				},
			},
			{
				Name: "list", Usage: "list scenarios",
				Flags: []cli.Flag{fileFlag()},
				Action: func(c *cli.Context) error {
					s, err := loadState(c.Path(flagFile))
					if err != nil {
						return err
					}
					active := s.ActiveScenarioID()
					for _, sc := range s.GetAllScenarios() {
						marker := ""
						if sc.ID == active {
							marker = " (active)"
						}
						fmt.Fprintf(c.App.Writer, "%s\t%s%s\n", sc.ID, sc.Name, marker)
					}
					return nil
				},
			},
		},
	}
}

func evmCommands() *cli.Command {
	statusDateFlag := &cli.StringFlag{Name: "status-date", Required: true, Usage: "ISO-8601 status date (YYYY-MM-DD)"}
	return &cli.Command{
		Name:  "evm",
		Usage: "earned value metrics",
		Subcommands: []*cli.Command{
			{
				Name: "project", Usage: "aggregate EVM across the whole project",
				Flags: []cli.Flag{fileFlag(), statusDateFlag},
				Action: func(c *cli.Context) error {
					s, err := loadState(c.Path(flagFile))
					if err != nil {
						return err
					}
					statusDate, err := time.Parse("2006-01-02", c.String("status-date"))
					if err != nil {
						return err
					}
					printMetrics(c, s.ProjectEVM(statusDate))
					return nil
				},
			},
			{
				Name: "task", Usage: "EVM for a single activity",
				Flags: []cli.Flag{fileFlag(), statusDateFlag, &cli.StringFlag{Name: "id", Required: true}},
				Action: func(c *cli.Context) error {
					s, err := loadState(c.Path(flagFile))
					if err != nil {
						return err
					}
					statusDate, err := time.Parse("2006-01-02", c.String("status-date"))
					if err != nil {
						return err
					}
					m, err := s.TaskEVM(c.String("id"), statusDate)
					if err != nil {
						return err
					}
					printMetrics(c, m)
					return nil

				},
			},
		},
	}
}

func printMetrics(c *cli.Context, m evm.Metrics) {
	fmt.Fprintf(c.App.Writer, "BAC\t%.2f\n", m.BAC)
	fmt.Fprintf(c.App.Writer, "PV\t%.2f\n", m.PV)
	fmt.Fprintf(c.App.Writer, "EV\t%.2f\n", m.EV)
	fmt.Fprintf(c.App.Writer, "AC\t%.2f\n", m.AC)
	fmt.Fprintf(c.App.Writer, "SV\t%.2f\n", m.SV)
	fmt.Fprintf(c.App.Writer, "CV\t%.2f\n", m.CV)
	fmt.Fprintf(c.App.Writer, "SPI\t%.3f\n", m.SPI)
	fmt.Fprintf(c.App.Writer, "CPI\t%.3f\n", m.CPI)
	fmt.Fprintf(c.App.Writer, "EAC\t%.2f\n", m.EAC)
	fmt.Fprintf(c.App.Writer, "VAC\t%.2f\n", m.VAC)
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "print the project as YAML",
		Flags: []cli.Flag{fileFlag()},
		Action: func(c *cli.Context) error {
			s, err := loadState(c.Path(flagFile))
			if err != nil {
				return err
			}
			data, err := project.MarshalYAML(s.ExportState())
			if err != nil {
				return err
			}
			_, err = c.App.Writer.Write(data)
			return err
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "replace the project file from a YAML record read from --in",
		Flags: []cli.Flag{fileFlag(), &cli.PathFlag{Name: "in", Required: true}},
		Action: func(c *cli.Context) error {
			data, err := os.ReadFile(c.Path("in"))
			if err != nil {
				return err
			}
			rec, err := project.UnmarshalYAML(data)
			if err != nil {
				return err
			}
			s := project.New()
			if err := s.ImportState(rec); err != nil {
				return err
			}
			return saveState(c.Path(flagFile), s)
		},
	}
}
