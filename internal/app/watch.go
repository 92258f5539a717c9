package app

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v2"

	"project-scheduler/internal/core"
)

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "watch the project file and re-run recalculate on every write",
		Flags: []cli.Flag{fileFlag(), defaultsFlag()},
		Action: func(c *cli.Context) error {
			path := c.Path(flagFile)
			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("starting watcher: %w", err)
			}
			defer watcher.Close()

			if err := watcher.Add(path); err != nil {
				return fmt.Errorf("watching %s: %w", path, err)
			}

			r := newRenderer(c.App.Writer)

			cm := core.NewConfigManager(nil)
			if _, err := cm.Load(c.Path(flagDefaults)); err != nil {
				return err
			}
			if err := cm.StartHotReload(func(cfg core.EngineConfig, err error) {
				if err != nil {
					fmt.Fprintln(c.App.ErrWriter, r.warning("config reload error: "+err.Error()))
					return
				}
				fmt.Fprintln(c.App.Writer, r.ok("config defaults reloaded"))
			}); err != nil {
				return err
			}
			defer cm.StopHotReload()

			fmt.Fprintf(c.App.Writer, "watching %s for changes (ctrl-c to stop)\n", path)

			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
						continue
					}
					if err := recalculateOnWrite(c, path, r); err != nil {
						fmt.Fprintln(c.App.ErrWriter, r.warning("error: "+err.Error()))
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					fmt.Fprintln(c.App.ErrWriter, r.warning("watch error: "+err.Error()))
				case <-c.Done():
					return nil
				}
			}
		},
	}
}

func recalculateOnWrite(c *cli.Context, path string, r *renderer) error {
	s, err := loadState(path)
	if err != nil {
		return err
	}
	result, err := s.RecalculateDates()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, r.ok("recalculated"))
	for _, id := range result.CriticalPath {
		r.printActivityLine(c.App.Writer, id, true)
	}
	return saveState(path, s)
}
