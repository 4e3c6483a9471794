package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/mouse-blink/scenario/internal/controller"
	"github.com/mouse-blink/scenario/internal/domain"
	m "github.com/mouse-blink/scenario/internal/model"
)

var runTUIFlag bool
var runWatchFlag bool
var runReportsFlag string

// debounce window for filesystem event bursts (editors fire several events
// per save).
const watchSettle = 200 * time.Millisecond

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Transform and run scenario suites",
		Long: `Run transforms each scenario file in memory and executes the resulting
suite in a fresh embedded engine. Cases run sequentially in registration
order; a failing case never cancels its siblings, and a file-level error
fails only its own file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runTUIFlag {
				ui = controller.NewTUI(cmd.OutOrStdout())
			}

			paths := parsePaths(args)

			if runWatchFlag {
				return watchSuites(cmd, paths)
			}

			return runSuites(cmd, paths)
		},
	}
	cmd.Flags().BoolVar(&runTUIFlag, "tui", false, "force the interactive TUI even when output is not a terminal")
	cmd.Flags().BoolVarP(&runWatchFlag, "watch", "w", false, "re-run suites when scenario files change")
	cmd.Flags().StringVarP(&runReportsFlag, "reports", "r", "", "write a JSON run report to this file")

	return cmd
}

func runSuites(_ *cobra.Command, paths []m.Path) error {
	sources, err := workflow.Discover(paths...)
	if err != nil {
		return err
	}

	if err := ui.Start(controller.WithRunMode()); err != nil {
		return err
	}
	defer ui.Close()

	results, err := workflow.Run(sources, domain.RunOptions{
		OnFileStart: ui.FileStarted,
		OnCase:      ui.CaseCompleted,
		OnFile:      ui.FileCompleted,
	})
	if err != nil {
		return err
	}

	if err := ui.DisplaySummary(results); err != nil {
		return err
	}

	if runReportsFlag != "" {
		if err := reportStore.SaveReports(m.Path(runReportsFlag), results); err != nil {
			return err
		}
	}

	failed := 0

	for _, result := range results {
		if result.Failed() {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}

	return nil
}

// watchSuites runs once, then re-runs on every settled burst of filesystem
// changes to discovered scenario files. Watch failures never carry a file's
// test failures out as the command error; the loop ends on interrupt.
func watchSuites(cmd *cobra.Command, paths []m.Path) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	defer func() {
		_ = watcher.Close()
	}()

	if err := watchRoots(watcher, paths); err != nil {
		return err
	}

	if err := runSuites(cmd, paths); err != nil {
		cmd.PrintErrf("%v\n", err)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var settle <-chan time.Time

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if m.IsScenarioFile(m.Path(event.Name)) {
				settle = time.After(watchSettle)
			}

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			cmd.PrintErrf("watch: %v\n", watchErr)

		case <-settle:
			settle = nil

			if err := runSuites(cmd, paths); err != nil {
				cmd.PrintErrf("%v\n", err)
			}

		case <-interrupt:
			return nil
		}
	}
}

// watchRoots registers the directories containing discovered scenario files.
func watchRoots(watcher *fsnotify.Watcher, paths []m.Path) error {
	sources, err := workflow.Discover(paths...)
	if err != nil {
		return err
	}

	dirs := make(map[string]struct{})
	for _, source := range sources {
		dirs[filepath.Dir(string(source.Origin))] = struct{}{}
	}

	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}

	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)
}
