// Package cmd provides the root command and CLI setup for scenario.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mouse-blink/scenario/internal/adapter"
	"github.com/mouse-blink/scenario/internal/controller"
	"github.com/mouse-blink/scenario/internal/domain"
	m "github.com/mouse-blink/scenario/internal/model"
)

var sourceFS *adapter.LocalSourceFS
var reportStore adapter.ReportStore
var workflow domain.Workflow
var ui controller.UI
var logger = zap.NewNop()

func init() {
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	sourceFS = adapter.NewLocalSourceFS()
	reportStore = adapter.NewReportStore()
	workflow = newWorkflow(logger)
}

func newWorkflow(log *zap.Logger) domain.Workflow {
	vmFactory := func(runner domain.Runner) domain.SuiteVM {
		return adapter.NewVM(runner, log)
	}

	return domain.NewWorkflow(sourceFS, vmFactory, log)
}

var verboseFlag bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario [paths...]",
		Short: "Given/when/it scenario transform and runner",
		Long: `Scenario rewrites declarative given/when/it test files into explicit
registration calls and runs the resulting suites in an embedded engine.

Supports path patterns:
  - ./...          recursively scan current directory
  - ./spec/...     recursively scan spec directory
  - ./a ./b        scan multiple directories`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if !verboseFlag {
				return nil
			}

			log, err := zap.NewDevelopment()
			if err != nil {
				return err
			}

			logger = log
			workflow = newWorkflow(logger)

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuites(cmd, parsePaths(args))
		},
	}
	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")

	return cmd
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	if len(args) == 0 {
		return []m.Path{m.Path("./...")}
	}

	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
