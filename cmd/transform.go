package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mouse-blink/scenario/internal/domain"
	m "github.com/mouse-blink/scenario/internal/model"
)

var transformOutDirFlag string
var transformStdoutFlag bool
var transformParallelFlag int

// transformCmd represents the transform command.
var transformCmd = newTransformCmd()

func newTransformCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transform [paths...]",
		Short: "Rewrite scenario files into explicit registration calls",
		Long: `Transform rewrites each scenario file's given/when/it call sites into
explicit registration calls, writing the rewritten code and a Source Map v3
file next to it in the output directory. Files with no recognized call sites
are copied through unchanged, without a map.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := workflow.Discover(parsePaths(args)...)
			if err != nil {
				return err
			}

			results, err := workflow.TransformAll(sources, transformParallelFlag)
			if err != nil {
				return err
			}

			if transformStdoutFlag {
				for _, result := range results {
					cmd.Printf("// %s\n%s\n", result.Origin, result.Code)
				}

				return nil
			}

			return writeTransformed(cmd, results)
		},
	}
	cmd.Flags().StringVarP(&transformOutDirFlag, "out-dir", "o", ".scenario-out", "directory for rewritten files and source maps")
	cmd.Flags().BoolVar(&transformStdoutFlag, "stdout", false, "print rewritten code to stdout instead of writing files")
	cmd.Flags().IntVarP(&transformParallelFlag, "parallel", "p", 1, "number of parallel workers for transforming")

	return cmd
}

func writeTransformed(cmd *cobra.Command, results []m.TransformResult) error {
	for _, result := range results {
		base := filepath.Base(string(result.Origin))
		outPath := m.Path(filepath.Join(transformOutDirFlag, base))

		code := result.Code
		if result.Changed {
			code = append(code, []byte(fmt.Sprintf("\n//# sourceMappingURL=%s.map\n", base))...)
		}

		if err := sourceFS.WriteFile(outPath, code); err != nil {
			return err
		}

		if !result.Changed {
			continue
		}

		src, err := sourceFS.ReadFile(result.Origin)
		if err != nil {
			return err
		}

		mapDoc, err := domain.EncodeSourceMap(result.Map, src)
		if err != nil {
			return err
		}

		if err := sourceFS.WriteFile(outPath+".map", mapDoc); err != nil {
			return err
		}

		cmd.Printf("%s -> %s\n", result.Origin, outPath)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(transformCmd)
}
