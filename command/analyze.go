package command

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kurahq/kura"
	"github.com/kurahq/kura/internal/kuraregexp"
	"github.com/kurahq/kura/uasset"
	"github.com/spf13/cobra"
)

// newAnalyze analyzes .uasset/.uexp files on the local filesystem,
// printing the report or writing <name>_analysis.txt files.
func newAnalyze() *cobra.Command {
	var (
		out string
		cmd = &cobra.Command{
			Use:           "analyze",
			Version:       kura.SemVer(),
			Args:          cobra.MinimumNArgs(1),
			SilenceErrors: true,
			SilenceUsage:  true,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()

				for _, arg := range args {
					if !kuraregexp.IsUAsset(arg) {
						return fmt.Errorf("unsupported file type %s", filepath.Ext(arg))
					}

					f, err := os.Open(arg)
					if err != nil {
						return err
					}

					analysis, err := uasset.Analyze(ctx, arg, f)
					if err != nil {
						_ = f.Close()
						return err
					}

					if err = f.Close(); err != nil {
						return err
					}

					if out == "" {
						if _, err = fmt.Fprint(cmd.OutOrStdout(), analysis.Text()); err != nil {
							return err
						}
						continue
					}

					if err = os.MkdirAll(out, 0o755); err != nil {
						return err
					}

					name := filepath.Join(out, filepath.Base(arg)+"_analysis.txt")
					if err = os.WriteFile(name, []byte(analysis.Text()), 0o644); err != nil {
						return err
					}
				}

				return nil
			},
		}
	)

	cmd.Flags().StringVar(&out, "out", "", "directory to write analysis reports to")

	return cmd
}
