package command

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kurahq/kura"
	"github.com/kurahq/kura/internal/kuraregexp"
	"github.com/kurahq/kura/pak"
	"github.com/spf13/cobra"
)

// newUnpack unpacks .pak archives on the local filesystem without the
// service, writing an UNPACK/<archive>/ folder per archive.
func newUnpack() *cobra.Command {
	var (
		out        string
		keyringstr string
		keyName    string
		cmd        = &cobra.Command{
			Use:           "unpack",
			Version:       kura.SemVer(),
			Args:          cobra.MinimumNArgs(1),
			SilenceErrors: true,
			SilenceUsage:  true,
			RunE: func(cmd *cobra.Command, args []string) error {
				var (
					ctx = cmd.Context()
					log = kura.LoggerFrom(ctx)
				)

				var key []byte
				if keyName != "" {
					if keyringstr == "" {
						keyringstr = os.Getenv("KURA_KEYS")
					}

					keyring, err := pak.LoadKeyring(keyringstr)
					if err != nil {
						return err
					}

					if key, err = keyring.Lookup(keyName); err != nil {
						return err
					}
				}

				for _, arg := range args {
					if !kuraregexp.IsPAK(arg) {
						return fmt.Errorf("unsupported file type %s", filepath.Ext(arg))
					}

					var (
						base   = filepath.Base(arg)
						outDir = filepath.Join(out, "UNPACK", strings.TrimSuffix(base, filepath.Ext(base)))
						d      = pak.NewDecoderWithKey(arg, key)
					)

					log.Info("unpacking " + base)

					report, err := d.Report(ctx)
					if err != nil {
						return err
					}

					if err = os.MkdirAll(outDir, 0o755); err != nil {
						return err
					}

					for _, entry := range report.Entries {
						if err = os.WriteFile(filepath.Join(outDir, entry.Name), entry.Data, 0o644); err != nil {
							return err
						}
					}

					if err = os.WriteFile(filepath.Join(outDir, "_pak_info.txt"), []byte(report.Text()), 0o644); err != nil {
						return err
					}

					if err = d.Close(); err != nil {
						return err
					}

					log.Info("extracted "+base, "entries", len(report.Entries), "dir", outDir)
				}

				return nil
			},
		}
	)

	cmd.Flags().StringVar(&out, "out", ".", "output directory for unpack")
	cmd.Flags().StringVar(&keyringstr, "keys", "", "keyring file for unpack")
	cmd.Flags().StringVar(&keyName, "key", "", "keyring entry to decrypt archives with")

	return cmd
}
