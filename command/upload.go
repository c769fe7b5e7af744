package command

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/kurahq/kura"
	"github.com/kurahq/kura/internal/kuraregexp"
	"github.com/spf13/cobra"
)

func newUpload() *cobra.Command {
	var (
		cmd = &cobra.Command{
			Use:           "upload",
			Version:       kura.SemVer(),
			SilenceErrors: true,
			SilenceUsage:  true,
		}
	)

	cmd.AddCommand(newUploadAsset())

	return cmd
}

func newUploadAsset() *cobra.Command {
	var (
		keyName string
		cmd     = &cobra.Command{
			Use:           "asset",
			Version:       kura.SemVer(),
			Args:          cobra.RangeArgs(2, 4),
			SilenceErrors: true,
			SilenceUsage:  true,
			RunE: func(cmd *cobra.Command, args []string) error {
				var (
					ctx   = cmd.Context()
					asset = &kura.Asset{
						Name: args[0],
					}
				)

				if !kuraregexp.IsAssetName(asset.Name) {
					return fmt.Errorf("invalid asset name %s", asset.Name)
				}

				var (
					pr, pw     = io.Pipe()
					gz         = gzip.NewWriter(pw)
					tw         = tar.NewWriter(gz)
					filesIndex = 1
				)

				switch len(args) {
				case 3:
					if !kuraregexp.IsArchive(args[1]) && kuraregexp.IsAssetVersion(args[1]) {
						asset.Version = args[1]
						filesIndex = 2
					}
				case 4:
					if kuraregexp.IsAssetVersion(args[1]) {
						asset.Version = args[1]
					} else {
						return fmt.Errorf("invalid asset version %s", args[1])
					}
					filesIndex = 2
				}

				go func() {
					if err := func() error {
						for _, arg := range args[filesIndex:] {
							if kuraregexp.IsArchive(arg) {
								f, err := os.Open(arg)
								if err != nil {
									return err
								}
								defer f.Close()

								fi, err := f.Stat()
								if err != nil {
									return err
								}

								hdr, err := tar.FileInfoHeader(fi, fi.Name())
								if err != nil {
									return err
								}

								if err = tw.WriteHeader(hdr); err != nil {
									return err
								}

								if _, err = io.Copy(tw, f); err != nil {
									return err
								}
							}
						}

						return nil
					}(); err != nil {
						_ = tw.Close()
						_ = gz.Close()
						_ = pw.CloseWithError(err)
						return
					}

					_ = tw.Close()
					_ = gz.Close()
					_ = pw.Close()
				}()

				cli, err := clientFrom(cmd)
				if err != nil {
					return err
				}

				if err := cli.UploadAsset(ctx, pr, "application/x-gzip", asset, keyName); err != nil {
					return err
				}

				return fprintAssets(cmd, *asset)
			},
		}
	)

	cmd.Flags().StringVar(&keyName, "key", "", "keyring entry to decrypt the archive with")

	return cmd
}
