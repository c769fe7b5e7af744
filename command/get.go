package command

import (
	"fmt"

	"github.com/kurahq/kura"
	"github.com/kurahq/kura/internal/kuraregexp"
	"github.com/spf13/cobra"
)

func newGet() *cobra.Command {
	var (
		cmd = &cobra.Command{
			Use:           "get",
			Version:       kura.SemVer(),
			SilenceErrors: true,
			SilenceUsage:  true,
		}
	)

	cmd.AddCommand(newGetAsset())
	cmd.AddCommand(newGetAssets())
	cmd.AddCommand(newGetReport())

	return cmd
}

func newGetAssets() *cobra.Command {
	var (
		cmd = &cobra.Command{
			Use:           "assets",
			Version:       kura.SemVer(),
			SilenceErrors: true,
			SilenceUsage:  true,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()

				cli, err := clientFrom(cmd)
				if err != nil {
					return err
				}

				assets, err := cli.GetAssets(ctx)
				if err != nil {
					return err
				}

				return fprintAssets(cmd, assets...)
			},
		}
	)

	return cmd
}

func assetFromArgs(args []string) (*kura.Asset, error) {
	asset := &kura.Asset{}

	switch len(args) {
	case 1:
		if kuraregexp.IsUUID(args[0]) {
			asset.ID = args[0]
		} else if kuraregexp.IsAssetName(args[0]) {
			asset.Name = args[0]
		} else {
			return nil, fmt.Errorf("invalid argument %s", args[0])
		}
	case 2:
		if kuraregexp.IsAssetName(args[0]) && kuraregexp.IsAssetVersion(args[1]) {
			asset.Name = args[0]
			asset.Version = args[1]
		} else {
			return nil, fmt.Errorf("invalid arguments %s %s", args[0], args[1])
		}
	}

	return asset, nil
}

func newGetAsset() *cobra.Command {
	var (
		cmd = &cobra.Command{
			Use:           "asset",
			Version:       kura.SemVer(),
			Args:          cobra.RangeArgs(1, 2),
			SilenceErrors: true,
			SilenceUsage:  true,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()

				asset, err := assetFromArgs(args)
				if err != nil {
					return err
				}

				cli, err := clientFrom(cmd)
				if err != nil {
					return err
				}

				if err := cli.GetAsset(ctx, asset); err != nil {
					return err
				}

				return fprintAssets(cmd, *asset)
			},
		}
	)

	return cmd
}

func newGetReport() *cobra.Command {
	var (
		cmd = &cobra.Command{
			Use:           "report",
			Version:       kura.SemVer(),
			Args:          cobra.RangeArgs(1, 2),
			SilenceErrors: true,
			SilenceUsage:  true,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()

				asset, err := assetFromArgs(args)
				if err != nil {
					return err
				}

				cli, err := clientFrom(cmd)
				if err != nil {
					return err
				}

				report, err := cli.GetReport(ctx, asset)
				if err != nil {
					return err
				}

				_, err = fmt.Fprint(cmd.OutOrStdout(), report.Text())
				return err
			},
		}
	)

	return cmd
}
