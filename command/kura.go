package command

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	xslice "github.com/frantjc/x/slice"
	"github.com/kurahq/kura"
	"github.com/kurahq/kura/internal/kurahttp"
	"github.com/kurahq/kura/internal/kurapubsub"
	"github.com/kurahq/kura/internal/kurasql"
	"github.com/kurahq/kura/pak"
	"github.com/spf13/cobra"
	"gocloud.dev/blob"
	"gocloud.dev/postgres"
	"gocloud.dev/pubsub"
)

func retry(fn func() error, retries int) error {
	for i := 0; true; i++ {
		if err := fn(); err == nil {
			break
		} else if i >= retries {
			return err
		}

		time.Sleep(time.Second * time.Duration(i) * 2)
	}

	return nil
}

// NewKura returns the root command for
// kura which acts as its CLI entrypoint.
func NewKura() *cobra.Command {
	var (
		address      string
		dburlstr     string
		pubsuburlstr string
		bloburlstr   string
		keyringstr   string
		verbosity    int
		cmd          = &cobra.Command{
			Use:           "kura",
			Version:       kura.SemVer(),
			SilenceErrors: true,
			SilenceUsage:  true,
			PersistentPreRun: func(cmd *cobra.Command, _ []string) {
				if verbose := os.Getenv("KURA_VERBOSE"); verbose != "" && xslice.Some([]string{"1", "y", "yes", "true", "t"}, func(s string, _ int) bool {
					return strings.EqualFold(s, verbose)
				}) {
					verbosity = 2
				}

				cmd.SetContext(
					kura.WithLogger(
						cmd.Context(), kura.NewLogger().V(2-verbosity),
					),
				)
			},
			RunE: func(cmd *cobra.Command, args []string) error {
				var (
					ctx = cmd.Context()
					log = kura.LoggerFrom(ctx)
				)

				log.Info("opening bucket " + bloburlstr)
				bucket, err := blob.OpenBucket(ctx, bloburlstr)
				if err != nil {
					return err
				}
				defer bucket.Close()

				var db *sql.DB
				if dburlstr == "" {
					dburlstr = os.Getenv("KURA_DB_URL")
				}

				log.Info("opening postgres " + dburlstr)
				if err = retry(func() error {
					db, err = postgres.Open(ctx, dburlstr)
					return err
				}, 9); err != nil {
					return err
				}
				defer db.Close()

				log.Info("running migrations against postgres " + dburlstr)
				if err = retry(func() error {
					return kurasql.Migrate(ctx, db)
				}, 9); err != nil {
					return err
				}

				log.Info("opening topic " + pubsuburlstr)
				topic, err := pubsub.OpenTopic(ctx, pubsuburlstr)
				if err != nil {
					return err
				}
				defer topic.Shutdown(ctx)

				log.Info("opening subscription " + pubsuburlstr)
				subscription, err := pubsub.OpenSubscription(ctx, pubsuburlstr)
				if err != nil {
					return err
				}
				defer subscription.Shutdown(ctx)

				keyring := pak.Keyring{}
				if keyringstr == "" {
					keyringstr = os.Getenv("KURA_KEYS")
				}
				if keyringstr != "" {
					log.Info("loading keyring " + keyringstr)
					if keyring, err = pak.LoadKeyring(keyringstr); err != nil {
						return err
					}
				}

				var (
					srv = &http.Server{
						ReadHeaderTimeout: time.Second * 5,
						BaseContext: func(l net.Listener) context.Context {
							return ctx
						},
						Handler: kurahttp.NewHandler(bucket, db, topic),
					}
					errC = make(chan error)
				)
				defer srv.Close()

				lis, err := net.Listen("tcp", address)
				if err != nil {
					return err
				}
				defer lis.Close()

				go func() {
					log.Info("listening on " + address)
					errC <- srv.Serve(lis)
				}()

				go func() {
					log.Info("receiving messages on " + pubsuburlstr)
					errC <- kurapubsub.Receive(ctx, bucket, db, subscription, keyring)
				}()

				select {
				case <-ctx.Done():
					return ctx.Err()
				case err := <-errC:
					return err
				}
			},
		}
	)

	cmd.SetVersionTemplate("{{ .Name }}{{ .Version }} " + runtime.Version() + "\n")
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "V", "verbosity for kura")
	cmd.PersistentFlags().String("url", "", "base URL for kura")

	cmd.Flags().StringVar(&address, "addr", ":8080", "listen address for kura")
	cmd.Flags().StringVar(&dburlstr, "db", "", "database URL for kura")
	cmd.Flags().StringVar(&pubsuburlstr, "pubsub", "mem://", "pubsub URL for kura")
	cmd.Flags().StringVar(&bloburlstr, "blob", "mem://", "blob URL for kura")
	cmd.Flags().StringVar(&keyringstr, "keys", "", "keyring file for kura")

	cmd.AddCommand(newGet(), newUpload(), newUnpack(), newAnalyze())

	return cmd
}

func clientFrom(cmd *cobra.Command) (*kura.Client, error) {
	cli := new(kura.Client)

	if urlstr := cmd.Flag("url").Value.String(); urlstr != "" {
		var err error
		if cli.Base, err = url.Parse(urlstr); err != nil {
			return nil, err
		}
	}

	return cli, nil
}

func fprintAssets(cmd *cobra.Command, assets ...kura.Asset) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)

	fmt.Fprintln(tw, "NAME\tVERSION\tSTATUS\tENTRIES\tSIZE")
	for _, asset := range assets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", asset.Name, asset.Version, asset.Status, asset.Entries, asset.Size)
	}

	return tw.Flush()
}
