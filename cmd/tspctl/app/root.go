package app

import (
	"context"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"io"
	utilserrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/klog/v2"
	"tspgateway/cmd/tspctl/config"
	"tspgateway/cmd/tspctl/options"
	baseoptions "tspgateway/pkg/generic/options"
)

const (
	ComponentTspctl = "tspctl"
)

func NewTspctlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   ComponentTspctl,
		Short: "Query and command TSP tracking terminals",
		Long: `tspctl drives GPS/IoT tracking terminals through a TSP gateway: it checks
whether terminals are online, sends commands to them, reads their track and
message history, and can serve the same operations over REST.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	cmd.AddCommand(
		newInvokeCmd(),
		newOnlineCmd(),
		newCountCmd(),
		newDevicesCmd(),
		newTracksCmd(),
		newMessagesCmd(),
		newActionsCmd(),
		newServeCmd(),
	)
	return cmd
}

// runFunc receives the positional arguments left after flag parsing.
type runFunc func(ctx context.Context, o *options.Options, c *config.Config, out io.Writer, args []string) error

// newSubCommand wires a subcommand the way every tspctl command is parsed:
// its own flag set, then config file, environment and flags layered in that
// order, then validation.
func newSubCommand(use, short string, nargs cobra.PositionalArgs, addFlags func(fs *pflag.FlagSet), run runFunc) *cobra.Command {
	cleanFlagSet := pflag.NewFlagSet(use, pflag.ContinueOnError)
	o := options.NewDefaultOptions()
	cmd := &cobra.Command{
		Use:                use,
		Short:              short,
		Long:               short,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// initial flag parse, since we disable cobra's flag parsing
			if err := cleanFlagSet.Parse(args); err != nil {
				klog.ErrorS(err, "Failed to parse flag")
				_ = cmd.Usage()
				return err
			}

			// short-circuit on help
			baseoptions.PrintHelpAndExitIfRequested(cmd, cleanFlagSet)

			// short-circuit on defaultconfig
			baseoptions.PrintDefaultConfigAndExitIfRequested(options.NewDefaultOptions(), cleanFlagSet)

			positional := cleanFlagSet.Args()
			if nargs != nil {
				if err := nargs(cmd, positional); err != nil {
					_ = cmd.Usage()
					return err
				}
			}

			if err := baseoptions.ParseAndApplyConfigFile(o, args); err != nil {
				return err
			}

			if errs := options.Validate(o); len(errs) != 0 {
				return utilserrors.NewAggregate(errs)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			c, err := o.Config(ctx)
			if err != nil {
				return err
			}
			return run(ctx, o, c, cmd.OutOrStdout(), positional)
		},
	}

	if addFlags != nil {
		addFlags(cleanFlagSet)
	}
	o.AddFlags(cleanFlagSet)
	o.AddBaseFlags(cmd, cleanFlagSet)

	return cmd
}
