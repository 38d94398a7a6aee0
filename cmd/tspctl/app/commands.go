package app

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"io"
	"sigs.k8s.io/yaml"
	"strings"
	"text/tabwriter"
	"tspgateway/cmd/tspctl/config"
	"tspgateway/cmd/tspctl/options"
	"tspgateway/pkg/device"
	"tspgateway/pkg/storage"
	"tspgateway/pkg/tsp"
)

func newInvokeCmd() *cobra.Command {
	var imei string
	return newSubCommand("invoke", "Invoke a gateway action with key=value parameters", cobra.MinimumNArgs(1),
		func(fs *pflag.FlagSet) {
			fs.StringVar(&imei, "imei", imei, "Terminal the action is addressed to, applies the validation of typed commands.")
		},
		func(ctx context.Context, o *options.Options, c *config.Config, out io.Writer, args []string) error {
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}
			action := tsp.Action(args[0])

			var resp *tsp.ActionResponse
			if len(imei) > 0 {
				resp, err = c.Client.Perform(ctx, action, imei, params)
			} else {
				resp, err = c.Client.Call(ctx, action, params)
			}
			if err != nil {
				return err
			}
			return printResponse(out, o.Output, resp)
		})
}

func newOnlineCmd() *cobra.Command {
	return newSubCommand("online <imei>", "Report whether a terminal is online", cobra.ExactArgs(1), nil,
		func(ctx context.Context, o *options.Options, c *config.Config, out io.Writer, args []string) error {
			return printObject(out, o.Output, c.DeviceMgr.Online(ctx, args[0]))
		})
}

func newCountCmd() *cobra.Command {
	partner := 0
	return newSubCommand("count", "Count the online terminals of a partner", cobra.NoArgs,
		func(fs *pflag.FlagSet) {
			fs.IntVar(&partner, "partner", partner, "Partner id.")
		},
		func(ctx context.Context, o *options.Options, c *config.Config, out io.Writer, args []string) error {
			count, resp := c.Client.GetOnlineCount(ctx, partner)
			if !resp.OK() {
				return printResponse(out, o.Output, resp)
			}
			return printObject(out, o.Output, &device.OnlineCount{PartnerID: partner, Count: count})
		})
}

func newDevicesCmd() *cobra.Command {
	partner := 0
	return newSubCommand("devices", "List the online terminals of a partner", cobra.NoArgs,
		func(fs *pflag.FlagSet) {
			fs.IntVar(&partner, "partner", partner, "Partner id.")
		},
		func(ctx context.Context, o *options.Options, c *config.Config, out io.Writer, args []string) error {
			resp, err := c.Client.GetOnlineDevices(ctx, partner)
			if err != nil {
				return err
			}
			return printResponse(out, o.Output, resp)
		})
}

type historyFlags struct {
	start    string
	end      string
	backward bool
	limit    int
}

func (h *historyFlags) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&h.start, "start", h.start, "Start of the range, inclusive: unix seconds, RFC 3339 or \"2006-01-02 15:04:05\".")
	fs.StringVar(&h.end, "end", h.end, "End of the range, exclusive, same formats as --start.")
	fs.BoolVar(&h.backward, "backward", h.backward, "Walk the range from newest to oldest.")
	fs.IntVar(&h.limit, "limit", h.limit, "Rows per store page, 0 for the default.")
}

func (h *historyFlags) query() device.HistoryQuery {
	q := device.HistoryQuery{Start: h.start, End: h.end, Direction: storage.Forward.String()}
	if h.backward {
		q.Direction = storage.Backward.String()
	}
	if h.limit != 0 {
		q.Limit = fmt.Sprint(h.limit)
	}
	return q
}

func newTracksCmd() *cobra.Command {
	h := &historyFlags{}
	return newSubCommand("tracks <imei>", "Read the location history of a terminal", cobra.ExactArgs(1), h.addFlags,
		func(ctx context.Context, o *options.Options, c *config.Config, out io.Writer, args []string) error {
			points, err := c.DeviceMgr.Tracks(ctx, args[0], h.query())
			if err != nil {
				return err
			}
			return printObject(out, o.Output, points)
		})
}

func newMessagesCmd() *cobra.Command {
	h := &historyFlags{}
	return newSubCommand("messages <imei>", "Read the raw message history of a terminal", cobra.ExactArgs(1), h.addFlags,
		func(ctx context.Context, o *options.Options, c *config.Config, out io.Writer, args []string) error {
			points, err := c.DeviceMgr.Messages(ctx, args[0], h.query())
			if err != nil {
				return err
			}
			return printObject(out, o.Output, points)
		})
}

func newActionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List the gateway actions and their HTTP methods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ACTION\tMETHOD")
			for _, a := range tsp.RemoteActions() {
				_, _ = fmt.Fprintf(w, "%s\t%s\n", a, a.Method())
			}
			return w.Flush()
		},
	}
}

// parseParams reads key=value pairs. Values that parse as JSON keep their
// type, anything else is sent as a string.
func parseParams(pairs []string) (tsp.Params, error) {
	params := tsp.Params{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || len(key) == 0 {
			return nil, fmt.Errorf("parameter %q is not key=value", pair)
		}
		var v interface{}
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			v = value
		}
		params[key] = v
	}
	return params, nil
}

func printResponse(out io.Writer, format string, resp *tsp.ActionResponse) error {
	if err := printObject(out, format, resp); err != nil {
		return err
	}
	return resp.RemoteErr()
}

func printObject(out io.Writer, format string, v interface{}) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case options.OutputYAML:
		data, err = yaml.Marshal(v)
	default:
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
