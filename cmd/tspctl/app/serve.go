package app

import (
	"context"
	"github.com/spf13/cobra"
	"io"
	"k8s.io/klog/v2"
	"os"
	"os/signal"
	"syscall"
	"tspgateway/cmd/tspctl/config"
	"tspgateway/cmd/tspctl/options"
	"tspgateway/pkg/generic"
	"tspgateway/pkg/web"
)

func newServeCmd() *cobra.Command {
	return newSubCommand("serve", "Serve the terminal operations over REST", cobra.NoArgs, nil, serve)
}

func serve(_ context.Context, o *options.Options, c *config.Config, _ io.Writer, _ []string) error {
	server := web.NewServer(generic.Default(), o, c)

	exit, err := server.Serve()
	if err != nil {
		return err
	}
	klog.V(1).InfoS("Server started", "port", o.Port, "gateway", o.GatewayURL)

	// kill (no param) default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be catch, so don't need add it
	exitCh := make(chan os.Signal, 1)
	signal.Notify(exitCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-exitCh
	klog.V(1).InfoS("Shutting down", "signal", sig.String(), "wait", o.Wait.Duration)

	ctx, cancel := context.WithTimeout(context.Background(), o.Wait.Duration)
	defer cancel()
	exit(ctx)
	return nil
}
