package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/minihttp/minitpl/pkg/minitpl"
	"github.com/minihttp/minitpl/pkg/minitpl/page"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <dir>",
		Short: "Preview a directory of templates over HTTP",
		Long: `Preview a directory of templates over HTTP.

GET /path/page.html renders dir/path/page.html with the model from
page.yaml, page.yml or page.json next to it. Directory requests render
index.html.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := os.Stat(args[0])
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", args[0])
			}

			// Requests are logged through the global logger.
			minitpl.SetLogger(a.log)

			listener, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			srv := &http.Server{
				Handler:           page.Handler(a.engine, args[0]),
				ReadHeaderTimeout: 10 * time.Second,
			}
			minitpl.WithField("root", args[0]).Info("serving on http://%s", listener.Addr())
			err = serve(cmd.Context(), srv, listener)
			minitpl.Info("stopped serving %s", args[0])
			return err
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "127.0.0.1:8080", "listen address")
	return cmd
}

// serve runs srv on listener until ctx is done, then shuts it down.
func serve(ctx context.Context, srv *http.Server, listener net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
