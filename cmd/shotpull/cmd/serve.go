package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bianoble/shotpull/internal/report"
	"github.com/bianoble/shotpull/pkg/shotpull"
)

var (
	serveAddr   string
	serveDevice bool
)

var serveCmd = &cobra.Command{
	Use:   "serve <report-dir>",
	Short: "Serve a generated report over HTTP",
	Long: `Serves the work directory of an earlier pull, so the report can be opened
from another machine. With --device, files on the device can also be fetched
under /device/, for example /device/sdcard/screenshots/<package>/.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		logger := newLogger()

		var device shotpull.Transport
		if serveDevice {
			client, err := newClient(cmd, nil, runFlags{})
			if err != nil {
				return err
			}
			if device, err = client.Transport(); err != nil {
				return err
			}
		}

		srv := &http.Server{
			Addr:              serveAddr,
			Handler:           report.Handler(dir, device, logger),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			errc <- srv.ListenAndServe()
		}()
		info("Serving %s on http://%s/", dir, displayAddr(serveAddr))

		select {
		case err := <-errc:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serving report: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

// displayAddr turns a listen address such as ":8000" into something a
// browser accepts.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8000", "listen address")
	serveCmd.Flags().BoolVar(&serveDevice, "device", false, "also serve files from the device under /device/")
	rootCmd.AddCommand(serveCmd)
}
