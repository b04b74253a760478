package cli

import (
	"context"
	"errors"
	"net"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	servePort      int
	serveHost      string
	serveStaticDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		if a == nil || a.Container == nil {
			return errors.New("app not initialized")
		}
		c := a.Container

		srvCfg := c.ServerConfig()
		host, port, err := net.SplitHostPort(srvCfg.Addr)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("host") {
			host = serveHost
		}
		if cmd.Flags().Changed("port") {
			port = strconv.Itoa(servePort)
		}
		srvCfg.Addr = net.JoinHostPort(host, port)
		if cmd.Flags().Changed("static-dir") {
			srvCfg.StaticDir = serveStaticDir
		}

		srv := c.NewAPIServer(srvCfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(srv.Start)
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.Config.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 5000, "listen port (overrides PORT)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (overrides HOST)")
	serveCmd.Flags().StringVar(&serveStaticDir, "static-dir", "", "static pages directory (overrides STATIC_DIR)")
	rootCmd.AddCommand(serveCmd)
}
