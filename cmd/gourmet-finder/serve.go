package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/gourmet-finder/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the restaurant search API over HTTP",
	Long: `Serve starts the HTTP API:

  GET /api/restaurants/search/list   one page of results
  GET /api/restaurants/search/map    every result, fetched concurrently
  GET /api/restaurants/search        legacy page route (radius=)
  GET /api/restaurants/detail?id=    a single restaurant
  GET /healthz, /metrics

The server drains in-flight requests on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr, default :8080)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	a.log.Info("starting gourmet-finder",
		zap.String("version", version),
		zap.String("addr", a.cfg.Server.Addr),
		zap.Int("page_size", a.agg.PageSize()),
		zap.Int("fan_out_limit", a.cfg.Provider.FanOutLimit))

	srv := server.New(a.cfg.Server, a.provider, a.agg, a.log.Named("http"))
	return srv.Run(ctx)
}
