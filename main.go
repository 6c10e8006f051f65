package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"

	"github.com/oaiiae/huma-contacts/cli/api"
	"github.com/oaiiae/huma-contacts/cli/logger"
	"github.com/oaiiae/huma-contacts/handlers"
)

const title = "Contacts API"

// set with -ldflags "-X main.version=... -X main.revision=... -X main.created=..."
var (
	version  = "dev"
	revision = ""
	created  = ""
)

// Options for the CLI. Pass flags like `--port` or set env vars like `SERVICE_PORT`.
type Options struct {
	logger.Options
	api.ServerOptions
	api.RouterOptions
	api.StoreOptions
}

func main() {
	huma.NewError = handlers.NewError

	var openapi *huma.OpenAPI

	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		logger := logger.New(&options.Options)
		store := api.NewStore(&options.StoreOptions, logger)
		handler := api.NewRouter(&options.RouterOptions, store, title, version, revision, created, logger,
			func(a huma.API) { openapi = a.OpenAPI() },
		)
		srv := api.NewServer(&options.ServerOptions, handler, logger)

		hooks.OnStart(func() {
			logger.Info("listening", "addr", srv.Addr, "version", version)
			err := srv.ListenAndServe()
			if err != http.ErrServerClosed {
				logger.Error("failed to listen and serve", "err", err)
			} else {
				logger.Info("server closed")
			}
		})
		hooks.OnStop(func() {
			ctx, cancel := context.WithTimeout(context.Background(), options.ShutdownTimeout)
			defer cancel()
			err := srv.Shutdown(ctx)
			if err != nil {
				logger.Warn("could not shutdown the server", "err", err)
			}
		})
	})

	cli.Root().Use = "contacts"
	cli.Root().Version = version
	cli.Root().AddCommand(&cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := openapi.YAML()
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(b))
			return err
		},
	})

	cli.Run()
}
