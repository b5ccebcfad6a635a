package cmd

import (
	"fmt"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	idb "github.com/josefjadrny/go-idb"
	"github.com/josefjadrny/go-idb/pkg/database"
	"github.com/josefjadrny/go-idb/pkg/server"
)

const defaultShutdownTimeout = 30 * time.Second

func (c *command) initServeCmd() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configured collections over HTTP",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if len(args) > 0 {
				return cmd.Help()
			}

			logger, err := newLogger(cmd, c.config.GetString(optionNameVerbosity))
			if err != nil {
				return fmt.Errorf("new logger: %v", err)
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			db, err := database.Open(cfg, database.WithLogger(logger), database.WithFs(c.fs))
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() {
				if cerr := db.Close(); cerr != nil && err == nil {
					err = cerr
				}
			}()

			ln, err := net.Listen("tcp", c.config.GetString(optionNameAPIAddr))
			if err != nil {
				return fmt.Errorf("api listener: %w", err)
			}

			logger.Infof("version: %v", idb.Version)

			sigCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(sigCtx)
			srv := server.NewServer(db, logger)
			g.Go(func() error {
				return srv.Serve(ctx, ln, c.config.GetDuration(optionNameShutdownTimeout))
			})
			g.Go(func() error {
				<-ctx.Done()
				if sigCtx.Err() != nil && cmd.Context().Err() == nil {
					logger.Info("received interrupt signal")
				}
				return nil
			})

			return g.Wait()
		},
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return c.config.BindPFlags(cmd.Flags())
		},
	}

	cmd.Flags().String(optionNameAPIAddr, ":8080", "HTTP API listen address")
	cmd.Flags().String(optionNameVerbosity, "info", "log verbosity level 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=trace")
	cmd.Flags().Duration(optionNameShutdownTimeout, defaultShutdownTimeout, "time allowed for in-flight requests on shutdown")
	c.setStorageFlags(cmd)

	c.root.AddCommand(cmd)
}
