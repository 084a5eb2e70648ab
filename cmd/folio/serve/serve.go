// Package servecmder provides the serve command running the API server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/foliolabs/folio/api"
	"github.com/foliolabs/folio/pkg/config"
	"github.com/foliolabs/folio/pkg/ingest"
	"github.com/foliolabs/folio/pkg/logger"
	qautils "github.com/foliolabs/folio/pkg/qa/utils"
)

type ServeCommander struct {
	listen    string
	watchDir  string
	configDir string
	debug     bool
	jsonLogs  bool
	logger    *zap.Logger
}

const serveLongDesc string = `Run the Folio API server.

Uploads, the metadata database, and vector indexes live in the .folio
directory. With --watch, files dropped into the given directory are
indexed automatically.`

const serveShortDesc string = "Run the Folio API server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, err = cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("could not get config flag: %v", err)
			}
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address for API server to listen on (overrides config)")
	cmd.Flags().StringVarP(&cmder.watchDir, "watch", "w", "", "Directory to watch for dropped documents (overrides config)")
	cmd.Flags().BoolVar(&cmder.jsonLogs, "json-logs", false, "Emit JSON logs instead of console output")

	return cmd
}

func (c *ServeCommander) run(cmd *cobra.Command) error {
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithJSON(c.jsonLogs))
	defer c.logger.Sync()

	cfg, err := config.Load(c.configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Flags win over config file and environment.
	if cmd.Flags().Changed("listen") {
		cfg.API.Listen = c.listen
	}
	if cmd.Flags().Changed("watch") {
		cfg.Ingest.WatchDir = c.watchDir
	}

	bundle, err := qautils.NewBundle(cfg, c.configDir, c.logger)
	if err != nil {
		return err
	}
	defer bundle.Close()

	server := api.NewServer(api.Config{
		ListenAddr: cfg.API.Listen,
		UploadsDir: bundle.UploadsDir,
	}, bundle.Service, bundle.Store, c.logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 2)

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	if cfg.Ingest.WatchDir != "" {
		watcher := ingest.NewWatcher(cfg.Ingest.WatchDir, bundle.Service, c.logger)
		go func() {
			if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
				errChan <- fmt.Errorf("ingest watcher error: %w", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}
