package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shahar-caura/plantid/internal/banner"
	"github.com/shahar-caura/plantid/internal/dropzone"
	"github.com/shahar-caura/plantid/internal/plant"
	"github.com/shahar-caura/plantid/internal/provider"
	"github.com/shahar-caura/plantid/internal/server"
)

func newServeCmd(cc *commandContext, logger *slog.Logger) *cobra.Command {
	var port int
	var dropDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("dropzone") {
				cfg.Dropzone.Dir = dropDir
			}

			ctx := cmd.Context()
			hub := server.NewSSEHub(logger)
			w, err := wire(ctx, cfg, hub, logger)
			if err != nil {
				return err
			}

			b := banner.New(cfg.Server.Description, logger)
			announceBanner(ctx, b, w.client, logger)

			if cfg.Dropzone.Dir != "" {
				a := dropzone.New(cfg.Dropzone.Dir, cfg.Dropzone.Settle.Duration, w.controller, w.panes, logger)
				if cfg.Dropzone.AutoIdentify {
					a.OnDrop(func(img *plant.SelectedImage) {
						if _, err := w.controller.Identify(ctx); err != nil {
							logger.Warn("auto-identify failed", "selection", img.ID, "error", err)
						}
					})
				}
				go func() {
					if err := a.Start(ctx); err != nil {
						logger.Error("dropzone stopped", "dir", cfg.Dropzone.Dir, "error", err)
					}
				}()
			}

			srv := server.New(cfg.Server.Port, version, w.controller, w.panes, b, hub, logger)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (overrides server.port)")
	cmd.Flags().StringVar(&dropDir, "dropzone", "", "directory to watch for dropped images (overrides dropzone.dir)")

	return cmd
}

// announceBanner loads model info in the background and logs the page
// description once it is settled. The returned channel closes after that.
func announceBanner(ctx context.Context, b *banner.Banner, source provider.ModelInfoSource, logger *slog.Logger) <-chan struct{} {
	loaded := b.Start(ctx, source)
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-loaded
		logger.Info("page description ready", "description", b.Text(), "model", b.Model())
	}()
	return done
}
