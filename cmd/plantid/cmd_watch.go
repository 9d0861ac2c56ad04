package main

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	"github.com/shahar-caura/plantid/internal/dropzone"
	"github.com/shahar-caura/plantid/internal/plant"
	"github.com/shahar-caura/plantid/internal/render"
)

func newWatchCmd(cc *commandContext, logger *slog.Logger) *cobra.Command {
	var identify bool

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Select images dropped into a directory",
		Long: `Watch a directory and select each image written into it.

With --identify (or dropzone.auto_identify), every dropped image is
submitted for identification and the result printed.`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveFilterDirs
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			dir := cfg.Dropzone.Dir
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				return errors.New("watch: no directory given and dropzone.dir is not set")
			}
			identify = identify || cfg.Dropzone.AutoIdentify

			ctx := cmd.Context()
			w, err := wire(ctx, cfg, nil, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := render.ShouldColorize(out)
			var mu sync.Mutex
			emit := func(fn func() error) {
				mu.Lock()
				defer mu.Unlock()
				if err := fn(); err != nil {
					logger.Warn("writing output", "error", err)
				}
			}

			a := dropzone.New(dir, cfg.Dropzone.Settle.Duration, w.controller, w.panes, logger)
			a.OnDrop(func(img *plant.SelectedImage) {
				emit(func() error {
					_, err := fmt.Fprintf(out, "Selected %s\n", img.File.Filename())
					return err
				})
				if !identify {
					return
				}
				outcomes, err := w.controller.Identify(ctx)
				if err != nil {
					logger.Warn("identify failed", "selection", img.ID, "error", err)
					return
				}
				go func() {
					outcome := <-outcomes
					if cur := w.controller.Current(); cur == nil || cur.ID != img.ID {
						return
					}
					emit(func() error { return render.Text(out, outcome, colorize) })
				}()
			})

			logger.Info("watching for images", "dir", dir, "identify", identify)
			return a.Start(ctx)
		},
	}

	cmd.Flags().BoolVar(&identify, "identify", false, "identify each dropped image")

	return cmd
}
