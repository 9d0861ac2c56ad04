package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shahar-caura/plantid/internal/plant"
	"github.com/shahar-caura/plantid/internal/render"
)

func newIdentifyCmd(cc *commandContext, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:               "identify <image>",
		Short:             "Identify the plant in an image",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeImageFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			w, err := wire(cmd.Context(), cfg, nil, logger)
			if err != nil {
				return err
			}
			if _, err := selectPath(w.controller, args[0]); err != nil {
				return err
			}

			outcomes, err := w.controller.Identify(cmd.Context())
			if err != nil {
				return err
			}
			outcome := <-outcomes

			out := cmd.OutOrStdout()
			if err := render.Text(out, outcome, render.ShouldColorize(out)); err != nil {
				return err
			}
			if tf, ok := outcome.(plant.TransportFailure); ok {
				return fmt.Errorf("identify: %s", tf.Message)
			}
			return nil
		},
	}
}

func newTestLocalCmd(cc *commandContext, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:               "test-local <image>",
		Short:             "Run an image through the local model only",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeImageFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			w, err := wire(cmd.Context(), cfg, nil, logger)
			if err != nil {
				return err
			}
			if _, err := selectPath(w.controller, args[0]); err != nil {
				return err
			}

			replies, err := w.controller.TestLocal(cmd.Context())
			if err != nil {
				return err
			}
			reply := <-replies
			if reply.Err != nil {
				return fmt.Errorf("local test error: %w", reply.Err)
			}

			out := cmd.OutOrStdout()
			return render.LocalText(out, *reply.Result, render.ShouldColorize(out))
		},
	}
}
