package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shahar-caura/plantid/internal/render"
)

func newModelInfoCmd(cc *commandContext, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "model-info",
		Short: "Show metadata about the local model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			w, err := wire(cmd.Context(), cfg, nil, logger)
			if err != nil {
				return err
			}
			info, err := w.client.ModelInfo(cmd.Context())
			if err != nil {
				return err
			}
			return render.ModelInfoText(cmd.OutOrStdout(), *info)
		},
	}
}
