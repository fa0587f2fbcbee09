package engine

import (
	"log/slog"

	"github.com/starford/wikishell/internal/wikifolder"
)

func (h *Handle) runInit() error {
	if err := wikifolder.Scaffold(h.args.Folder, h.args.Template, Version, h.now()); err != nil {
		return err
	}
	h.metrics.Initialized()
	h.logger.Info("wiki initialized",
		slog.String("folder", h.args.Folder),
		slog.String("template", h.args.Template))
	return nil
}
