package wikifolder

import (
	"context"
	"errors"
	"log/slog"

	"github.com/starford/wikishell/internal/apperr"
)

// Initializer bootstraps a folder with a template and returns once the
// initialization has completed.
type Initializer interface {
	Init(ctx context.Context, folder, template string) error
}

// InitFunc adapts a function to Initializer.
type InitFunc func(ctx context.Context, folder, template string) error

// Init implements Initializer.
func (f InitFunc) Init(ctx context.Context, folder, template string) error {
	return f(ctx, folder, template)
}

// Validator ensures a folder is initialized before a server is started on it.
type Validator struct {
	init     Initializer
	template string
	logger   *slog.Logger
}

// NewValidator creates a Validator that initializes missing wikis with template.
func NewValidator(initer Initializer, template string, logger *slog.Logger) *Validator {
	if template == "" {
		template = TemplateServer
	}
	return &Validator{init: initer, template: template, logger: logger}
}

// Ensure checks folder for the manifest and runs the initializer when it
// is absent, waiting for it to finish. It reports whether initialization
// ran. Existing wikis are left untouched.
func (v *Validator) Ensure(ctx context.Context, folder string) (bool, error) {
	ok, err := IsInitialized(folder)
	if err != nil {
		return false, apperr.Validation("validate folder", err)
	}
	if ok {
		v.logger.Debug("wiki folder already initialized", slog.String("folder", folder))
		return false, nil
	}

	v.logger.Info("initializing wiki folder",
		slog.String("folder", folder),
		slog.String("template", v.template))
	if err := v.init.Init(ctx, folder, v.template); err != nil {
		return false, apperr.Validation("initialize folder", err)
	}

	ok, err = IsInitialized(folder)
	if err != nil {
		return false, apperr.Validation("validate folder", err)
	}
	if !ok {
		return false, apperr.Validation("initialize folder", errManifestMissing)
	}
	return true, nil
}

var errManifestMissing = errors.New("initializer finished without writing " + ManifestFile)
