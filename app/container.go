package app

import (
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/soocke/pixel-labeler/config"
	"github.com/soocke/pixel-labeler/domain/annotation"
	"github.com/soocke/pixel-labeler/domain/prompt"
	"github.com/soocke/pixel-labeler/domain/records"
	"github.com/soocke/pixel-labeler/domain/render"
	"github.com/soocke/pixel-labeler/ui/images"
	"github.com/soocke/pixel-labeler/ui/model"
	"github.com/soocke/pixel-labeler/ui/presenter"
	"github.com/soocke/pixel-labeler/ui/view"
)

// AppContainer assembles the session, its collaborators, presenters and the root view.
type AppContainer struct {
	Config   *config.Config
	Logger   *slog.Logger
	ImageID  string
	Original image.Image
	Display  image.Image
	Store    *records.Store
	Session  *annotation.Session
	Prompter *prompt.Prompter
	Stats    *model.SessionModel
	RootView *view.RootView

	// Presenters, wired by the app once the view exists.
	AnnotationPresenter *presenter.AnnotationPresenter
	FSMPresenter        *presenter.FSMPresenter
	SessionPresenter    *presenter.SessionPresenter
	Loop                *presenter.Loop
}

// BuildContainer derives the display image, pre-populates the session from stored rows and
// prepares the label prompt on in/out. It has no Tk side effects.
func BuildContainer(cfg *config.Config, logger *slog.Logger, imageID string, original image.Image, in io.Reader, out io.Writer) (*AppContainer, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &AppContainer{Config: cfg, Logger: logger, ImageID: imageID, Original: original}

	mapper, err := annotation.NewMapper(cfg.DisplayScale)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidScale, err)
	}
	boxColor, err := cfg.BoxRGBA()
	if err != nil {
		return nil, err
	}
	vocab := annotation.NewVocabulary(cfg.Labels...)
	c.Display = images.DeriveDisplay(original, cfg.DisplayScale)
	c.Store = records.NewStore(cfg.CSVPath, logger)

	existing, err := annotation.LoadExisting(c.Store, imageID, mapper, vocab, logger)
	if err != nil {
		return nil, err
	}
	c.Session, err = annotation.NewSession(annotation.Options{
		ImageID:    imageID,
		Display:    c.Display,
		Mapper:     mapper,
		Vocabulary: vocab,
		Store:      c.Store,
		Style:      render.Style{Color: boxColor, Thickness: cfg.BoxThickness},
		Existing:   existing,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		logger.Info("loaded existing boxes", "count", len(existing))
	}
	c.Prompter = prompt.NewPrompter(in, out, vocab)
	c.Stats = model.NewSessionModel()
	c.RootView = view.NewRootView(logger)
	return c, nil
}
