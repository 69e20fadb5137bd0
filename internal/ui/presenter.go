package ui

import (
	"io"

	"github.com/kestrel-tools/volscan/internal/event"
)

// Presenter consumes scan lifecycle events and displays progress.
type Presenter interface {
	// Run consumes events until the channel closes. Blocks until done.
	Run(events <-chan event.Event) error
	// Summary returns the final summary line.
	Summary() string
}

// Config configures a Presenter.
type Config struct {
	Writer    io.Writer
	ErrWriter io.Writer
	RootPath  string
	IsTTY     bool
	Quiet     bool
	TUI       bool
}

// NewPresenter creates the appropriate presenter based on configuration:
// quiet wins outright, then a full-screen TUI if requested and attached to
// a terminal, otherwise the plain inline presenter.
//
//nolint:ireturn // factory function returns interface by design
func NewPresenter(cfg Config) Presenter {
	if cfg.Quiet {
		return &quietPresenter{}
	}
	if cfg.TUI && cfg.IsTTY {
		return newTUIPresenter(cfg)
	}
	return &plainPresenter{w: cfg.Writer, errW: cfg.ErrWriter, root: cfg.RootPath}
}
