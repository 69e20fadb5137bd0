package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/kestrel-tools/volscan/internal/event"
)

// plainPresenter renders one progress line to stderr per tick and a final
// summary line. It is the default presenter, used unless --quiet is set or
// --tui is set on a terminal.
type plainPresenter struct {
	w, errW io.Writer
	root    string

	filesProcessed int64
	elapsedLine    string
}

func (p *plainPresenter) Run(events <-chan event.Event) error {
	for ev := range events {
		p.handleEvent(ev)
	}
	return nil
}

func (p *plainPresenter) handleEvent(ev event.Event) {
	switch ev.Type {
	case event.SourceSelected:
		fmt.Fprintf(p.errW, "scanning %s using %s\n", p.root, ev.Source)
	case event.SourceFallback:
		fmt.Fprintf(p.errW, "falling back to %s: %v\n", ev.Source, ev.Error)
	case event.Progress:
		p.filesProcessed = ev.FilesProcessed
		fmt.Fprintf(p.errW, "progress: %5.1f%%  %s files  %s\n",
			ev.Percent, FormatCount(ev.FilesProcessed), truncatePath(ev.Path, 60))
	case event.BuildingTree, event.Analyzing:
		fmt.Fprintf(p.errW, "%.0f%%  %s\n", ev.Percent, strings.ToLower(ev.Type.String()))
	case event.ScanComplete:
		p.filesProcessed = ev.FilesProcessed
		fmt.Fprintf(p.errW, "100%%  %s files\n", FormatCount(ev.FilesProcessed))
		p.elapsedLine = fmt.Sprintf("scanned %s files under %s", FormatCount(ev.FilesProcessed), p.root)
	case event.ScanFailed:
		fmt.Fprintf(p.errW, "scan failed: %v\n", ev.Error)
	}
}

func (p *plainPresenter) Summary() string {
	if p.elapsedLine != "" {
		return p.elapsedLine
	}
	return fmt.Sprintf("scanned %s files under %s", FormatCount(p.filesProcessed), p.root)
}

func truncatePath(path string, max int) string {
	if len(path) <= max {
		return path
	}
	return "…" + path[len(path)-max+1:]
}
