package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kestrel-tools/volscan/internal/event"
)

// tuiPresenter is a small full-screen progress view built on
// charmbracelet/bubbletea + lipgloss: percent complete, files processed,
// the current path, and the chosen scan source.
type tuiPresenter struct {
	cfg     Config
	program *tea.Program
	done    chan tuiModel
}

func newTUIPresenter(cfg Config) *tuiPresenter {
	return &tuiPresenter{cfg: cfg, done: make(chan tuiModel, 1)}
}

type tuiModel struct {
	root           string
	source         string
	percent        float64
	filesProcessed int64
	currentPath    string
	message        string
	failed         error
	finished       bool

	events <-chan event.Event
}

type tuiEventMsg event.Event
type tuiClosedMsg struct{}

func waitForEvent(events <-chan event.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return tuiClosedMsg{}
		}
		return tuiEventMsg(ev)
	}
}

func (m tuiModel) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case tea.KeyMsg:
		if v.String() == "ctrl+c" || v.String() == "q" {
			return m, tea.Quit
		}
	case tuiEventMsg:
		ev := event.Event(v)
		switch ev.Type {
		case event.SourceSelected:
			m.source = ev.Source
		case event.SourceFallback:
			m.source = ev.Source
		case event.Progress:
			m.percent = ev.Percent
			m.filesProcessed = ev.FilesProcessed
			m.currentPath = ev.Path
		case event.BuildingTree, event.Analyzing:
			m.percent = ev.Percent
			m.message = ev.Type.String()
		case event.ScanComplete:
			m.percent = 100
			m.filesProcessed = ev.FilesProcessed
			m.finished = true
			return m, tea.Quit
		case event.ScanFailed:
			m.failed = ev.Error
			m.finished = true
			return m, tea.Quit
		}
		return m, waitForEvent(m.events)
	case tuiClosedMsg:
		m.finished = true
		return m, tea.Quit
	}
	return m, nil
}

var (
	tuiTitleStyle = lipgloss.NewStyle().Bold(true)
	tuiDimStyle   = lipgloss.NewStyle().Faint(true)
	tuiBarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

func (m tuiModel) View() string {
	if m.finished {
		return ""
	}
	bar := tuiBarStyle.Render(ProgressBar(m.percent, 40))
	return fmt.Sprintf(
		"%s\n%s\n\n%s %5.1f%%\n%s files processed\n%s\n\n%s\n",
		tuiTitleStyle.Render("volscan — "+m.root),
		tuiDimStyle.Render(m.source),
		bar, m.percent,
		FormatCount(m.filesProcessed),
		tuiDimStyle.Render(truncatePath(m.currentPath, 70)),
		tuiDimStyle.Render("q to hide (the scan keeps running)"),
	)
}

func (p *tuiPresenter) Run(events <-chan event.Event) error {
	// The program can quit before the channel closes (q, or the final
	// event); keep draining so the sender never blocks.
	defer func() {
		for range events {
		}
	}()
	initial := tuiModel{root: p.cfg.RootPath, events: events}
	p.program = tea.NewProgram(initial)

	final, err := p.program.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(tuiModel); ok {
		p.done <- fm
	}
	return nil
}

func (p *tuiPresenter) Summary() string {
	select {
	case fm := <-p.done:
		if fm.failed != nil {
			return fmt.Sprintf("scan failed: %v", fm.failed)
		}
		return fmt.Sprintf("scanned %s files under %s", FormatCount(fm.filesProcessed), fm.root)
	default:
		return "scan complete"
	}
}
