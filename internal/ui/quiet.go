package ui

import "github.com/kestrel-tools/volscan/internal/event"

// quietPresenter prints nothing; it keeps only the terminal outcome for
// Summary. The CLI does not print that summary under -q.
type quietPresenter struct {
	last event.Event
}

func (p *quietPresenter) Run(events <-chan event.Event) error {
	for ev := range events {
		if ev.Type == event.ScanComplete || ev.Type == event.ScanFailed {
			p.last = ev
		}
	}
	return nil
}

func (p *quietPresenter) Summary() string {
	if p.last.Type == event.ScanFailed {
		return "scan failed"
	}
	return "scan complete"
}
