package ui_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-tools/volscan/internal/event"
	"github.com/kestrel-tools/volscan/internal/ui"
)

func TestQuietPresenter_SummaryOnComplete(t *testing.T) {
	t.Parallel()

	p := ui.NewPresenter(ui.Config{Quiet: true})
	events := make(chan event.Event, 4)
	events <- event.Event{Type: event.ScanStarted}
	events <- event.Event{Type: event.Progress, Percent: 50}
	events <- event.Event{Type: event.ScanComplete, FilesProcessed: 10}
	close(events)

	require.NoError(t, p.Run(events))
	assert.Equal(t, "scan complete", p.Summary())
}

func TestQuietPresenter_SummaryOnFailure(t *testing.T) {
	t.Parallel()

	p := ui.NewPresenter(ui.Config{Quiet: true})
	events := make(chan event.Event, 2)
	events <- event.Event{Type: event.ScanStarted}
	events <- event.Event{Type: event.ScanFailed}
	close(events)

	require.NoError(t, p.Run(events))
	assert.Equal(t, "scan failed", p.Summary())
}
