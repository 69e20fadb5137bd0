package ui_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-tools/volscan/internal/event"
	"github.com/kestrel-tools/volscan/internal/ui"
)

func newPlainPresenter(root string, errW *bytes.Buffer) ui.Presenter {
	return ui.NewPresenter(ui.Config{
		Writer:    &bytes.Buffer{},
		ErrWriter: errW,
		RootPath:  root,
	})
}

func TestPlainPresenter_ReportsSourceAndProgress(t *testing.T) {
	t.Parallel()

	var errBuf bytes.Buffer
	p := newPlainPresenter("/data", &errBuf)

	events := make(chan event.Event, 8)
	events <- event.Event{Type: event.SourceSelected, Source: "directory walk"}
	events <- event.Event{Type: event.Progress, Percent: 33.3, FilesProcessed: 100, Path: "/data/foo"}
	events <- event.Event{Type: event.ScanComplete, FilesProcessed: 500}
	close(events)

	require.NoError(t, p.Run(events))

	out := errBuf.String()
	assert.Contains(t, out, "/data")
	assert.Contains(t, out, "directory walk")
	assert.Contains(t, out, "33.3%")
	assert.Contains(t, out, "500")
	assert.Contains(t, p.Summary(), "500")
}

func TestPlainPresenter_ReportsFailure(t *testing.T) {
	t.Parallel()

	var errBuf bytes.Buffer
	p := newPlainPresenter("/data", &errBuf)

	events := make(chan event.Event, 2)
	events <- event.Event{Type: event.ScanFailed, Error: errors.New("volume unreadable")}
	close(events)

	require.NoError(t, p.Run(events))
	assert.Contains(t, errBuf.String(), "volume unreadable")
}

func TestPlainPresenter_SummaryFallsBackWithoutScanComplete(t *testing.T) {
	t.Parallel()

	var errBuf bytes.Buffer
	p := newPlainPresenter("/data", &errBuf)

	events := make(chan event.Event)
	close(events)
	require.NoError(t, p.Run(events))

	assert.Contains(t, p.Summary(), "/data")
}
