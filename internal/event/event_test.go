package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		want string
		typ  Type
	}{
		{want: "ScanStarted", typ: ScanStarted},
		{want: "SourceSelected", typ: SourceSelected},
		{want: "SourceFallback", typ: SourceFallback},
		{want: "Progress", typ: Progress},
		{want: "BuildingTree", typ: BuildingTree},
		{want: "Analyzing", typ: Analyzing},
		{want: "ScanComplete", typ: ScanComplete},
		{want: "ScanFailed", typ: ScanFailed},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.String())
		})
	}
}

func TestTypeStringUnknown(t *testing.T) {
	assert.Equal(t, "Unknown", Type(999).String())
}

func TestEventZeroValue(t *testing.T) {
	var e Event
	assert.Equal(t, Type(0), e.Type)
	assert.True(t, e.Timestamp.IsZero())
	assert.Empty(t, e.Path)
	assert.Zero(t, e.Percent)
	assert.Zero(t, e.FilesProcessed)
	require.NoError(t, e.Error)
}

func TestEventFields(t *testing.T) {
	now := time.Now()
	e := Event{
		Type:           Progress,
		Timestamp:      now,
		Path:           "dir/file.txt",
		Percent:        42.5,
		FilesProcessed: 100,
	}
	assert.Equal(t, Progress, e.Type)
	assert.Equal(t, now, e.Timestamp)
	assert.Equal(t, "dir/file.txt", e.Path)
	assert.InDelta(t, 42.5, e.Percent, 0.001)
	assert.Equal(t, int64(100), e.FilesProcessed)
}
