package ui_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kestrel-tools/volscan/internal/ui"
)

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1024 * 1024, "1.0 MiB"},
		{1024 * 1024 * 1024, "1.0 GiB"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ui.FormatBytes(c.in))
	}
}

func TestFormatCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", ui.FormatCount(0))
	assert.Equal(t, "42", ui.FormatCount(42))
	assert.Equal(t, "1,000", ui.FormatCount(1000))
	assert.Equal(t, "1,234,567", ui.FormatCount(1234567))
	assert.Equal(t, "-1,234", ui.FormatCount(-1234))
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "5s", ui.FormatDuration(5*time.Second))
	assert.Equal(t, "1m 05s", ui.FormatDuration(65*time.Second))
	assert.Equal(t, "1h 00m 01s", ui.FormatDuration(time.Hour+time.Second))
}

func TestProgressBar(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", ui.ProgressBar(50, 0))

	full := ui.ProgressBar(100, 10)
	assert.Equal(t, "▪▪▪▪▪▪▪▪▪▪", full)

	empty := ui.ProgressBar(0, 10)
	assert.Equal(t, "□□□□□□□□□□", empty)

	half := ui.ProgressBar(50, 10)
	assert.Equal(t, "▪▪▪▪▪□□□□□", half)

	// Out-of-range percentages clamp rather than panic or overflow.
	assert.Equal(t, full, ui.ProgressBar(150, 10))
	assert.Equal(t, empty, ui.ProgressBar(-10, 10))
}
