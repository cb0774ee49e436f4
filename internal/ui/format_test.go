package ui_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bamsammich/taskmap/internal/ui"
)

func TestFormatBytesGranularities(t *testing.T) {
	t.Parallel()

	for n, want := range map[uint64]string{
		0:       "0 B",
		512:     "512 B",
		4096:    "4.0 KiB",
		65536:   "64 KiB",
		1 << 20: "1.0 MiB",
	} {
		assert.Equal(t, want, ui.FormatBytes(n), "bytes %d", n)
	}
}

func TestFormatCountGroupsThousands(t *testing.T) {
	t.Parallel()

	for n, want := range map[int64]string{
		7:       "7",
		14302:   "14,302",
		1 << 20: "1,048,576",
		-2500:   "-2,500",
	} {
		assert.Equal(t, want, ui.FormatCount(n), "count %d", n)
	}
}

func TestFormatAgeOfNeverIsPlaceholder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "--", ui.FormatAge(time.Time{}))
	assert.Contains(t, ui.FormatAge(time.Now().Add(-90*time.Minute)), "hour ago")
}

func TestFormatDurationUnits(t *testing.T) {
	t.Parallel()

	for d, want := range map[time.Duration]string{
		0:                               "0s",
		1400 * time.Millisecond:         "1s",
		59*time.Minute + 59*time.Second: "59m 59s",
		26*time.Hour + 5*time.Minute:    "26h 05m 00s",
	} {
		assert.Equal(t, want, ui.FormatDuration(d), "duration %s", d)
	}
}
