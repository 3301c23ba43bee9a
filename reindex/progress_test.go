package reindex

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_Add(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)

	tracker.Start()
	tracker.Add(25)
	tracker.Add(25)
	tracker.Add(75)

	assert.Equal(t, 100, tracker.Current(), "progress is capped at total")
	assert.Greater(t, tracker.Elapsed(), time.Duration(0))
	assert.Contains(t, buf.String(), "100/100")
	assert.Contains(t, buf.String(), "100.0%")
}

func TestProgressTracker_ReportsAtInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 1000, 100)

	tracker.Start()
	tracker.Add(50)
	assert.Empty(t, buf.String())

	tracker.Add(50)
	assert.Contains(t, buf.String(), "100/1000")
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)

	tracker.Start()
	tracker.Add(75)
	tracker.Finish()

	output := buf.String()
	assert.Contains(t, output, "100/100")
	assert.Contains(t, output, "documents/s")
	assert.Equal(t, byte('\n'), output[len(output)-1])
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)

	tracker.Add(50)
	tracker.Finish()

	assert.Empty(t, buf.String())
	assert.Zero(t, tracker.Elapsed())
	assert.Zero(t, tracker.Current())
}
