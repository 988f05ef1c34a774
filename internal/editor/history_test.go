package editor

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	errors []string
	infos  []string
}

func (n *recordingNotifier) Info(msg string)  { n.infos = append(n.infos, msg) }
func (n *recordingNotifier) Error(msg string) { n.errors = append(n.errors, msg) }

func testSeries(n int) []DataPoint {
	pts := make([]DataPoint, n)
	for i := 0; i < n; i++ {
		pts[i] = DataPoint{
			Timestamp: int64(i) * 86400000,
			Value:     100 + float64(i%7)*3.5,
		}
	}
	return pts
}

func newTestSession(t *testing.T) (*Session, *ChartLine) {
	t.Helper()
	s := NewSession(nil, nil, WithDebounce(5*time.Millisecond))
	line := s.LoadSeries("AAPL", "1Y", testSeries(252))
	return s, line
}

// applyAndFlush routes one edit and forces the debounced snapshot.
func applyAndFlush(s *Session, name string, value any) {
	s.ApplyProperty(name, value)
	s.FlushHistory()
}

func TestLoadSeriesCreatesCoreObjects(t *testing.T) {
	s, line := newTestSession(t)

	assert.Equal(t, 5, s.Scene().Len())
	assert.Equal(t, KindChartLine, line.Kind())
	assert.Len(t, s.Scene().AxisLinesByOrientation(OrientationX), 1)
	assert.Len(t, s.Scene().AxisLinesByOrientation(OrientationY), 1)
	assert.Equal(t, 1, s.HistoryLength())
}

func TestEditUndoRestoresPriorState(t *testing.T) {
	s, line := newTestSession(t)
	require.Equal(t, 2.0, line.Stroke.Width)

	s.SelectObject(line.ID)
	applyAndFlush(s, "strokeWidth", 6.0)
	require.Equal(t, 6.0, line.Stroke.Width)
	require.Equal(t, 2, s.HistoryLength())

	require.True(t, s.Undo())

	restored, ok := s.Scene().ByID(line.ID).(*ChartLine)
	require.True(t, ok, "chart line id must survive the reload")
	assert.Equal(t, 2.0, restored.Stroke.Width)
	assert.Equal(t, 5, s.Scene().Len())
	assert.Nil(t, s.Selected(), "restore clears selection")
}

func TestNEditsThenNUndosRestoreInitialState(t *testing.T) {
	s, line := newTestSession(t)
	s.SelectObject(line.ID)

	widths := []float64{3, 4, 5, 6, 7}
	for _, w := range widths {
		applyAndFlush(s, "strokeWidth", w)
	}
	require.Equal(t, 1+len(widths), s.HistoryLength())

	for range widths {
		require.True(t, s.Undo())
	}

	restored := s.Scene().ByID(line.ID).(*ChartLine)
	assert.Equal(t, 2.0, restored.Stroke.Width)
	assert.False(t, s.CanUndo())
}

func TestUndoRedoRoundTrip(t *testing.T) {
	s, line := newTestSession(t)
	s.SelectObject(line.ID)
	applyAndFlush(s, "strokeWidth", 6.0)

	require.True(t, s.Undo())
	require.True(t, s.Redo())

	restored := s.Scene().ByID(line.ID).(*ChartLine)
	assert.Equal(t, 6.0, restored.Stroke.Width)
	assert.False(t, s.CanRedo())
}

func TestUndoRedoBoundaries(t *testing.T) {
	s, _ := newTestSession(t)

	assert.False(t, s.Undo(), "undo at index 0 is a no-op")
	assert.False(t, s.Redo(), "redo at the last index is a no-op")
	assert.Equal(t, 1, s.HistoryLength())
}

func TestNewEditAfterUndoDiscardsRedoBranch(t *testing.T) {
	s, line := newTestSession(t)
	s.SelectObject(line.ID)

	applyAndFlush(s, "strokeWidth", 4.0) // S1
	applyAndFlush(s, "strokeWidth", 6.0) // S2
	require.Equal(t, 3, s.HistoryLength())

	require.True(t, s.Undo()) // back to S1
	require.True(t, s.CanRedo())

	s.SelectObject(line.ID)
	applyAndFlush(s, "strokeWidth", 9.0) // S2' replaces S2

	assert.Equal(t, 3, s.HistoryLength())
	assert.False(t, s.CanRedo(), "S2 is unreachable after the branch is discarded")

	restored := s.Scene().ByID(line.ID).(*ChartLine)
	assert.Equal(t, 9.0, restored.Stroke.Width)
}

func TestHistoryCapEvictsOldest(t *testing.T) {
	s := NewSession(nil, nil, WithDebounce(time.Millisecond), WithHistoryLimit(5))
	line := s.LoadSeries("AAPL", "1Y", testSeries(30))
	s.SelectObject(line.ID)

	for i := 0; i < 10; i++ {
		applyAndFlush(s, "strokeWidth", float64(i+3))
	}

	assert.Equal(t, 5, s.HistoryLength(), "length never exceeds the cap")

	// Walk back through what survived eviction: the four most recent edits.
	undos := 0
	for s.Undo() {
		undos++
	}
	assert.Equal(t, 4, undos)
	restored := s.Scene().ByID(line.ID).(*ChartLine)
	assert.Equal(t, float64(10-4+2), restored.Stroke.Width, "oldest surviving snapshot")
}

func TestDefaultHistoryLimit(t *testing.T) {
	assert.Equal(t, 50, HistoryLimit)
}

func TestDebounceCoalescesBursts(t *testing.T) {
	s := NewSession(nil, nil, WithDebounce(20*time.Millisecond))
	line := s.LoadSeries("AAPL", "1Y", testSeries(30))
	s.SelectObject(line.ID)

	// a slider drag: many edits inside one debounce window
	for w := 3.0; w <= 12.0; w++ {
		s.ApplyProperty("strokeWidth", w)
	}
	assert.Equal(t, 1, s.HistoryLength(), "no snapshot while the timer keeps resetting")

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 2, s.HistoryLength(), "exactly one snapshot after the burst")

	require.True(t, s.Undo())
	restored := s.Scene().ByID(line.ID).(*ChartLine)
	assert.Equal(t, 2.0, restored.Stroke.Width)
}

func TestEditSupersedesFiredSnapshotTask(t *testing.T) {
	s := NewSession(nil, nil, WithDebounce(5*time.Millisecond))
	line := s.LoadSeries("AAPL", "1Y", testSeries(30))
	s.SelectObject(line.ID)

	s.ApplyProperty("strokeWidth", 4.0)

	// Let the scheduled task fire while the session lock is held, then route
	// another edit inside the window. The blocked task must not snapshot once
	// the lock is released; only the rescheduled one does.
	s.mu.Lock()
	time.Sleep(20 * time.Millisecond)
	s.history.record()
	s.mu.Unlock()

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, 2, s.HistoryLength(), "the superseded task must not push a second snapshot")
}

func TestMalformedSnapshotLeavesIndexUntouched(t *testing.T) {
	notify := &recordingNotifier{}
	s := NewSession(nil, notify, WithDebounce(time.Millisecond))
	line := s.LoadSeries("AAPL", "1Y", testSeries(30))
	s.SelectObject(line.ID)
	applyAndFlush(s, "strokeWidth", 6.0)

	// corrupt the older snapshot so the next undo cannot restore it
	s.history.entries[0] = []byte("{not json")

	assert.False(t, s.Undo())
	assert.Equal(t, 1, s.history.index, "index must not move on failure")
	assert.NotEmpty(t, notify.errors)

	// the live scene is intact and still editable
	current := s.Scene().ByID(line.ID).(*ChartLine)
	assert.Equal(t, 6.0, current.Stroke.Width)
}

func TestSnapshotPreservesObjectIdentity(t *testing.T) {
	s, line := newTestSession(t)
	ids := make([]string, 0, s.Scene().Len())
	for _, o := range s.Scene().Objects() {
		ids = append(ids, o.ObjectID())
	}

	s.SelectObject(line.ID)
	applyAndFlush(s, "strokeWidth", 6.0)
	require.True(t, s.Undo())

	for i, o := range s.Scene().Objects() {
		assert.Equal(t, ids[i], o.ObjectID(), fmt.Sprintf("object %d keeps its id", i))
	}
}
