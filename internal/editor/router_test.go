package editor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterNoSelectionIsNoOp(t *testing.T) {
	s, _ := newTestSession(t)

	assert.NotPanics(t, func() {
		s.ApplyProperty("strokeWidth", 6.0)
	})
	s.FlushHistory()
	assert.Equal(t, 1, s.HistoryLength(), "no mutation, no snapshot")
}

func TestRouterPropertyNotApplicableIsNoOp(t *testing.T) {
	s, _ := newTestSession(t)
	shape := NewShape(ShapeRectangle, 10, 10, 50, 50)
	s.AddObject(shape)
	s.FlushHistory()
	before := s.HistoryLength()

	s.SelectObject(shape.ID)
	assert.NotPanics(t, func() {
		s.ApplyProperty("smoothness", 0.5)
	})
	s.FlushHistory()
	assert.Equal(t, before, s.HistoryLength(), "smoothness on a shape must not touch history")
}

func TestRouterMultiSelectionDisablesEdits(t *testing.T) {
	s, line := newTestSession(t)
	shape := NewShape(ShapeCircle, 10, 10, 40, 40)
	s.AddObject(shape)

	s.SelectObjects([]string{line.ID, shape.ID})
	assert.Equal(t, 2, s.MultiSelectionCount())

	s.ApplyProperty("strokeWidth", 9.0)
	assert.Equal(t, 2.0, line.Stroke.Width)
	assert.Equal(t, 1.0, shape.Stroke.Width)
}

func TestChartLineStrokeMutations(t *testing.T) {
	s, line := newTestSession(t)
	s.SelectObject(line.ID)

	s.ApplyProperty("strokeWidth", 6.0)
	s.ApplyProperty("color", "#ff0000")
	s.ApplyProperty("opacity", 0.5)

	assert.Equal(t, 6.0, line.Stroke.Width)
	assert.Equal(t, "#ff0000", line.Stroke.Color)
	assert.Equal(t, 0.5, line.Stroke.Opacity)
	assert.Equal(t, 0.5, line.Opacity)
}

func TestSmoothnessRegeneratesPath(t *testing.T) {
	s, line := newTestSession(t)
	require.Len(t, line.Path, 252, "full resolution at smoothness 1")

	s.SelectObject(line.ID)
	s.ApplyProperty("smoothness", 0.0)

	// factor 11 over 252 points: indices 0,11,...,242 plus the forced final
	assert.Len(t, line.Path, 24)
	assert.Equal(t, 0.0, line.Smoothness)

	s.ApplyProperty("smoothness", 1.0)
	assert.Len(t, line.Path, 252)
}

func TestAxisLabelGroupBroadcast(t *testing.T) {
	s, _ := newTestSession(t)

	var group *AxisLabelGroup
	for _, o := range s.Scene().Objects() {
		if g, ok := o.(*AxisLabelGroup); ok && g.Orientation == OrientationY {
			group = g
		}
	}
	require.NotNil(t, group)
	k := len(group.Labels)
	require.Greater(t, k, 1)

	s.SelectObject(group.ID)
	s.ApplyProperty("fontSize", 18.0)

	for _, l := range group.Labels {
		assert.Equal(t, 18.0, l.FontSize)
	}

	// the x-axis group is untouched
	for _, o := range s.Scene().Objects() {
		if g, ok := o.(*AxisLabelGroup); ok && g.Orientation == OrientationX {
			for _, l := range g.Labels {
				assert.Equal(t, 12.0, l.FontSize)
			}
		}
	}
}

func TestAxisLineStyleUpdatesSiblings(t *testing.T) {
	s, _ := newTestSession(t)
	// add a second y-axis line (e.g. a right-hand price scale)
	second := NewAxisLine(OrientationY, 860, 40, 400)
	s.AddObject(second)

	first := s.Scene().AxisLinesByOrientation(OrientationY)[0]
	s.SelectObject(first.ID)
	s.ApplyProperty("lineStyle", "dashed")

	for _, al := range s.Scene().AxisLinesByOrientation(OrientationY) {
		assert.NotEmpty(t, al.Stroke.Dash, "every sibling y-axis line takes the style")
	}
	for _, al := range s.Scene().AxisLinesByOrientation(OrientationX) {
		assert.Empty(t, al.Stroke.Dash, "x-axis lines keep their style")
	}
}

func TestLabelsPanelReachesThroughToAxisLine(t *testing.T) {
	s, _ := newTestSession(t)

	var group *AxisLabelGroup
	for _, o := range s.Scene().Objects() {
		if g, ok := o.(*AxisLabelGroup); ok && g.Orientation == OrientationX {
			group = g
		}
	}
	require.NotNil(t, group)

	s.SelectObject(group.ID)
	s.ApplyProperty("axisLineWidth", 4.0)
	s.ApplyProperty("axisLineColor", "#00ff00")

	axis := s.Scene().AxisLinesByOrientation(OrientationX)[0]
	assert.Equal(t, 4.0, axis.Stroke.Width)
	assert.Equal(t, "#00ff00", axis.Stroke.Color)

	// the y axis is a different object and stays put
	yAxis := s.Scene().AxisLinesByOrientation(OrientationY)[0]
	assert.Equal(t, 1.0, yAxis.Stroke.Width)
}

func TestLogoPropertyMutations(t *testing.T) {
	s, _ := newTestSession(t)
	logo := NewLogo(3, "Brand", 10, 10, 120, 40)
	s.AddObject(logo)
	s.FlushHistory()
	before := s.HistoryLength()

	s.SelectObject(logo.ID)
	s.ApplyProperty("visible", false)
	s.ApplyProperty("opacity", 0.5)
	s.ApplyProperty("width", 200.0)
	s.ApplyProperty("height", 80.0)
	s.ApplyProperty("left", 25.0)
	s.FlushHistory()

	assert.False(t, logo.Visible)
	assert.Equal(t, 0.5, logo.Opacity)
	assert.Equal(t, 200.0, logo.Width)
	assert.Equal(t, 80.0, logo.Height)
	assert.Equal(t, 25.0, logo.Left)
	assert.Equal(t, before+1, s.HistoryLength())

	// text properties do not route to a logo
	s.ApplyProperty("fontSize", 18.0)
	s.FlushHistory()
	assert.Equal(t, before+1, s.HistoryLength())
}

func TestGeometryAppliesToAnyKind(t *testing.T) {
	s, line := newTestSession(t)
	text := NewAnnotation("note", 100, 100)
	s.AddObject(text)

	s.SelectObject(line.ID)
	s.ApplyProperty("left", 75.0)
	s.ApplyProperty("angle", 15.0)
	assert.Equal(t, 75.0, line.Left)
	assert.Equal(t, 15.0, line.Angle)

	s.SelectObject(text.ID)
	s.ApplyProperty("top", 222.0)
	assert.Equal(t, 222.0, text.Top)
}

func TestPropertyViewMirrorsMutation(t *testing.T) {
	s, line := newTestSession(t)
	s.SelectObject(line.ID)

	s.ApplyProperty("strokeWidth", 6.0)

	view := s.SelectionView()
	require.NotNil(t, view)
	assert.Equal(t, 6.0, view.Stroke.Width)
}

func TestExampleScenario(t *testing.T) {
	// load AAPL 1Y, select the chart line, set strokeWidth=6, expect one
	// history push after the debounce, undo reverts and keeps 5 objects
	s := NewSession(nil, nil, WithDebounce(10*time.Millisecond))
	line := s.LoadSeries("AAPL", "1Y", testSeries(252))
	require.Equal(t, 5, s.Scene().Len())

	s.SelectObject(line.ID)
	s.ApplyProperty("strokeWidth", 6.0)

	time.Sleep(60 * time.Millisecond)
	require.Equal(t, 2, s.HistoryLength(), "one push after debounce")

	require.True(t, s.Undo())
	restored := s.Scene().ByID(line.ID).(*ChartLine)
	assert.Equal(t, 2.0, restored.Stroke.Width)
	assert.Equal(t, 5, s.Scene().Len())
}
