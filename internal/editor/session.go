package editor

import (
	"fmt"
	"sync"
	"time"
)

// Renderer re-renders the scene after committed mutations. The core never
// reaches for a global canvas handle: whoever owns the rendering surface is
// injected here.
type Renderer interface {
	Render(*Scene)
}

// Session coordinates the scene graph, selection, property routing, history
// and layer derivation for one open chart. All methods are safe for the
// single UI goroutine plus the internal debounce timer.
type Session struct {
	mu        sync.Mutex
	scene     *Scene
	selection *Selection
	history   *History
	renderer  Renderer
	notify    Notifier
	ungrouped map[string]bool
}

type Option func(*Session)

// WithDebounce overrides the history snapshot debounce window.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) { s.history.debounce = d }
}

// WithHistoryLimit overrides the snapshot cap.
func WithHistoryLimit(n int) Option {
	return func(s *Session) { s.history.limit = n }
}

func NewSession(renderer Renderer, notify Notifier, opts ...Option) *Session {
	if notify == nil {
		notify = noopNotifier{}
	}
	s := &Session{
		scene:     NewScene(),
		selection: &Selection{},
		renderer:  renderer,
		notify:    notify,
		ungrouped: map[string]bool{},
	}
	s.history = newHistory(&s.mu, s.scene, notify)
	s.history.rebind = s.rebindObject
	s.history.afterRestore = s.selection.Deselect
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scene exposes the live scene graph for rendering and export.
func (s *Session) Scene() *Scene { return s.scene }

// Default plot placement for a loaded series.
const (
	plotLeft   = 60.0
	plotTop    = 40.0
	plotWidth  = 800.0
	plotHeight = 400.0
)

// LoadSeries initializes the canvas from a price series: the chart line, two
// axis lines and two axis label groups. The initial history snapshot is
// captured once these exist.
func (s *Session) LoadSeries(symbol, timeframe string, data []DataPoint) *ChartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	line := NewChartLine(symbol, timeframe, data, plotLeft, plotTop, plotWidth, plotHeight)
	line.Primary = true

	yAxis := NewAxisLine(OrientationY, plotLeft, plotTop, plotHeight)
	xAxis := NewAxisLine(OrientationX, plotLeft, plotTop+plotHeight, plotWidth)

	yLabels := NewAxisLabelGroup(OrientationY, valueLabels(data))
	yLabels.Left, yLabels.Top = 0, plotTop
	xLabels := NewAxisLabelGroup(OrientationX, timeLabels(data))
	xLabels.Left, xLabels.Top = plotLeft, plotTop+plotHeight+8

	for _, o := range []Object{line, yAxis, xAxis, yLabels, xLabels} {
		s.rebindObject(o)
		s.scene.Add(o)
	}

	s.history.snapshotNow()
	s.renderLocked()
	return line
}

// AddSeries overlays another symbol as an additional chart line.
func (s *Session) AddSeries(symbol, timeframe string, data []DataPoint) *ChartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	line := NewChartLine(symbol, timeframe, data, plotLeft, plotTop, plotWidth, plotHeight)
	s.rebindObject(line)
	s.scene.Add(line)

	s.renderLocked()
	s.history.record()
	return line
}

func valueLabels(data []DataPoint) []*AxisLabel {
	if len(data) == 0 {
		return nil
	}
	min, max := data[0].Value, data[0].Value
	for _, p := range data {
		if p.Value < min {
			min = p.Value
		}
		if p.Value > max {
			max = p.Value
		}
	}
	const ticks = 5
	labels := make([]*AxisLabel, 0, ticks)
	for i := 0; i < ticks; i++ {
		frac := float64(i) / float64(ticks-1)
		v := max - frac*(max-min)
		labels = append(labels, NewAxisLabel(fmt.Sprintf("%.2f", v), 0, frac*plotHeight))
	}
	return labels
}

func timeLabels(data []DataPoint) []*AxisLabel {
	if len(data) == 0 {
		return nil
	}
	const ticks = 6
	labels := make([]*AxisLabel, 0, ticks)
	for i := 0; i < ticks; i++ {
		frac := float64(i) / float64(ticks-1)
		idx := int(frac * float64(len(data)-1))
		t := time.UnixMilli(data[idx].Timestamp).UTC().Format("Jan 02")
		labels = append(labels, NewAxisLabel(t, frac*plotWidth, 0))
	}
	return labels
}

// rebindObject re-attaches per-kind behavior to an object. Behavior is a pure
// function of kind, applied after construction and after every bulk
// reconstruction from a snapshot, since a full reload does not preserve it.
func (s *Session) rebindObject(o Object) {
	b := o.Base()
	b.Selectable = true
	if cl, ok := o.(*ChartLine); ok && cl.Path == nil {
		cl.RebuildPath()
	}
}

// AddObject appends an annotation element (shape, line, text, logo) created
// by an explicit user action.
func (s *Session) AddObject(o Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebindObject(o)
	s.scene.Add(o)
	s.renderLocked()
	s.history.record()
}

// SelectObject activates the object and builds its property view with a
// bound update callback.
func (s *Session) SelectObject(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj := s.scene.ByID(id)
	if obj == nil {
		return
	}
	s.selection.Select(obj, buildPropertyView(obj, s.ApplyProperty))
}

// SelectObjects activates a multi-selection aggregate.
func (s *Session) SelectObjects(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var objs []Object
	for _, id := range ids {
		if o := s.scene.ByID(id); o != nil {
			objs = append(objs, o)
		}
	}
	if len(objs) == 1 {
		s.selection.Select(objs[0], buildPropertyView(objs[0], s.ApplyProperty))
		return
	}
	s.selection.SelectMany(objs)
}

func (s *Session) Deselect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Deselect()
}

func (s *Session) Selected() Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Current()
}

func (s *Session) SelectionView() *PropertyView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.View()
}

func (s *Session) MultiSelectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.MultiCount()
}

// DeleteObject removes one object; deleting the selected object also clears
// the selection. Non-deletable kinds are rejected.
func (s *Session) DeleteObject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(id)
}

func (s *Session) deleteLocked(id string) error {
	if err := s.scene.Remove(id); err != nil {
		return err
	}
	if cur := s.selection.Current(); cur != nil && cur.ObjectID() == id {
		s.selection.Deselect()
	}
	s.renderLocked()
	s.history.record()
	return nil
}

// Undo steps back one snapshot; no-op at the start of history.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.history.undo() {
		return false
	}
	s.renderLocked()
	return true
}

// Redo steps forward one snapshot; no-op at the end of history.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.history.redo() {
		return false
	}
	s.renderLocked()
	return true
}

func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.canUndo()
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.canRedo()
}

// FlushHistory forces any pending debounced snapshot to be taken now.
func (s *Session) FlushHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.history.timer != nil && s.history.timer.Stop() {
		s.history.timer = nil
		s.history.gen++
		s.history.snapshotNow()
	}
}

func (s *Session) HistoryLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.length()
}

func (s *Session) renderLocked() {
	if s.renderer != nil {
		s.renderer.Render(s.scene)
	}
}

// refreshViewLocked rebuilds the property view mirror after a mutation so the
// panel reflects the object's current state.
func (s *Session) refreshViewLocked(obj Object) {
	if cur := s.selection.Current(); cur != nil && cur.ObjectID() == obj.ObjectID() {
		s.selection.view = buildPropertyView(obj, s.ApplyProperty)
	}
}

// ---- Layer panel operations ----

// Layers derives the current display list for the layer panel.
func (s *Session) Layers() []LayerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return DeriveLayers(s.scene, s.ungrouped)
}

// layerMembers resolves a layer id to the affected scene object ids; a
// synthetic group fans out to every member.
func (s *Session) layerMembers(id string) []string {
	if !IsGroupID(id) {
		return []string{id}
	}
	symbol := GroupSymbolOf(id)
	var ids []string
	for _, cl := range s.scene.ChartLines() {
		if cl.Symbol == symbol {
			ids = append(ids, cl.ID)
		}
	}
	return ids
}

func (s *Session) SetLayerVisible(id string, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for _, mid := range s.layerMembers(id) {
		if o := s.scene.ByID(mid); o != nil {
			o.Base().Visible = visible
			if cl, ok := o.(*ChartLine); ok {
				cl.Stroke.Visible = visible
			}
			changed = true
		}
	}
	if changed {
		s.renderLocked()
		s.history.record()
	}
}

func (s *Session) SetLayerLocked(id string, locked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for _, mid := range s.layerMembers(id) {
		if o := s.scene.ByID(mid); o != nil {
			o.Base().Locked = locked
			changed = true
		}
	}
	if changed {
		s.renderLocked()
		s.history.record()
	}
}

func (s *Session) SetLayerOpacity(id string, opacity float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	changed := false
	for _, mid := range s.layerMembers(id) {
		if o := s.scene.ByID(mid); o != nil {
			o.Base().Opacity = opacity
			changed = true
		}
	}
	if changed {
		s.renderLocked()
		s.history.record()
	}
}

// DeleteLayer deletes the object, or every member of a synthetic group. The
// non-deletable core objects reject as usual, so a group containing the
// primary chart line cannot be deleted.
func (s *Session) DeleteLayer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, mid := range s.layerMembers(id) {
		if err := s.deleteLocked(mid); err != nil {
			return err
		}
	}
	return nil
}

// MoveLayer implements drag-and-drop reordering: the dragged object is
// removed and reinserted at the target's z-index. Dropping onto oneself is a
// no-op. A synthetic group moves its members as a block.
func (s *Session) MoveLayer(id string, targetIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := s.layerMembers(id)
	if len(members) == 1 && s.scene.IndexOf(members[0]) == targetIndex {
		return
	}
	moved := false
	for i, mid := range members {
		if s.scene.IndexOf(mid) < 0 {
			continue
		}
		s.scene.Move(mid, targetIndex+i)
		moved = true
	}
	if moved {
		s.renderLocked()
		s.history.record()
	}
}

func (s *Session) MoveLayerForward(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.scene.IndexOf(id)
	if idx < 0 || idx >= s.scene.Len()-1 {
		return
	}
	s.scene.Move(id, idx+1)
	s.renderLocked()
	s.history.record()
}

func (s *Session) MoveLayerBackward(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.scene.IndexOf(id)
	if idx <= 0 {
		return
	}
	s.scene.Move(id, idx-1)
	s.renderLocked()
	s.history.record()
}

// UngroupSymbol suppresses the synthetic group for a symbol; GroupSymbol
// restores the default derivation.
func (s *Session) UngroupSymbol(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ungrouped[symbol] = true
}

func (s *Session) GroupSymbol(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ungrouped, symbol)
}
