package editor

// PropertyView is the plain record mirroring the selected object's current
// style and geometry, handed to the properties panel together with a bound
// update callback. Values are concrete defaults, never null.
type PropertyView struct {
	Kind       Kind
	Left       float64
	Top        float64
	Angle      float64
	Opacity    float64
	Visible    bool
	Stroke     StrokeStyle
	Fill       string
	Text       string
	FontSize   float64
	FontFamily string
	FontWeight string
	Smoothness float64

	// Apply routes a (property, value) edit back through the session.
	Apply func(name string, value any) `json:"-"`
}

// Selection tracks the currently active object (or a count-only
// multi-selection aggregate) and its property view.
type Selection struct {
	current Object
	view    *PropertyView
	multi   int
}

// Select records the active object and its property view. Selecting the
// already-selected object again is idempotent; a call with both arguments nil
// is a spurious event from the canvas layer and is ignored, not treated as a
// deselection.
func (sel *Selection) Select(obj Object, view *PropertyView) {
	if obj == nil && view == nil {
		return
	}
	if obj != nil && sel.current != nil && sel.current.ObjectID() == obj.ObjectID() {
		return
	}
	sel.current = obj
	sel.view = view
	sel.multi = 0
}

// SelectMany switches to the aggregate multi-selection view. Single-property
// edits are disabled while more than one object is active.
func (sel *Selection) SelectMany(objs []Object) {
	if len(objs) <= 1 {
		if len(objs) == 1 {
			sel.Select(objs[0], nil)
		}
		return
	}
	sel.current = nil
	sel.view = nil
	sel.multi = len(objs)
}

func (sel *Selection) Deselect() {
	sel.current = nil
	sel.view = nil
	sel.multi = 0
}

func (sel *Selection) Current() Object     { return sel.current }
func (sel *Selection) View() *PropertyView { return sel.view }
func (sel *Selection) MultiCount() int     { return sel.multi }
func (sel *Selection) IsMulti() bool       { return sel.multi > 1 }

func buildPropertyView(obj Object, apply func(string, any)) *PropertyView {
	b := obj.Base()
	v := &PropertyView{
		Kind:    obj.Kind(),
		Left:    b.Left,
		Top:     b.Top,
		Angle:   b.Angle,
		Opacity: b.Opacity,
		Visible: b.Visible,
		Apply:   apply,
	}
	switch o := obj.(type) {
	case *ChartLine:
		v.Stroke = o.Stroke
		v.Smoothness = o.Smoothness
	case *AxisLine:
		v.Stroke = o.Stroke
	case *AxisLabelGroup:
		if len(o.Labels) > 0 {
			l := o.Labels[0]
			v.FontSize = l.FontSize
			v.FontFamily = l.FontFamily
			v.FontWeight = l.FontWeight
			v.Fill = l.Fill
		}
	case *TextObject:
		v.Text = o.Text
		v.FontSize = o.FontSize
		v.FontFamily = o.FontFamily
		v.FontWeight = o.FontWeight
		v.Fill = o.Fill
	case *Shape:
		v.Fill = o.Fill
		v.Stroke = o.Stroke
	case *Line:
		v.Stroke = o.Stroke
	case *Logo:
		// geometry only
	}
	return v
}
