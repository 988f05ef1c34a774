package editor

// Property update routing: a generic (property, value) edit from the UI is
// dispatched to the correct mutation path for the selected object's concrete
// kind. Requests with no selection, a multi-selection, or a property the kind
// does not carry are silent no-ops; they never panic and never touch history.

// ApplyProperty routes one edit through the session's current selection.
func (s *Session) ApplyProperty(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(name, value)
}

func (s *Session) applyLocked(name string, value any) {
	if s.selection.IsMulti() {
		return
	}
	obj := s.selection.Current()
	if obj == nil {
		return
	}

	applied := false
	switch o := obj.(type) {
	case *ChartLine:
		applied = s.applyChartLine(o, name, value)
	case *AxisLine:
		applied = s.applyAxisLine(o, name, value)
	case *AxisLabelGroup:
		applied = s.applyAxisLabels(o, name, value)
	case *TextObject:
		applied = applyText(o, name, value)
	case *Shape:
		applied = applyShape(o, name, value)
	case *Line:
		applied = applyLine(o, name, value)
	case *Logo:
		applied = applyLogo(o, name, value)
	}
	if !applied {
		// position/rotation apply uniformly to any kind
		applied = applyGeometry(obj.Base(), name, value)
	}
	if !applied {
		return
	}

	s.refreshViewLocked(obj)
	s.renderLocked()
	s.history.record()
}

func (s *Session) applyChartLine(o *ChartLine, name string, value any) bool {
	switch name {
	case "strokeWidth":
		w, ok := toFloat(value)
		if !ok {
			return false
		}
		o.Stroke.Width = w
	case "stroke", "color":
		c, ok := toString(value)
		if !ok {
			return false
		}
		o.Stroke.Color = c
	case "opacity":
		v, ok := toFloat(value)
		if !ok {
			return false
		}
		o.Stroke.Opacity = v
		o.Opacity = v
	case "visible":
		v, ok := toBool(value)
		if !ok {
			return false
		}
		o.Stroke.Visible = v
		o.Visible = v
	case "smoothness":
		// not a style mutation: the path geometry is regenerated from the
		// source series at the new smoothing factor
		v, ok := toFloat(value)
		if !ok {
			return false
		}
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		o.Smoothness = v
		o.RebuildPath()
	case "lineStyle":
		style, ok := toString(value)
		if !ok || !validLineStyle(style) {
			return false
		}
		o.Stroke.Dash = dashPattern(style, o.Stroke.Width)
	case "lineCap":
		c, ok := toString(value)
		if !ok {
			return false
		}
		o.Stroke.LineCap = c
	case "markerStyle":
		v, ok := toString(value)
		if !ok {
			return false
		}
		o.Markers.Style = v
	case "markerSize":
		v, ok := toFloat(value)
		if !ok {
			return false
		}
		o.Markers.Size = v
	case "markerFrequency":
		v, ok := toFloat(value)
		if !ok || v < 1 {
			return false
		}
		o.Markers.Frequency = int(v)
	case "markerColor":
		v, ok := toString(value)
		if !ok {
			return false
		}
		o.Markers.Color = v
	case "dotSize":
		v, ok := toFloat(value)
		if !ok {
			return false
		}
		o.Dots.Size = v
	case "dotColor":
		v, ok := toString(value)
		if !ok {
			return false
		}
		o.Dots.Color = v
	default:
		return false
	}
	return true
}

func (s *Session) applyAxisLine(o *AxisLine, name string, value any) bool {
	switch name {
	case "strokeWidth":
		w, ok := toFloat(value)
		if !ok {
			return false
		}
		o.Stroke.Width = w
	case "stroke", "color":
		c, ok := toString(value)
		if !ok {
			return false
		}
		o.Stroke.Color = c
	case "opacity":
		v, ok := toFloat(value)
		if !ok {
			return false
		}
		o.Stroke.Opacity = v
		o.Opacity = v
	case "visible":
		v, ok := toBool(value)
		if !ok {
			return false
		}
		o.Visible = v
		o.Stroke.Visible = v
	case "lineStyle":
		style, ok := toString(value)
		if !ok || !validLineStyle(style) {
			return false
		}
		// a style change covers every sibling axis line with the same
		// orientation, not just the selected one
		for _, sibling := range s.scene.AxisLinesByOrientation(o.Orientation) {
			sibling.Stroke.Dash = dashPattern(style, sibling.Stroke.Width)
		}
	case "strokeDashArray":
		dash, ok := toFloats(value)
		if !ok {
			return false
		}
		o.Stroke.Dash = dash
	default:
		return false
	}
	return true
}

func (s *Session) applyAxisLabels(g *AxisLabelGroup, name string, value any) bool {
	switch name {
	case "fontSize":
		v, ok := toFloat(value)
		if !ok {
			return false
		}
		for _, l := range g.Labels {
			l.FontSize = v
		}
	case "fill":
		v, ok := toString(value)
		if !ok {
			return false
		}
		for _, l := range g.Labels {
			l.Fill = v
		}
	case "fontFamily":
		v, ok := toString(value)
		if !ok {
			return false
		}
		for _, l := range g.Labels {
			l.FontFamily = v
		}
	case "fontWeight":
		v, ok := toString(value)
		if !ok {
			return false
		}
		for _, l := range g.Labels {
			l.FontWeight = v
		}
	case "axisLineWidth", "axisLineColor", "axisLineStyle":
		// labels-panel edits reach through to the matching axis line, a
		// different scene object from the selected label group
		return s.applyMatchingAxisLine(g.Orientation, name, value)
	default:
		return false
	}
	g.RecomputeBounds()
	return true
}

func (s *Session) applyMatchingAxisLine(orientation Orientation, name string, value any) bool {
	lines := s.scene.AxisLinesByOrientation(orientation)
	if len(lines) == 0 {
		return false
	}
	applied := false
	for _, al := range lines {
		switch name {
		case "axisLineWidth":
			if w, ok := toFloat(value); ok {
				al.Stroke.Width = w
				applied = true
			}
		case "axisLineColor":
			if c, ok := toString(value); ok {
				al.Stroke.Color = c
				applied = true
			}
		case "axisLineStyle":
			if style, ok := toString(value); ok && validLineStyle(style) {
				al.Stroke.Dash = dashPattern(style, al.Stroke.Width)
				applied = true
			}
		}
	}
	return applied
}

func applyText(o *TextObject, name string, value any) bool {
	switch name {
	case "text":
		v, ok := toString(value)
		if !ok {
			return false
		}
		o.Text = v
	case "fontSize":
		v, ok := toFloat(value)
		if !ok {
			return false
		}
		o.FontSize = v
	case "fontFamily":
		v, ok := toString(value)
		if !ok {
			return false
		}
		o.FontFamily = v
	case "fontWeight":
		v, ok := toString(value)
		if !ok {
			return false
		}
		o.FontWeight = v
	case "fill":
		v, ok := toString(value)
		if !ok {
			return false
		}
		o.Fill = v
	case "opacity":
		v, ok := toFloat(value)
		if !ok {
			return false
		}
		o.Opacity = v
	case "visible":
		v, ok := toBool(value)
		if !ok {
			return false
		}
		o.Visible = v
	default:
		return false
	}
	return true
}

func applyShape(o *Shape, name string, value any) bool {
	switch name {
	case "fill":
		v, ok := toString(value)
		if !ok {
			return false
		}
		o.Fill = v
	case "stroke", "color":
		v, ok := toString(value)
		if !ok {
			return false
		}
		o.Stroke.Color = v
	case "strokeWidth":
		v, ok := toFloat(value)
		if !ok {
			return false
		}
		o.Stroke.Width = v
	case "width":
		v, ok := toFloat(value)
		if !ok {
			return false
		}
		o.Width = v
	case "height":
		v, ok := toFloat(value)
		if !ok {
			return false
		}
		o.Height = v
	case "opacity":
		v, ok := toFloat(value)
		if !ok {
			return false
		}
		o.Opacity = v
	case "visible":
		v, ok := toBool(value)
		if !ok {
			return false
		}
		o.Visible = v
	default:
		return false
	}
	return true
}

func applyLine(o *Line, name string, value any) bool {
	switch name {
	case "stroke", "color":
		v, ok := toString(value)
		if !ok {
			return false
		}
		o.Stroke.Color = v
	case "strokeWidth":
		v, ok := toFloat(value)
		if !ok {
			return false
		}
		o.Stroke.Width = v
	case "lineStyle":
		style, ok := toString(value)
		if !ok || !validLineStyle(style) {
			return false
		}
		o.Stroke.Dash = dashPattern(style, o.Stroke.Width)
	case "opacity":
		v, ok := toFloat(value)
		if !ok {
			return false
		}
		o.Opacity = v
	case "visible":
		v, ok := toBool(value)
		if !ok {
			return false
		}
		o.Visible = v
	default:
		return false
	}
	return true
}

func applyLogo(o *Logo, name string, value any) bool {
	switch name {
	case "width":
		v, ok := toFloat(value)
		if !ok {
			return false
		}
		o.Width = v
	case "height":
		v, ok := toFloat(value)
		if !ok {
			return false
		}
		o.Height = v
	case "opacity":
		v, ok := toFloat(value)
		if !ok {
			return false
		}
		o.Opacity = v
	case "visible":
		v, ok := toBool(value)
		if !ok {
			return false
		}
		o.Visible = v
	default:
		return false
	}
	return true
}

func applyGeometry(b *ObjectBase, name string, value any) bool {
	switch name {
	case "left":
		v, ok := toFloat(value)
		if !ok {
			return false
		}
		b.Left = v
	case "top":
		v, ok := toFloat(value)
		if !ok {
			return false
		}
		b.Top = v
	case "angle":
		v, ok := toFloat(value)
		if !ok {
			return false
		}
		b.Angle = v
	case "scaleX":
		v, ok := toFloat(value)
		if !ok {
			return false
		}
		b.ScaleX = v
	case "scaleY":
		v, ok := toFloat(value)
		if !ok {
			return false
		}
		b.ScaleY = v
	default:
		return false
	}
	return true
}

func validLineStyle(style string) bool {
	for _, s := range LineStyles {
		if s == style {
			return true
		}
	}
	return false
}

// dashPattern maps a named line style to a dash array scaled by stroke width.
func dashPattern(style string, width float64) []float64 {
	if width < 1 {
		width = 1
	}
	switch style {
	case "dashed":
		return []float64{width * 3, width * 2}
	case "dotted":
		return []float64{width, width * 2}
	case "dash-dot":
		return []float64{width * 4, width * 2, width, width * 2}
	case "long-dash":
		return []float64{width * 8, width * 3}
	}
	return nil // solid
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func toBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func toFloats(v any) ([]float64, bool) {
	switch d := v.(type) {
	case []float64:
		return d, true
	case []any:
		out := make([]float64, 0, len(d))
		for _, e := range d {
			f, ok := toFloat(e)
			if !ok {
				return nil, false
			}
			out = append(out, f)
		}
		return out, true
	}
	return nil, false
}
