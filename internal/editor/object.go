package editor

import (
	"github.com/google/uuid"
)

// Kind tags every scene object with its closed variant type.
type Kind string

const (
	KindChartLine   Kind = "chart-line-group"
	KindYAxisLine   Kind = "y-axis-line"
	KindXAxisLine   Kind = "x-axis-line"
	KindYAxisLabels Kind = "y-axis-label-group"
	KindXAxisLabels Kind = "x-axis-label-group"
	KindTitle       Kind = "title"
	KindAnnotation  Kind = "annotation"
	KindPriceLabel  Kind = "price-label"
	KindShape       Kind = "shape"
	KindLine        Kind = "line"
	KindLogo        Kind = "logo"
)

type Orientation string

const (
	OrientationX Orientation = "x"
	OrientationY Orientation = "y"
)

type ShapeType string

const (
	ShapeRectangle ShapeType = "rectangle"
	ShapeCircle    ShapeType = "circle"
	ShapeTriangle  ShapeType = "triangle"
	ShapeStar      ShapeType = "star"
)

type LineType string

const (
	LineTrend     LineType = "trend-line"
	LineArrowUp   LineType = "arrow-up"
	LineArrowDown LineType = "arrow-down"
)

// LineStyles is the closed set of stroke dash styles.
var LineStyles = []string{"solid", "dashed", "dotted", "dash-dot", "long-dash"}

// Object is the closed interface over all scene object variants. The update
// router switches exhaustively on the concrete type.
type Object interface {
	ObjectID() string
	Kind() Kind
	Base() *ObjectBase
}

// Geometry holds the mutable position, rotation and scale shared by all kinds.
type Geometry struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Angle  float64 `json:"angle"`
	ScaleX float64 `json:"scaleX"`
	ScaleY float64 `json:"scaleY"`
}

// ObjectBase carries the identity and common mutable state of a scene object.
type ObjectBase struct {
	ID string `json:"id"`
	Geometry
	Visible    bool    `json:"visible"`
	Locked     bool    `json:"locked"`
	Selectable bool    `json:"selectable"`
	Opacity    float64 `json:"opacity"`
}

func (b *ObjectBase) ObjectID() string  { return b.ID }
func (b *ObjectBase) Base() *ObjectBase { return b }

func newBase(left, top float64) ObjectBase {
	return ObjectBase{
		ID:         uuid.NewString(),
		Geometry:   Geometry{Left: left, Top: top, ScaleX: 1, ScaleY: 1},
		Visible:    true,
		Selectable: true,
		Opacity:    1,
	}
}

// StrokeStyle are line rendering attributes. Defaults are always explicit
// concrete values, never null.
type StrokeStyle struct {
	Color   string    `json:"color"`
	Width   float64   `json:"width"`
	Opacity float64   `json:"opacity"`
	Dash    []float64 `json:"dash,omitempty"`
	LineCap string    `json:"lineCap"`
	Visible bool      `json:"visible"`
}

func defaultStroke(color string, width float64) StrokeStyle {
	return StrokeStyle{Color: color, Width: width, Opacity: 1, LineCap: "round", Visible: true}
}

// MarkerStyle controls the data-point markers drawn along a chart line.
type MarkerStyle struct {
	Style     string  `json:"style"` // none, circle, square, diamond
	Size      float64 `json:"size"`
	Frequency int     `json:"frequency"` // draw every Nth point
	Color     string  `json:"color"`
}

// DotStyle controls junction dots at path vertices.
type DotStyle struct {
	Size  float64 `json:"size"`
	Color string  `json:"color"`
}

// DataPoint is one sample of the source price series.
type DataPoint struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

// Point is a position in scene coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ChartLine is the grouped price line for one symbol: the stroke member, the
// marker/dot members, and the source series the path is generated from.
type ChartLine struct {
	ObjectBase
	Symbol     string      `json:"symbol"`
	Timeframe  string      `json:"timeframe"`
	Primary    bool        `json:"primary"` // the initially loaded line; overlays are false
	Width      float64     `json:"width"`   // plot box size
	Height     float64     `json:"height"`
	Data       []DataPoint `json:"data"`
	Smoothness float64     `json:"smoothness"`
	Stroke     StrokeStyle `json:"stroke"`
	Markers    MarkerStyle `json:"markers"`
	Dots       DotStyle    `json:"dots"`

	// Path is derived from Data at the current smoothness; rebuilt, never
	// serialized.
	Path []Point `json:"-"`
}

func (o *ChartLine) Kind() Kind { return KindChartLine }

// RebuildPath regenerates the rendered polyline from the source series at the
// current smoothing factor. Smoothing is point decimation feeding the curve
// interpolator, not a style attribute.
func (o *ChartLine) RebuildPath() {
	pts := Decimate(o.Data, DecimationFactor(o.Smoothness))
	o.Path = projectSeries(pts, o.Width, o.Height)
}

func projectSeries(pts []DataPoint, width, height float64) []Point {
	if len(pts) == 0 {
		return nil
	}
	min, max := pts[0].Value, pts[0].Value
	for _, p := range pts {
		if p.Value < min {
			min = p.Value
		}
		if p.Value > max {
			max = p.Value
		}
	}
	out := make([]Point, len(pts))
	for i, p := range pts {
		x := 0.0
		if len(pts) > 1 {
			x = float64(i) / float64(len(pts)-1) * width
		}
		y := height / 2
		if max > min {
			y = height * (1 - (p.Value-min)/(max-min))
		}
		out[i] = Point{X: x, Y: y}
	}
	return out
}

// AxisLine is one axis (x or y) rendered as a plain stroked line.
type AxisLine struct {
	ObjectBase
	Orientation Orientation `json:"orientation"`
	Length      float64     `json:"length"`
	Stroke      StrokeStyle `json:"stroke"`
}

func (o *AxisLine) Kind() Kind {
	if o.Orientation == OrientationX {
		return KindXAxisLine
	}
	return KindYAxisLine
}

// AxisLabel is one member primitive of an axis label group.
type AxisLabel struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	Left       float64 `json:"left"`
	Top        float64 `json:"top"`
	FontSize   float64 `json:"fontSize"`
	FontFamily string  `json:"fontFamily"`
	FontWeight string  `json:"fontWeight"`
	Fill       string  `json:"fill"`
}

// AxisLabelGroup is a composite of tick labels mutated in lock-step: every
// member receives the same font or fill change.
type AxisLabelGroup struct {
	ObjectBase
	Orientation Orientation  `json:"orientation"`
	Labels      []*AxisLabel `json:"labels"`
	Width       float64      `json:"width"`
	Height      float64      `json:"height"`
}

func (o *AxisLabelGroup) Kind() Kind {
	if o.Orientation == OrientationX {
		return KindXAxisLabels
	}
	return KindYAxisLabels
}

// RecomputeBounds refreshes the group bounding box from its members. Label
// positions are relative to the group origin; extents are estimated from
// font metrics since the core owns no renderer.
func (o *AxisLabelGroup) RecomputeBounds() {
	if len(o.Labels) == 0 {
		o.Width, o.Height = 0, 0
		return
	}
	maxX, maxY := 0.0, 0.0
	for _, l := range o.Labels {
		w := float64(len(l.Text)) * l.FontSize * 0.6
		if l.Left+w > maxX {
			maxX = l.Left + w
		}
		if l.Top+l.FontSize > maxY {
			maxY = l.Top + l.FontSize
		}
	}
	o.Width, o.Height = maxX, maxY
}

// TextObject covers the free-standing text kinds: title, annotation and
// price label. Role is fixed at construction.
type TextObject struct {
	ObjectBase
	Role       Kind    `json:"role"`
	Text       string  `json:"text"`
	FontSize   float64 `json:"fontSize"`
	FontFamily string  `json:"fontFamily"`
	FontWeight string  `json:"fontWeight"`
	Fill       string  `json:"fill"`
}

func (o *TextObject) Kind() Kind { return o.Role }

// Shape is a simple filled/stroked primitive.
type Shape struct {
	ObjectBase
	Shape  ShapeType   `json:"shape"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Fill   string      `json:"fill"`
	Stroke StrokeStyle `json:"stroke"`
}

func (o *Shape) Kind() Kind { return KindShape }

// Line is a free annotation line or arrow from the object origin to (X2, Y2).
type Line struct {
	ObjectBase
	Line   LineType    `json:"line"`
	X2     float64     `json:"x2"`
	Y2     float64     `json:"y2"`
	Stroke StrokeStyle `json:"stroke"`
}

func (o *Line) Kind() Kind { return KindLine }

// Logo references an uploaded logo image by its storage id.
type Logo struct {
	ObjectBase
	LogoID uint    `json:"logoId"`
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (o *Logo) Kind() Kind { return KindLogo }

// Constructors. Every style field starts from an explicit default.

func NewChartLine(symbol, timeframe string, data []DataPoint, left, top, width, height float64) *ChartLine {
	cl := &ChartLine{
		ObjectBase: newBase(left, top),
		Symbol:     symbol,
		Timeframe:  timeframe,
		Width:      width,
		Height:     height,
		Data:       data,
		Smoothness: 1,
		Stroke:     defaultStroke("#2962ff", 2),
		Markers:    MarkerStyle{Style: "none", Size: 4, Frequency: 1, Color: "#2962ff"},
		Dots:       DotStyle{Size: 0, Color: "#2962ff"},
	}
	cl.RebuildPath()
	return cl
}

func NewAxisLine(orientation Orientation, left, top, length float64) *AxisLine {
	return &AxisLine{
		ObjectBase:  newBase(left, top),
		Orientation: orientation,
		Length:      length,
		Stroke:      defaultStroke("#787b86", 1),
	}
}

func NewAxisLabelGroup(orientation Orientation, labels []*AxisLabel) *AxisLabelGroup {
	g := &AxisLabelGroup{
		ObjectBase:  newBase(0, 0),
		Orientation: orientation,
		Labels:      labels,
	}
	g.RecomputeBounds()
	return g
}

func NewAxisLabel(text string, left, top float64) *AxisLabel {
	return &AxisLabel{
		ID:         uuid.NewString(),
		Text:       text,
		Left:       left,
		Top:        top,
		FontSize:   12,
		FontFamily: "Arial",
		FontWeight: "normal",
		Fill:       "#787b86",
	}
}

func newText(role Kind, text string, left, top, size float64) *TextObject {
	return &TextObject{
		ObjectBase: newBase(left, top),
		Role:       role,
		Text:       text,
		FontSize:   size,
		FontFamily: "Arial",
		FontWeight: "normal",
		Fill:       "#131722",
	}
}

func NewTitle(text string, left, top float64) *TextObject {
	return newText(KindTitle, text, left, top, 24)
}

func NewAnnotation(text string, left, top float64) *TextObject {
	return newText(KindAnnotation, text, left, top, 14)
}

func NewPriceLabel(text string, left, top float64) *TextObject {
	return newText(KindPriceLabel, text, left, top, 12)
}

func NewShape(shape ShapeType, left, top, width, height float64) *Shape {
	return &Shape{
		ObjectBase: newBase(left, top),
		Shape:      shape,
		Width:      width,
		Height:     height,
		Fill:       "#2962ff",
		Stroke:     defaultStroke("#131722", 1),
	}
}

func NewLine(lineType LineType, left, top, x2, y2 float64) *Line {
	return &Line{
		ObjectBase: newBase(left, top),
		Line:       lineType,
		X2:         x2,
		Y2:         y2,
		Stroke:     defaultStroke("#131722", 2),
	}
}

func NewLogo(logoID uint, name string, left, top, width, height float64) *Logo {
	return &Logo{
		ObjectBase: newBase(left, top),
		LogoID:     logoID,
		Name:       name,
		Width:      width,
		Height:     height,
	}
}
