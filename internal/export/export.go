// Package export renders a scene graph to PNG, SVG or single-page PDF using
// the tdewolff/canvas vector library.
package export

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"math"
	"strconv"
	"strings"

	"chart-studio/internal/editor"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers"
)

type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
)

// DPIPresets are the selectable export resolutions.
var DPIPresets = []int{72, 150, 300}

// Options choose the output format, pixel dimensions and resolution preset.
type Options struct {
	Format Format
	Width  int
	Height int
	DPI    int
}

func (o *Options) normalize() error {
	switch o.Format {
	case FormatPNG, FormatSVG, FormatPDF:
	default:
		return fmt.Errorf("unsupported format: %s", o.Format)
	}
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", o.Width, o.Height)
	}
	if o.DPI == 0 {
		o.DPI = 72
	}
	valid := false
	for _, d := range DPIPresets {
		if o.DPI == d {
			valid = true
		}
	}
	if !valid {
		return fmt.Errorf("unsupported DPI %d", o.DPI)
	}
	return nil
}

// Renderer draws scenes onto a canvas. Custom uploaded fonts can be
// registered by family name; text falls back to a system sans font, and is
// skipped entirely when no usable font exists (headless hosts).
type Renderer struct {
	families map[string]*canvas.FontFamily
	fallback *canvas.FontFamily
	logos    map[uint]image.Image
}

func NewRenderer() *Renderer {
	r := &Renderer{
		families: map[string]*canvas.FontFamily{},
		logos:    map[uint]image.Image{},
	}
	fallback := canvas.NewFontFamily("fallback")
	if err := fallback.LoadSystemFont("sans-serif", canvas.FontRegular); err != nil {
		log.Printf("No system fallback font available, text will be skipped: %v", err)
	} else {
		r.fallback = fallback
	}
	return r
}

// RegisterFont makes an uploaded font binary available under its family name.
func (r *Renderer) RegisterFont(family string, data []byte) error {
	fam := canvas.NewFontFamily(family)
	if err := fam.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return fmt.Errorf("failed to load font %s: %w", family, err)
	}
	r.families[strings.ToLower(family)] = fam
	return nil
}

// RegisterLogo supplies the decoded image for a logo object id.
func (r *Renderer) RegisterLogo(id uint, img image.Image) {
	r.logos[id] = img
}

// Render draws the scene and writes the encoded output.
func (r *Renderer) Render(scene *editor.Scene, w io.Writer, opts Options) error {
	if err := opts.normalize(); err != nil {
		return err
	}

	pxToMM := 25.4 / float64(opts.DPI)
	widthMM := float64(opts.Width) * pxToMM
	heightMM := float64(opts.Height) * pxToMM

	c := canvas.New(widthMM, heightMM)
	ctx := canvas.NewContext(c)

	// white background
	ctx.SetFillColor(canvas.White)
	p := canvas.Rectangle(widthMM, heightMM)
	ctx.DrawPath(0, 0, p)

	d := &drawer{ctx: ctx, heightMM: heightMM, pxToMM: pxToMM, r: r}
	for _, o := range scene.Objects() {
		if !o.Base().Visible {
			continue
		}
		d.draw(o)
	}

	switch opts.Format {
	case FormatPNG:
		return renderers.PNG(canvas.DPI(float64(opts.DPI)))(w, c)
	case FormatSVG:
		return renderers.SVG()(w, c)
	default:
		// a single page sized to the chosen dimensions
		return renderers.PDF()(w, c)
	}
}

type drawer struct {
	ctx      *canvas.Context
	heightMM float64
	pxToMM   float64
	r        *Renderer
}

// pt converts scene pixel coordinates (y-down) to canvas mm (y-up).
func (d *drawer) pt(x, y float64) (float64, float64) {
	return x * d.pxToMM, d.heightMM - y*d.pxToMM
}

func (d *drawer) mm(v float64) float64 { return v * d.pxToMM }

func (d *drawer) draw(o editor.Object) {
	b := o.Base()
	d.ctx.Push()
	if b.Angle != 0 {
		cx, cy := d.pt(b.Left, b.Top)
		d.ctx.RotateAbout(-b.Angle, cx, cy)
	}
	switch v := o.(type) {
	case *editor.ChartLine:
		d.drawChartLine(v)
	case *editor.AxisLine:
		d.drawAxisLine(v)
	case *editor.AxisLabelGroup:
		d.drawAxisLabels(v)
	case *editor.TextObject:
		d.drawText(v)
	case *editor.Shape:
		d.drawShape(v)
	case *editor.Line:
		d.drawLine(v)
	case *editor.Logo:
		d.drawLogo(v)
	}
	d.ctx.Pop()
}

func (d *drawer) applyStroke(s editor.StrokeStyle, opacity float64) {
	d.ctx.SetStrokeColor(parseColor(s.Color, s.Opacity*opacity))
	d.ctx.SetStrokeWidth(d.mm(s.Width))
	if len(s.Dash) > 0 {
		dash := make([]float64, len(s.Dash))
		for i, v := range s.Dash {
			dash[i] = d.mm(v)
		}
		d.ctx.SetDashes(0, dash...)
	} else {
		d.ctx.SetDashes(0)
	}
	if s.LineCap == "round" {
		d.ctx.SetStrokeCapper(canvas.RoundCap)
	} else {
		d.ctx.SetStrokeCapper(canvas.ButtCap)
	}
}

func (d *drawer) drawChartLine(o *editor.ChartLine) {
	if len(o.Path) < 2 || !o.Stroke.Visible {
		return
	}
	p := &canvas.Path{}
	for i, pt := range o.Path {
		x, y := d.pt(o.Left+pt.X, o.Top+pt.Y)
		if i == 0 {
			p.MoveTo(x, y)
		} else {
			p.LineTo(x, y)
		}
	}
	d.applyStroke(o.Stroke, o.Opacity)
	d.ctx.SetFillColor(canvas.Transparent)
	d.ctx.DrawPath(0, 0, p)

	if o.Markers.Style != "none" && o.Markers.Size > 0 {
		freq := o.Markers.Frequency
		if freq < 1 {
			freq = 1
		}
		d.ctx.SetFillColor(parseColor(o.Markers.Color, o.Opacity))
		for i := 0; i < len(o.Path); i += freq {
			x, y := d.pt(o.Left+o.Path[i].X, o.Top+o.Path[i].Y)
			d.ctx.DrawPath(x, y, canvas.Circle(d.mm(o.Markers.Size/2)))
		}
	}
	if o.Dots.Size > 0 {
		d.ctx.SetFillColor(parseColor(o.Dots.Color, o.Opacity))
		for _, pt := range o.Path {
			x, y := d.pt(o.Left+pt.X, o.Top+pt.Y)
			d.ctx.DrawPath(x, y, canvas.Circle(d.mm(o.Dots.Size/2)))
		}
	}
}

func (d *drawer) drawAxisLine(o *editor.AxisLine) {
	if !o.Stroke.Visible {
		return
	}
	p := &canvas.Path{}
	x, y := d.pt(o.Left, o.Top)
	p.MoveTo(x, y)
	if o.Orientation == editor.OrientationX {
		x2, y2 := d.pt(o.Left+o.Length, o.Top)
		p.LineTo(x2, y2)
	} else {
		x2, y2 := d.pt(o.Left, o.Top+o.Length)
		p.LineTo(x2, y2)
	}
	d.applyStroke(o.Stroke, o.Opacity)
	d.ctx.SetFillColor(canvas.Transparent)
	d.ctx.DrawPath(0, 0, p)
}

func (d *drawer) face(family string, size float64, fill string, weight string, opacity float64) *canvas.FontFace {
	fam := d.r.families[strings.ToLower(family)]
	if fam == nil {
		fam = d.r.fallback
	}
	if fam == nil {
		return nil
	}
	style := canvas.FontRegular
	if weight == "bold" {
		style = canvas.FontBold
	}
	// Face takes points; scene sizes are pixels at the export resolution
	return fam.Face(size*d.pxToMM*72.0/25.4, parseColor(fill, opacity), style, canvas.FontNormal)
}

func (d *drawer) drawAxisLabels(o *editor.AxisLabelGroup) {
	for _, l := range o.Labels {
		face := d.face(l.FontFamily, l.FontSize, l.Fill, l.FontWeight, o.Opacity)
		if face == nil {
			return
		}
		x, y := d.pt(o.Left+l.Left, o.Top+l.Top+l.FontSize)
		d.ctx.DrawText(x, y, canvas.NewTextLine(face, l.Text, canvas.Left))
	}
}

func (d *drawer) drawText(o *editor.TextObject) {
	face := d.face(o.FontFamily, o.FontSize, o.Fill, o.FontWeight, o.Opacity)
	if face == nil {
		return
	}
	x, y := d.pt(o.Left, o.Top+o.FontSize)
	d.ctx.DrawText(x, y, canvas.NewTextLine(face, o.Text, canvas.Left))
}

func (d *drawer) drawShape(o *editor.Shape) {
	var p *canvas.Path
	w, h := d.mm(o.Width), d.mm(o.Height)
	switch o.Shape {
	case editor.ShapeCircle:
		p = canvas.Ellipse(w/2, h/2)
	case editor.ShapeTriangle:
		p = &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(w, 0)
		p.LineTo(w/2, h)
		p.Close()
	case editor.ShapeStar:
		p = starPath(w/2, h/2)
	default:
		p = canvas.Rectangle(w, h)
	}

	d.ctx.SetFillColor(parseColor(o.Fill, o.Opacity))
	d.applyStroke(o.Stroke, o.Opacity)

	// anchor at the object's top-left corner in scene space
	x, y := d.pt(o.Left, o.Top+o.Height)
	if o.Shape == editor.ShapeCircle {
		x, y = d.pt(o.Left+o.Width/2, o.Top+o.Height/2)
	}
	d.ctx.DrawPath(x, y, p)
}

func starPath(rx, ry float64) *canvas.Path {
	const points = 5
	p := &canvas.Path{}
	for i := 0; i < points*2; i++ {
		frac := 1.0
		if i%2 == 1 {
			frac = 0.4
		}
		angle := math.Pi/2 + float64(i)*math.Pi/points
		x := rx * frac * math.Cos(angle)
		y := ry * frac * math.Sin(angle)
		if i == 0 {
			p.MoveTo(x, y)
		} else {
			p.LineTo(x, y)
		}
	}
	p.Close()
	return p
}

func (d *drawer) drawLine(o *editor.Line) {
	p := &canvas.Path{}
	x1, y1 := d.pt(o.Left, o.Top)
	x2, y2 := d.pt(o.Left+o.X2, o.Top+o.Y2)
	p.MoveTo(x1, y1)
	p.LineTo(x2, y2)

	d.applyStroke(o.Stroke, o.Opacity)
	d.ctx.SetFillColor(canvas.Transparent)
	d.ctx.DrawPath(0, 0, p)

	if o.Line == editor.LineArrowUp || o.Line == editor.LineArrowDown {
		d.drawArrowHead(x1, y1, x2, y2, o)
	}
}

func (d *drawer) drawArrowHead(x1, y1, x2, y2 float64, o *editor.Line) {
	angle := math.Atan2(y2-y1, x2-x1)
	size := d.mm(o.Stroke.Width * 4)
	p := &canvas.Path{}
	p.MoveTo(x2, y2)
	p.LineTo(x2-size*math.Cos(angle-math.Pi/6), y2-size*math.Sin(angle-math.Pi/6))
	p.LineTo(x2-size*math.Cos(angle+math.Pi/6), y2-size*math.Sin(angle+math.Pi/6))
	p.Close()
	d.ctx.SetFillColor(parseColor(o.Stroke.Color, o.Stroke.Opacity*o.Opacity))
	d.ctx.DrawPath(0, 0, p)
}

func (d *drawer) drawLogo(o *editor.Logo) {
	img, ok := d.r.logos[o.LogoID]
	if !ok {
		// placeholder frame when the binary was not supplied
		d.ctx.SetFillColor(canvas.Transparent)
		d.ctx.SetStrokeColor(parseColor("#cccccc", o.Opacity))
		d.ctx.SetStrokeWidth(d.mm(1))
		x, y := d.pt(o.Left, o.Top+o.Height)
		d.ctx.DrawPath(x, y, canvas.Rectangle(d.mm(o.Width), d.mm(o.Height)))
		return
	}
	x, y := d.pt(o.Left, o.Top+o.Height)
	bounds := img.Bounds()
	res := canvas.DPMM(float64(bounds.Dx()) / d.mm(o.Width))
	d.ctx.DrawImage(x, y, img, res)
}

// parseColor reads #rgb, #rrggbb or #rrggbbaa hex colors, multiplying in the
// given opacity.
func parseColor(s string, opacity float64) color.RGBA {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	r, g, b, a := uint8(0), uint8(0), uint8(0), uint8(255)
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 3:
		r = hexNibble(hex[0]) * 17
		g = hexNibble(hex[1]) * 17
		b = hexNibble(hex[2]) * 17
	case 6, 8:
		r = hexByte(hex[0:2])
		g = hexByte(hex[2:4])
		b = hexByte(hex[4:6])
		if len(hex) == 8 {
			a = hexByte(hex[6:8])
		}
	}
	af := float64(a) / 255 * opacity
	// premultiplied alpha per color.RGBA convention
	return color.RGBA{
		R: uint8(float64(r) * af),
		G: uint8(float64(g) * af),
		B: uint8(float64(b) * af),
		A: uint8(af * 255),
	}
}

func hexNibble(c byte) uint8 {
	v, err := strconv.ParseUint(string(c), 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

func hexByte(s string) uint8 {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}
