package editor

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Snapshots serialize the scene graph restricted to the allow-listed mutable
// state: identity, selectable/visible flags, geometry and the per-kind style
// fields. Derived state (chart line paths, group bounds metrics) is rebuilt
// on restore rather than stored.

type objectEnvelope struct {
	Kind       Kind            `json:"kind"`
	ChartLine  *ChartLine      `json:"chartLine,omitempty"`
	AxisLine   *AxisLine       `json:"axisLine,omitempty"`
	AxisLabels *AxisLabelGroup `json:"axisLabels,omitempty"`
	Text       *TextObject     `json:"text,omitempty"`
	Shape      *Shape          `json:"shape,omitempty"`
	Line       *Line           `json:"line,omitempty"`
	Logo       *Logo           `json:"logo,omitempty"`
}

func encodeScene(s *Scene) ([]byte, error) {
	envelopes := make([]objectEnvelope, 0, s.Len())
	for _, o := range s.Objects() {
		env := objectEnvelope{Kind: o.Kind()}
		switch v := o.(type) {
		case *ChartLine:
			env.ChartLine = v
		case *AxisLine:
			env.AxisLine = v
		case *AxisLabelGroup:
			env.AxisLabels = v
		case *TextObject:
			env.Text = v
		case *Shape:
			env.Shape = v
		case *Line:
			env.Line = v
		case *Logo:
			env.Logo = v
		default:
			return nil, fmt.Errorf("unknown object kind: %s", o.Kind())
		}
		envelopes = append(envelopes, env)
	}
	return sonic.Marshal(envelopes)
}

func decodeScene(data []byte) ([]Object, error) {
	var envelopes []objectEnvelope
	if err := sonic.Unmarshal(data, &envelopes); err != nil {
		return nil, fmt.Errorf("malformed snapshot: %w", err)
	}
	objects := make([]Object, 0, len(envelopes))
	for i, env := range envelopes {
		var o Object
		switch {
		case env.ChartLine != nil:
			env.ChartLine.RebuildPath()
			o = env.ChartLine
		case env.AxisLine != nil:
			o = env.AxisLine
		case env.AxisLabels != nil:
			env.AxisLabels.RecomputeBounds()
			o = env.AxisLabels
		case env.Text != nil:
			o = env.Text
		case env.Shape != nil:
			o = env.Shape
		case env.Line != nil:
			o = env.Line
		case env.Logo != nil:
			o = env.Logo
		default:
			return nil, fmt.Errorf("malformed snapshot: empty envelope at %d", i)
		}
		objects = append(objects, o)
	}
	return objects, nil
}
