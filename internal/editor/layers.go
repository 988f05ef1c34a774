package editor

import "strings"

// GroupIDPrefix marks the synthetic layer entries derived for same-symbol
// chart lines; they never exist in the scene itself.
const GroupIDPrefix = "group:"

// LayerEntry is a read-only projection of one scene object, or of a
// synthesized group of same-symbol chart lines. Mutations never touch the
// entry; they go through the scene objects and the view is rebuilt.
type LayerEntry struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Kind    Kind     `json:"kind"`
	Visible bool     `json:"visible"`
	Locked  bool     `json:"locked"`
	Opacity float64  `json:"opacity"`
	ZIndex  int      `json:"zIndex"`
	IsGroup bool     `json:"isGroup"`
	Symbol  string   `json:"symbol,omitempty"`
	Members []string `json:"members,omitempty"`
}

// DeriveLayers projects the scene into the layer panel view. Chart lines
// sharing a symbol collapse into a synthetic group when more than one line
// carries that symbol, or when more than one distinct symbol is on the
// canvas; ungrouped overrides suppress this per symbol. A group's visibility
// and lock are the conjunction over its members, opacity and z-order the
// minimum.
func DeriveLayers(s *Scene, ungrouped map[string]bool) []LayerEntry {
	perSymbol := map[string]int{}
	for _, cl := range s.ChartLines() {
		perSymbol[cl.Symbol]++
	}
	distinct := len(perSymbol)

	grouped := func(symbol string) bool {
		if ungrouped[symbol] {
			return false
		}
		return perSymbol[symbol] > 1 || distinct > 1
	}

	var entries []LayerEntry
	groupIdx := map[string]int{} // symbol -> index into entries

	for z, o := range s.Objects() {
		b := o.Base()
		if cl, ok := o.(*ChartLine); ok && grouped(cl.Symbol) {
			if gi, exists := groupIdx[cl.Symbol]; exists {
				g := &entries[gi]
				g.Visible = g.Visible && b.Visible
				g.Locked = g.Locked && b.Locked
				if b.Opacity < g.Opacity {
					g.Opacity = b.Opacity
				}
				if z < g.ZIndex {
					g.ZIndex = z
				}
				g.Members = append(g.Members, b.ID)
				continue
			}
			groupIdx[cl.Symbol] = len(entries)
			entries = append(entries, LayerEntry{
				ID:      GroupIDPrefix + cl.Symbol,
				Name:    cl.Symbol,
				Kind:    KindChartLine,
				Visible: b.Visible,
				Locked:  b.Locked,
				Opacity: b.Opacity,
				ZIndex:  z,
				IsGroup: true,
				Symbol:  cl.Symbol,
				Members: []string{b.ID},
			})
			continue
		}
		entries = append(entries, LayerEntry{
			ID:      b.ID,
			Name:    layerName(o),
			Kind:    o.Kind(),
			Visible: b.Visible,
			Locked:  b.Locked,
			Opacity: b.Opacity,
			ZIndex:  z,
		})
	}
	return entries
}

func layerName(o Object) string {
	switch v := o.(type) {
	case *ChartLine:
		return v.Symbol
	case *AxisLine:
		return strings.ToUpper(string(v.Orientation)) + " Axis"
	case *AxisLabelGroup:
		return strings.ToUpper(string(v.Orientation)) + " Labels"
	case *TextObject:
		if v.Text != "" {
			return v.Text
		}
		return string(v.Role)
	case *Shape:
		return string(v.Shape)
	case *Line:
		return string(v.Line)
	case *Logo:
		if v.Name != "" {
			return v.Name
		}
		return "Logo"
	}
	return string(o.Kind())
}

// IsGroupID reports whether a layer id addresses a synthetic symbol group.
func IsGroupID(id string) bool {
	return strings.HasPrefix(id, GroupIDPrefix)
}

// GroupSymbolOf extracts the symbol from a synthetic group layer id.
func GroupSymbolOf(id string) string {
	return strings.TrimPrefix(id, GroupIDPrefix)
}
