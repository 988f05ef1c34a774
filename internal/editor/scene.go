package editor

import (
	"errors"
	"fmt"
)

// ErrNotDeletable is returned when deletion is requested for an object the
// core chart cannot lose: the initially loaded chart line, the axis lines and
// the label groups. Overlay chart lines added later are ordinary deletable
// objects.
var ErrNotDeletable = errors.New("object cannot be deleted")

var ErrNotFound = errors.New("object not found")

// Deletable reports whether the object may be removed from the scene by the
// user.
func Deletable(o Object) bool {
	switch v := o.(type) {
	case *ChartLine:
		return !v.Primary
	case *AxisLine, *AxisLabelGroup:
		return false
	}
	return true
}

// Scene is the ordered, mutable collection of drawable objects. Index 0 is
// the back of the z-order.
type Scene struct {
	objects []Object
}

func NewScene() *Scene {
	return &Scene{}
}

func (s *Scene) Len() int { return len(s.objects) }

// Objects returns the z-ordered object list. Callers must not reorder it
// directly.
func (s *Scene) Objects() []Object { return s.objects }

func (s *Scene) Add(o Object) {
	s.objects = append(s.objects, o)
}

func (s *Scene) ByID(id string) Object {
	for _, o := range s.objects {
		if o.ObjectID() == id {
			return o
		}
	}
	return nil
}

func (s *Scene) IndexOf(id string) int {
	for i, o := range s.objects {
		if o.ObjectID() == id {
			return i
		}
	}
	return -1
}

// Remove deletes exactly one object. Non-deletable kinds are rejected.
func (s *Scene) Remove(id string) error {
	idx := s.IndexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !Deletable(s.objects[idx]) {
		return fmt.Errorf("%w: %s", ErrNotDeletable, s.objects[idx].Kind())
	}
	s.objects = append(s.objects[:idx], s.objects[idx+1:]...)
	return nil
}

// Move reinserts the object at the target z-index, shifting the rest.
// Moving onto the current position is a no-op.
func (s *Scene) Move(id string, to int) {
	from := s.IndexOf(id)
	if from < 0 || from == to {
		return
	}
	if to < 0 {
		to = 0
	}
	if to >= len(s.objects) {
		to = len(s.objects) - 1
	}
	o := s.objects[from]
	s.objects = append(s.objects[:from], s.objects[from+1:]...)
	s.objects = append(s.objects[:to], append([]Object{o}, s.objects[to:]...)...)
}

// Replace swaps the entire object list, used when restoring a snapshot.
func (s *Scene) Replace(objs []Object) {
	s.objects = objs
}

// AxisLinesByOrientation returns every axis line sharing an orientation.
func (s *Scene) AxisLinesByOrientation(orientation Orientation) []*AxisLine {
	var out []*AxisLine
	for _, o := range s.objects {
		if al, ok := o.(*AxisLine); ok && al.Orientation == orientation {
			out = append(out, al)
		}
	}
	return out
}

// ChartLines returns every chart line in z-order.
func (s *Scene) ChartLines() []*ChartLine {
	var out []*ChartLine
	for _, o := range s.objects {
		if cl, ok := o.(*ChartLine); ok {
			out = append(out, cl)
		}
	}
	return out
}
