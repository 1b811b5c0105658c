// Package spectrum holds the reader-agnostic output model: a wavelength
// indexed measurement series and an ordered metadata record.
package spectrum

import (
	"fmt"
	"sort"
)

// Kind is the semantic kind of the values in a Series. It doubles as the
// series' column label.
type Kind string

const (
	RawCount   Kind = "tgt_count"
	Reflect    Kind = "tgt_reflect"
	Radiance   Kind = "tgt_radiance"
	Irradiance Kind = "tgt_irradiance"
)

// Kinds lists every measurement kind a reader may produce.
var Kinds = []Kind{RawCount, Reflect, Radiance, Irradiance}

// Valid reports whether k is one of Kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Reference returns the matching reference-channel label, e.g. "ref_count".
func (k Kind) Reference() string {
	if len(k) > 4 && k[:4] == "tgt_" {
		return "ref_" + string(k[4:])
	}
	return string(k)
}

func (k Kind) String() string { return string(k) }

// Point is one row of a Series.
type Point struct {
	Wavelength int     // nanometres
	Value      float64
}

// Series is an ordered wavelength -> value mapping. Wavelengths are strictly
// increasing. A Series is never modified after a Builder hands it out.
type Series struct {
	column Kind
	points []Point
}

// Column returns the column label (the value kind).
func (s *Series) Column() Kind { return s.column }

// Len returns the number of rows.
func (s *Series) Len() int { return len(s.points) }

// Point returns row i.
func (s *Series) Point(i int) Point { return s.points[i] }

// Points returns a copy of all rows.
func (s *Series) Points() []Point {
	return append([]Point(nil), s.points...)
}

// Wavelengths returns the index column.
func (s *Series) Wavelengths() []int {
	out := make([]int, len(s.points))
	for i, p := range s.points {
		out[i] = p.Wavelength
	}
	return out
}

// Values returns the value column.
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Value
	}
	return out
}

// Lookup returns the value recorded at wavelength wl.
func (s *Series) Lookup(wl int) (float64, bool) {
	i := sort.Search(len(s.points), func(i int) bool { return s.points[i].Wavelength >= wl })
	if i < len(s.points) && s.points[i].Wavelength == wl {
		return s.points[i].Value, true
	}
	return 0, false
}

// Extent returns the first and last wavelength. ok is false for an empty series.
func (s *Series) Extent() (r Range[int], ok bool) {
	if len(s.points) == 0 {
		return Range[int]{}, false
	}
	return Range[int]{Min: s.points[0].Wavelength, Max: s.points[len(s.points)-1].Wavelength}, true
}

// Builder accumulates rows in reading order.
type Builder struct {
	column Kind
	points []Point
}

// NewBuilder starts a series labelled with kind.
func NewBuilder(kind Kind) *Builder {
	return &Builder{column: kind}
}

// Add appends a row. Wavelengths must strictly increase.
func (b *Builder) Add(wl int, v float64) error {
	if n := len(b.points); n > 0 && wl <= b.points[n-1].Wavelength {
		return fmt.Errorf("wavelength %d does not follow %d", wl, b.points[n-1].Wavelength)
	}
	b.points = append(b.points, Point{Wavelength: wl, Value: v})
	return nil
}

// Len returns the number of rows added so far.
func (b *Builder) Len() int { return len(b.points) }

// Series returns the accumulated series. The builder must not be reused.
func (b *Builder) Series() *Series {
	s := &Series{column: b.column, points: b.points}
	b.points = nil
	return s
}
