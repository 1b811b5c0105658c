package spectrum

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Well-known metadata keys shared by all readers.
const (
	KeyFile            = "file"
	KeyInstrumentType  = "instrument_type"
	KeyIntegrationTime = "integration_time"
	KeyMeasurementType = "measurement_type"
	KeyGPSTimeTarget   = "gps_time_tgt"
	KeyGPSTimeRef      = "gps_time_ref"
	KeyGPSLatitude     = "gps_latitude"
	KeyGPSLongitude    = "gps_longitude"
	KeyGPSAltitude     = "gps_altitude"
	KeyWavelengthRange = "wavelength_range"
)

// Field is a single metadata entry. Value is a string, a Kind, a Range, or nil.
type Field struct {
	Key   string
	Value any
}

// Metadata is an ordered, string keyed record.
type Metadata struct {
	fields []Field
	index  map[string]int
}

// NewMetadata builds a record from fields in order. A repeated key keeps its
// first position and takes the last value.
func NewMetadata(fields ...Field) *Metadata {
	m := &Metadata{index: make(map[string]int, len(fields))}
	for _, f := range fields {
		if i, ok := m.index[f.Key]; ok {
			m.fields[i].Value = f.Value
			continue
		}
		m.index[f.Key] = len(m.fields)
		m.fields = append(m.fields, f)
	}
	return m
}

// Get returns the value stored under key.
func (m *Metadata) Get(key string) (any, bool) {
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.fields[i].Value, true
}

// GetString returns the value under key when it is a string.
func (m *Metadata) GetString(key string) (string, bool) {
	v, _ := m.Get(key)
	switch s := v.(type) {
	case string:
		return s, true
	case Kind:
		return string(s), true
	}
	return "", false
}

// Has reports whether key is present, even with a nil value.
func (m *Metadata) Has(key string) bool {
	_, ok := m.index[key]
	return ok
}

// Keys returns the keys in insertion order.
func (m *Metadata) Keys() []string {
	keys := make([]string, len(m.fields))
	for i, f := range m.fields {
		keys[i] = f.Key
	}
	return keys
}

// Fields returns a copy of the entries in order.
func (m *Metadata) Fields() []Field {
	return append([]Field(nil), m.fields...)
}

// Len returns the number of entries.
func (m *Metadata) Len() int { return len(m.fields) }

// MarshalJSON encodes the record as a JSON object preserving key order.
func (m *Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range m.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the record as a YAML mapping preserving key order.
func (m *Metadata) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range m.fields {
		var val yaml.Node
		if err := val.Encode(f.Value); err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Key, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key},
			&val,
		)
	}
	return node, nil
}

// Range is a (min, max) wavelength tuple. Readers that take the range from
// declared header tokens keep it as Range[string].
type Range[T int | string] struct {
	Min T
	Max T
}

func (r Range[T]) String() string {
	return fmt.Sprintf("(%v, %v)", r.Min, r.Max)
}

// MarshalJSON encodes the tuple as a two element array.
func (r Range[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]T{r.Min, r.Max})
}

// MarshalYAML encodes the tuple as a flow sequence.
func (r Range[T]) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range [2]T{r.Min, r.Max} {
		var item yaml.Node
		if err := item.Encode(v); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &item)
	}
	return node, nil
}
