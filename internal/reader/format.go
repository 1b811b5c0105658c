package reader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/metcalfc/spex/internal/spectrum"
)

// Entry maps an extension fragment to a Handler or to a nested Registry that
// is consulted with the next extension to the left.
type Entry struct {
	Fragment string
	Name     string
	Handler  Handler
	Nested   *Registry
}

// Registry is an ordered list of entries. An extension matches the first
// entry whose fragment is a substring of it, so order matters whenever one
// fragment contains another; see Overlaps.
type Registry struct {
	entries []Entry
}

// NewRegistry builds a registry evaluated in the given order.
func NewRegistry(entries ...Entry) (*Registry, error) {
	for _, e := range entries {
		if e.Fragment == "" {
			return nil, errors.New("registry entry with empty fragment")
		}
		if (e.Handler == nil) == (e.Nested == nil) {
			return nil, fmt.Errorf("registry entry %q: want exactly one of handler or nested registry", e.Fragment)
		}
	}
	return &Registry{entries: append([]Entry(nil), entries...)}, nil
}

// MustRegistry is NewRegistry that panics on a malformed entry.
func MustRegistry(entries ...Entry) *Registry {
	r, err := NewRegistry(entries...)
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve strips extensions from the right of path, one per registry level,
// until a terminal handler matches.
func (r *Registry) Resolve(path string) (Handler, error) {
	e, err := r.resolve(path)
	if err != nil {
		return nil, err
	}
	return e.Handler, nil
}

func (r *Registry) resolve(path string) (Entry, error) {
	root, ext := splitExt(path)
	for _, e := range r.entries {
		if !strings.Contains(ext, e.Fragment) {
			continue
		}
		if e.Nested != nil {
			return e.Nested.resolve(root)
		}
		return e, nil
	}
	return Entry{}, &UnsupportedFormatError{Ext: ext}
}

// Read normalizes path, resolves its handler and returns the handler's
// result unchanged.
func (r *Registry) Read(path string, opts ...Option) (*spectrum.Series, *spectrum.Metadata, error) {
	o := buildOptions(opts)
	abs, err := normalizePath(path)
	if err != nil {
		return nil, nil, err
	}
	e, err := r.resolve(abs)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	o.logger().Debug("resolved reader", "file", abs, "format", e.Name)
	return e.Handler(abs, o)
}

// Overlaps reports fragment pairs, at any one level, where the first
// fragment is contained in the second. Such pairs make the outcome depend on
// entry order.
func (r *Registry) Overlaps() [][2]string {
	var out [][2]string
	for i, a := range r.entries {
		for j, b := range r.entries {
			if i != j && strings.Contains(b.Fragment, a.Fragment) {
				out = append(out, [2]string{a.Fragment, b.Fragment})
			}
		}
		if a.Nested != nil {
			out = append(out, a.Nested.Overlaps()...)
		}
	}
	return out
}

// Formats returns one "fragment (name)" line per entry; nested entries are
// indented under their parent.
func (r *Registry) Formats() []string {
	return r.formats("")
}

func (r *Registry) formats(indent string) []string {
	var out []string
	for _, e := range r.entries {
		name := e.Name
		if name == "" && e.Nested != nil {
			name = "by secondary extension"
		}
		out = append(out, indent+e.Fragment+" ("+name+")")
		if e.Nested != nil {
			out = append(out, e.Nested.formats(indent+"  ")...)
		}
	}
	return out
}

// Decoders supplies the sibling format decoders that live outside this
// package. A nil field leaves the format registered but failing with
// ErrNoDecoder.
type Decoders struct {
	ASD  Handler // binary ASD
	SIG  Handler
	SED  Handler
	PICO Handler
}

// NewDefaultRegistry returns the standard extension table.
func NewDefaultRegistry(d Decoders) *Registry {
	pico := orMissing(d.PICO, "pico")
	text := MustRegistry(
		Entry{Fragment: ".0", Name: ExtendedText.Name, Handler: ExtendedText.Read},
		Entry{Fragment: ".a", Name: LegacyText.Name, Handler: LegacyText.Read},
	)
	return MustRegistry(
		Entry{Fragment: ".asd", Name: "asd", Handler: orMissing(d.ASD, "asd")},
		Entry{Fragment: ".sig", Name: "sig", Handler: orMissing(d.SIG, "sig")},
		Entry{Fragment: ".sed", Name: "sed", Handler: orMissing(d.SED, "sed")},
		Entry{Fragment: ".pico", Name: "pico", Handler: pico},
		Entry{Fragment: ".light", Name: "pico", Handler: pico},
		Entry{Fragment: ".dark", Name: "pico", Handler: pico},
		Entry{Fragment: ".txt", Nested: text},
	)
}

func orMissing(h Handler, format string) Handler {
	if h != nil {
		return h
	}
	return func(path string, _ Options) (*spectrum.Series, *spectrum.Metadata, error) {
		return nil, nil, fmt.Errorf("%s reader for %s: %w", format, path, ErrNoDecoder)
	}
}

// Default is the registry used by Read and ReadAll.
var Default = NewDefaultRegistry(Decoders{})

// SupportedFormats lists the default registry's fragments.
func SupportedFormats() []string {
	return Default.Formats()
}
