package reader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/metcalfc/spex/internal/spectrum"
)

// State names one position in the header walk. Each header line is consumed
// by exactly one state.
type State int

const (
	StateBlank State = iota
	StateBanner
	StateSeparator
	StateDescription
	StateInstrumentID
	StateVersion
	StateSavedAt
	StateIntegrationTime
	StateWavelengthConfig
	StateSampleCount
	StateWavelengthStop
	StateYAxis
	StateBitDepth
	StateDarkCurrent
	StateDCC
	StateWhiteReference
	StateInputOptics
	StateDataType
	StateGPSLatitude
	StateGPSLongitude
	StateGPSAltitude
	StateGPSTime
	StateHeaderRun
	StateData
)

var stateNames = [...]string{
	StateBlank:            "blank",
	StateBanner:           "banner",
	StateSeparator:        "separator",
	StateDescription:      "description",
	StateInstrumentID:     "instrument id",
	StateVersion:          "version",
	StateSavedAt:          "saved at",
	StateIntegrationTime:  "integration time",
	StateWavelengthConfig: "wavelength config",
	StateSampleCount:      "sample count",
	StateWavelengthStop:   "wavelength stop",
	StateYAxis:            "y axis",
	StateBitDepth:         "bit depth",
	StateDarkCurrent:      "dark current",
	StateDCC:              "dcc value",
	StateWhiteReference:   "white reference",
	StateInputOptics:      "input optics",
	StateDataType:         "data type",
	StateGPSLatitude:      "gps latitude",
	StateGPSLongitude:     "gps longitude",
	StateGPSAltitude:      "gps altitude",
	StateGPSTime:          "gps time",
	StateHeaderRun:        "header run",
	StateData:             "data",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// headerRunMarker is the token that, on a two token line, ends the header run.
const headerRunMarker = "Wavelength"

// header collects what the fixed header lines carried.
type header struct {
	description     string
	instrument      string
	programVersion  string
	fileVersion     string
	savedAt         string
	integrationTime string

	wavelengthStart string
	wavelengthStep  string
	wavelengthStop  string
	sampleCount     string
	yAxis           string
	bitDepth        string
	darkCurrent     []string
	dcc             string
	whiteReference  string
	inputOptics     string
	dataType        string

	gpsLatitude  string
	gpsLongitude string
	gpsAltitude  string
	gpsTime      string

	run []string
}

// step validates and consumes one header line. An empty marker accepts any
// line. take sees the line's first tab field.
type step struct {
	state  State
	marker string
	take   func(h *header, text string) error
}

// Layout is one header style of the text export, described as an ordered
// list of steps. Adding a header variant means adding a Layout value.
type Layout struct {
	Name string

	// kind labels the value column.
	kind  spectrum.Kind
	steps []step

	// metadata builds the record from the decoded header and, when data
	// was read, the series.
	metadata func(path string, h *header, s *spectrum.Series) *spectrum.Metadata
}

// States returns the fixed header states in the order the layout walks them,
// followed by the header run and data states.
func (l *Layout) States() []State {
	out := make([]State, 0, len(l.steps)+2)
	for _, st := range l.steps {
		out = append(out, st.state)
	}
	return append(out, StateHeaderRun, StateData)
}

// Read implements Handler for the layout.
func (l *Layout) Read(path string, opts Options) (*spectrum.Series, *spectrum.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if opts.Verbose {
		opts.logger().Info("reading", "file", path)
	}

	h, series, err := l.decode(f, opts.ReadData)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	var meta *spectrum.Metadata
	if opts.ReadMetadata {
		meta = l.metadata(path, h, series)
	}
	return series, meta, nil
}

// decode walks the header and, when readData is set, the data table.
func (l *Layout) decode(r io.Reader, readData bool) (*header, *spectrum.Series, error) {
	lines := newLineScanner(r)
	h := &header{}

	fail := func(state State, want, got string, err error) error {
		return &AssertionError{Layout: l.Name, State: state, Line: lines.line, Want: want, Got: got, Err: err}
	}
	eof := func(state State) error {
		if err := lines.err(); err != nil {
			return err
		}
		return &AssertionError{Layout: l.Name, State: state}
	}

	for _, st := range l.steps {
		row, ok := lines.next()
		if !ok {
			return nil, nil, eof(st.state)
		}
		text := firstField(row)
		if st.marker != "" && !strings.Contains(text, st.marker) {
			return nil, nil, fail(st.state, st.marker, text, nil)
		}
		if st.take != nil {
			if err := st.take(h, text); err != nil {
				return nil, nil, fail(st.state, "", text, err)
			}
		}
	}

	if !readHeaderRun(lines, h) {
		return nil, nil, eof(StateHeaderRun)
	}

	if !readData {
		return h, nil, nil
	}

	b := spectrum.NewBuilder(l.kind)
	for {
		row, ok := lines.next()
		if !ok {
			break
		}
		if isBlank(row) {
			continue
		}
		wl, v, err := parseDataRow(row)
		if err == nil {
			err = b.Add(wl, v)
		}
		if err != nil {
			return nil, nil, fail(StateData, "", strings.Join(row, "\t"), err)
		}
	}
	if err := lines.err(); err != nil {
		return nil, nil, err
	}
	return h, b.Series(), nil
}

// readHeaderRun accumulates tokens until a two token line containing the
// sentinel. It reports false if the input ended first.
func readHeaderRun(lines *lineScanner, h *header) bool {
	for {
		row, ok := lines.next()
		if !ok {
			return false
		}
		h.run = append(h.run, row...)
		if len(row) == 2 && (row[0] == headerRunMarker || row[1] == headerRunMarker) {
			return true
		}
	}
}

func parseDataRow(row []string) (int, float64, error) {
	if len(row) < 2 {
		return 0, 0, fmt.Errorf("want at least 2 columns, got %d", len(row))
	}
	wl, err := strconv.Atoi(strings.TrimSpace(row[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("wavelength: %w", err)
	}
	v, err := strconv.ParseFloat(stripSpace(row[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("value: %w", err)
	}
	return wl, v, nil
}

func firstField(row []string) string {
	if len(row) == 0 {
		return ""
	}
	return row[0]
}

func isBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// lastToken returns the last whitespace separated token of s.
func lastToken(s string) string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return ""
	}
	return f[len(f)-1]
}

// token returns whitespace token i of s.
func token(s string, i int) (string, error) {
	f := strings.Fields(s)
	if i >= len(f) {
		return "", fmt.Errorf("want token %d, line has %d", i, len(f))
	}
	return f[i], nil
}

// fileIdentity is the path without its final (text) suffix.
func fileIdentity(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}
