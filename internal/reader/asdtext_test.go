package reader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metcalfc/spex/internal/spectrum"
)

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

// writeFile places content under a temp dir with the given name.
func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func readLayout(t *testing.T, l *Layout, path string, opts ...Option) (*spectrum.Series, *spectrum.Metadata, error) {
	t.Helper()
	return l.Read(path, buildOptions(opts))
}

func TestLegacyText(t *testing.T) {
	path := writeFile(t, "leaf00001.asd.txt", fixture(t, "legacy.asd.txt"))

	s, m, err := readLayout(t, LegacyText, path)
	require.NoError(t, err)
	require.NotNil(t, s)
	require.NotNil(t, m)

	assert.Equal(t, spectrum.RawCount, s.Column())
	assert.Equal(t, []int{350, 351, 352, 353, 354}, s.Wavelengths())
	assert.Equal(t, []float64{0.1234, 0.1255, 0.1301, 0.1322, 0.1350}, s.Values())

	assert.Equal(t, []string{
		spectrum.KeyFile,
		spectrum.KeyInstrumentType,
		spectrum.KeyIntegrationTime,
		spectrum.KeyMeasurementType,
		spectrum.KeyGPSTimeTarget,
		spectrum.KeyGPSTimeRef,
		spectrum.KeyWavelengthRange,
	}, m.Keys())

	file, _ := m.Get(spectrum.KeyFile)
	assert.Equal(t, strings.TrimSuffix(path, ".txt"), file)
	instrument, _ := m.Get(spectrum.KeyInstrumentType)
	assert.Equal(t, "ASD", instrument)
	integration, _ := m.Get(spectrum.KeyIntegrationTime)
	assert.Equal(t, "17", integration)
	kind, _ := m.Get(spectrum.KeyMeasurementType)
	assert.Equal(t, spectrum.RawCount, kind)
	for _, key := range []string{spectrum.KeyGPSTimeTarget, spectrum.KeyGPSTimeRef} {
		v, ok := m.Get(key)
		assert.True(t, ok, key)
		assert.Nil(t, v, key)
	}
	waveRange, _ := m.Get(spectrum.KeyWavelengthRange)
	assert.Equal(t, spectrum.Range[int]{Min: 350, Max: 354}, waveRange)
}

func TestLegacyTextHeaderFields(t *testing.T) {
	h, _, err := LegacyText.decode(bytes.NewReader(fixture(t, "legacy.asd.txt")), false)
	require.NoError(t, err)

	assert.Equal(t, "18179", h.instrument)
	assert.Equal(t, "0x600", h.programVersion)
	assert.Equal(t, "0x7", h.fileVersion)
	assert.Equal(t, "Leaf sample, upper canopy", h.description)
	assert.Equal(t, []string{"Comment: clear sky", "Wavelength", "leaf00001.asd"}, h.run)
}

func TestLegacyTextWithoutData(t *testing.T) {
	path := writeFile(t, "leaf.asd.txt", fixture(t, "legacy.asd.txt"))

	s, m, err := readLayout(t, LegacyText, path, WithData(false))
	require.NoError(t, err)
	assert.Nil(t, s)
	require.NotNil(t, m)

	v, ok := m.Get(spectrum.KeyWavelengthRange)
	assert.True(t, ok)
	assert.Nil(t, v, "range depends on the data extent")
	integration, _ := m.Get(spectrum.KeyIntegrationTime)
	assert.Equal(t, "17", integration)
}

func TestLegacyTextWithoutMetadata(t *testing.T) {
	path := writeFile(t, "leaf.asd.txt", fixture(t, "legacy.asd.txt"))

	s, m, err := readLayout(t, LegacyText, path, WithMetadata(false))
	require.NoError(t, err)
	assert.Nil(t, m)
	require.NotNil(t, s)
	assert.Equal(t, 5, s.Len())
}

func TestLegacyTextIntegrationPrefixes(t *testing.T) {
	for _, line := range []string{"Integration time: 8", "VNIR integration time : 8", "SWIR1 integration time 8"} {
		t.Run(line, func(t *testing.T) {
			content := strings.Replace(string(fixture(t, "legacy.asd.txt")), "VNIR integration time : 17", line, 1)
			path := writeFile(t, "leaf.asd.txt", []byte(content))

			_, m, err := readLayout(t, LegacyText, path)
			require.NoError(t, err)
			v, _ := m.Get(spectrum.KeyIntegrationTime)
			assert.Equal(t, "8", v)
		})
	}
}

func TestLegacyTextLongHeaderRun(t *testing.T) {
	run := strings.Repeat("free text\tmore\tcolumns\n", 500)
	content := strings.Replace(string(fixture(t, "legacy.asd.txt")), "Comment: clear sky\n", run, 1)
	h, s, err := LegacyText.decode(strings.NewReader(content), true)
	require.NoError(t, err)
	assert.Len(t, h.run, 1502)
	assert.Equal(t, 5, s.Len())
}

func TestLegacyTextAssertions(t *testing.T) {
	tests := []struct {
		name  string
		old   string
		new   string
		state State
		line  int
	}{
		{"banner", "Text conversion of header file", "Text export", StateBanner, 2},
		{"separator", "-------------------------------------------------", "=====", StateSeparator, 3},
		{"version", "New ASD spectrum file:", "Old ASD spectrum file:", StateVersion, 6},
		{"version tokens", "New ASD spectrum file: Program version = 0x600 file version = 0x7", "New ASD spectrum file: 0x7", StateVersion, 6},
		{"integration", "VNIR integration time : 17", "exposure : 17", StateIntegrationTime, 8},
		{"wavelength", "352\t0.1301", "352.5\t0.1301", StateData, 13},
		{"value", "353\t0.1322", "353\tn/a", StateData, 14},
		{"columns", "354\t0.1350", "354", StateData, 15},
		{"order", "354\t0.1350", "352\t0.1350", StateData, 15},
		{"no sentinel", "Wavelength\tleaf00001.asd", "Wave\tleaf00001.asd", StateHeaderRun, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := strings.Replace(string(fixture(t, "legacy.asd.txt")), tt.old, tt.new, 1)
			require.NotEqual(t, string(fixture(t, "legacy.asd.txt")), content)
			path := writeFile(t, "leaf.asd.txt", []byte(content))

			s, m, err := readLayout(t, LegacyText, path)
			require.Error(t, err)
			assert.Nil(t, s)
			assert.Nil(t, m)
			assert.True(t, errors.Is(err, ErrContentAssertion), err)

			var ae *AssertionError
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, tt.state, ae.State)
			assert.Equal(t, tt.line, ae.Line)
			assert.Equal(t, LegacyText.Name, ae.Layout)
		})
	}
}

func TestLegacyTextTruncated(t *testing.T) {
	content := "\nText conversion of header file: x.asd\n-----\n"
	_, _, err := LegacyText.decode(strings.NewReader(content), true)

	var ae *AssertionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, StateDescription, ae.State)
	assert.Zero(t, ae.Line)
	assert.Contains(t, ae.Error(), "end of file")
}

func TestTextEncodingNoise(t *testing.T) {
	clean := fixture(t, "legacy.asd.txt")

	tests := []struct {
		name    string
		content []byte
	}{
		{"crlf", bytes.ReplaceAll(clean, []byte("\n"), []byte("\r\n"))},
		{"bare cr", bytes.ReplaceAll(clean, []byte("\n"), []byte("\r"))},
		{"mixed", mixEndings(clean)},
		{"nul bytes", bytes.ReplaceAll(clean, []byte("\t"), []byte("\x00\t\x00"))},
		{"utf8 bom", append([]byte("\xef\xbb\xbf"), clean...)},
		{"utf16le", utf16LE(clean)},
		{"trailing blank lines", append(append([]byte(nil), clean...), "\n\n  \n"...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "leaf.asd.txt", tt.content)
			s, m, err := readLayout(t, LegacyText, path)
			require.NoError(t, err)
			assert.Equal(t, []int{350, 351, 352, 353, 354}, s.Wavelengths())
			v, _ := m.Get(spectrum.KeyWavelengthRange)
			assert.Equal(t, spectrum.Range[int]{Min: 350, Max: 354}, v)
		})
	}
}

func mixEndings(b []byte) []byte {
	lines := bytes.Split(b, []byte("\n"))
	endings := [][]byte{[]byte("\n"), []byte("\r\n"), []byte("\r")}
	var out []byte
	for i, l := range lines {
		out = append(out, l...)
		if i < len(lines)-1 {
			out = append(out, endings[i%len(endings)]...)
		}
	}
	return out
}

// utf16LE widens ASCII input to UTF-16LE with a byte order mark.
func utf16LE(b []byte) []byte {
	out := []byte{0xff, 0xfe}
	for _, c := range b {
		out = append(out, c, 0)
	}
	return out
}

func TestExtendedText(t *testing.T) {
	path := writeFile(t, "leaf00002.000.txt", fixture(t, "extended.000.txt"))

	s, m, err := readLayout(t, ExtendedText, path)
	require.NoError(t, err)

	assert.Equal(t, []int{351, 352, 353}, s.Wavelengths())
	assert.Equal(t, []float64{1021, 1030.5, 1044.25}, s.Values())

	assert.Equal(t, []string{
		spectrum.KeyFile,
		spectrum.KeyInstrumentType,
		spectrum.KeyIntegrationTime,
		spectrum.KeyMeasurementType,
		spectrum.KeyGPSTimeTarget,
		spectrum.KeyGPSTimeRef,
		spectrum.KeyGPSLatitude,
		spectrum.KeyGPSLongitude,
		spectrum.KeyGPSAltitude,
		spectrum.KeyWavelengthRange,
	}, m.Keys())

	expect := map[string]any{
		spectrum.KeyFile:            strings.TrimSuffix(path, ".txt"),
		spectrum.KeyInstrumentType:  "ASD",
		spectrum.KeyIntegrationTime: "34",
		spectrum.KeyMeasurementType: spectrum.RawCount,
		spectrum.KeyGPSTimeTarget:   nil,
		spectrum.KeyGPSTimeRef:      nil,
		spectrum.KeyGPSLatitude:     "-33.8688",
		spectrum.KeyGPSLongitude:    "151.2093",
		spectrum.KeyGPSAltitude:     "58.000000",
		// declared tokens, even though the table starts at 351
		spectrum.KeyWavelengthRange: spectrum.Range[string]{Min: "350.000000", Max: "2500.000000"},
	}
	for key, want := range expect {
		got, _ := m.Get(key)
		assert.Equal(t, want, got, key)
	}
}

func TestExtendedTextHeaderFields(t *testing.T) {
	h, _, err := ExtendedText.decode(bytes.NewReader(fixture(t, "extended.000.txt")), false)
	require.NoError(t, err)

	assert.Equal(t, "350.000000", h.wavelengthStart)
	assert.Equal(t, "1.000000", h.wavelengthStep)
	assert.Equal(t, "2500.000000", h.wavelengthStop)
	assert.Equal(t, "GPS-Latitude is S0 = -33.8688", h.gpsLatitude)
	assert.Equal(t, "GPS-UTC is 00:38:51", h.gpsTime)
	assert.Len(t, h.darkCurrent, 2)
	assert.Equal(t, "DCC value was 1022", h.dcc)
	assert.Equal(t, []string{"Secondary description:", "Canopy transect 4", "Wavelength", "leaf00002.000"}, h.run)
}

func TestExtendedTextWavelengthTokens(t *testing.T) {
	content := strings.Replace(string(fixture(t, "extended.000.txt")),
		"Channel 1 wavelength = 350.000000  step = 1.000000",
		"Channel 1 wavelength = 350.0 step = 1.0 nm", 1)
	h, _, err := ExtendedText.decode(strings.NewReader(content), false)
	require.NoError(t, err)
	assert.Equal(t, "350.0", h.wavelengthStart)
	assert.Equal(t, "1.0", h.wavelengthStep)
}

func TestExtendedTextWithoutData(t *testing.T) {
	path := writeFile(t, "leaf.000.txt", fixture(t, "extended.000.txt"))

	s, m, err := readLayout(t, ExtendedText, path, WithData(false))
	require.NoError(t, err)
	assert.Nil(t, s)
	v, _ := m.Get(spectrum.KeyWavelengthRange)
	assert.Equal(t, spectrum.Range[string]{Min: "350.000000", Max: "2500.000000"}, v)
}

func TestExtendedTextAssertions(t *testing.T) {
	tests := []struct {
		name  string
		old   string
		new   string
		state State
	}{
		{"banner", "Text conversion of header file", "Conversion", StateBanner},
		{"wavelength config", "Channel 1 wavelength", "Channel 2 wavelength", StateWavelengthConfig},
		{"wavelength tokens", "Channel 1 wavelength = 350.000000  step = 1.000000", "Channel 1 wavelength = 350", StateWavelengthConfig},
		{"stop", "xmin = 350.000000", "x-min 350.000000", StateWavelengthStop},
		{"y axis", "ymin= 0.000000", "ymin 0.000000", StateYAxis},
		{"bit depth", "The instrument digitizes spectral values to", "Digitized to", StateBitDepth},
		{"data", "352\t1030.500", "352\tNaN-ish", StateData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := strings.Replace(string(fixture(t, "extended.000.txt")), tt.old, tt.new, 1)
			_, _, err := ExtendedText.decode(strings.NewReader(content), true)

			var ae *AssertionError
			require.True(t, errors.As(err, &ae), "got %v", err)
			assert.Equal(t, tt.state, ae.State)
			assert.ErrorIs(t, err, ErrContentAssertion)
		})
	}
}

func TestLegacyFileIsNotExtended(t *testing.T) {
	_, _, err := ExtendedText.decode(bytes.NewReader(fixture(t, "legacy.asd.txt")), true)

	var ae *AssertionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, StateWavelengthConfig, ae.State)
	assert.Contains(t, ae.Error(), `want "Channel 1 wavelength"`)
}

func TestLayoutStates(t *testing.T) {
	assert.Equal(t, []State{
		StateBlank, StateBanner, StateSeparator, StateDescription, StateInstrumentID,
		StateVersion, StateSavedAt, StateIntegrationTime, StateHeaderRun, StateData,
	}, LegacyText.States())

	states := ExtendedText.States()
	assert.Len(t, states, 25)
	assert.Equal(t, StateGPSTime, states[len(states)-3])
	assert.Equal(t, "wavelength config", StateWavelengthConfig.String())
	assert.Equal(t, "state(99)", State(99).String())
}
