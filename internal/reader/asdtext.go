package reader

import (
	"github.com/metcalfc/spex/internal/spectrum"
)

// InstrumentASD is the instrument type tag of the ASD family.
const InstrumentASD = "ASD"

// Markers asserted by the ASD text export layouts.
const (
	markerBanner      = "Text conversion of header file"
	markerSeparator   = "-----"
	markerVersion     = "New ASD spectrum file:"
	markerIntegration = "ntegration time" // "Integration time" or "VNIR integration time"
	markerWaveConfig  = "Channel 1 wavelength"
	markerWaveStop    = "xmin ="
	markerYAxis       = "ymin="
	markerBitDepth    = "The instrument digitizes spectral values to"
)

// Whitespace token positions within fixed header lines.
const (
	programVersionToken  = 7
	wavelengthStartToken = 4
	wavelengthStepToken  = 7
)

// LegacyText is the older ViewSpec text export: primary description only, no
// wavelength axis or GPS lines. Its wavelength range comes from the data
// table, so it is nil unless data was read. GPS times are always nil since
// their position in this header is unknown.
var LegacyText = &Layout{
	Name: "asd text (legacy)",
	kind: spectrum.RawCount,
	steps: []step{
		{state: StateBlank},
		{state: StateBanner, marker: markerBanner},
		{state: StateSeparator, marker: markerSeparator},
		{state: StateDescription, take: func(h *header, s string) error {
			h.description = s
			return nil
		}},
		{state: StateInstrumentID, take: func(h *header, s string) error {
			h.instrument = lastToken(s)
			return nil
		}},
		{state: StateVersion, marker: markerVersion, take: takeVersion},
		{state: StateSavedAt, take: takeSavedAt},
		{state: StateIntegrationTime, marker: markerIntegration, take: takeIntegrationTime},
	},
	metadata: func(path string, h *header, s *spectrum.Series) *spectrum.Metadata {
		var waveRange any
		if s != nil {
			if r, ok := s.Extent(); ok {
				waveRange = r
			}
		}
		return spectrum.NewMetadata(append(commonFields(path, h, spectrum.RawCount),
			spectrum.Field{Key: spectrum.KeyWavelengthRange, Value: waveRange},
		)...)
	},
}

// ExtendedText is the newer export carrying the channel 1 wavelength axis,
// instrument settings and four GPS lines. The wavelength range is the pair of
// declared header tokens, kept as strings.
var ExtendedText = &Layout{
	Name: "asd text (extended)",
	kind: spectrum.RawCount,
	steps: []step{
		{state: StateBlank},
		{state: StateBanner, marker: markerBanner},
		{state: StateSeparator, marker: markerSeparator},
		{state: StateDescription, take: func(h *header, s string) error {
			h.description = s
			return nil
		}},
		{state: StateInstrumentID, take: func(h *header, s string) error {
			h.instrument = s
			return nil
		}},
		{state: StateVersion, take: func(h *header, s string) error {
			h.programVersion = s
			return nil
		}},
		{state: StateSavedAt, take: takeSavedAt},
		{state: StateIntegrationTime, take: takeIntegrationTime},
		{state: StateWavelengthConfig, marker: markerWaveConfig, take: func(h *header, s string) error {
			var err error
			if h.wavelengthStart, err = token(s, wavelengthStartToken); err != nil {
				return err
			}
			h.wavelengthStep, err = token(s, wavelengthStepToken)
			return err
		}},
		{state: StateSampleCount, take: func(h *header, s string) error {
			h.sampleCount = s
			return nil
		}},
		{state: StateWavelengthStop, marker: markerWaveStop, take: func(h *header, s string) error {
			h.wavelengthStop = lastToken(s)
			return nil
		}},
		{state: StateYAxis, marker: markerYAxis, take: func(h *header, s string) error {
			h.yAxis = s
			return nil
		}},
		{state: StateBitDepth, marker: markerBitDepth, take: func(h *header, s string) error {
			h.bitDepth = s
			return nil
		}},
		{state: StateDarkCurrent, take: takeDarkCurrent},
		{state: StateDarkCurrent, take: takeDarkCurrent},
		{state: StateDCC, take: func(h *header, s string) error {
			h.dcc = s
			return nil
		}},
		{state: StateWhiteReference, take: func(h *header, s string) error {
			h.whiteReference = s
			return nil
		}},
		{state: StateInputOptics, take: func(h *header, s string) error {
			h.inputOptics = s
			return nil
		}},
		{state: StateDataType, take: func(h *header, s string) error {
			h.dataType = s
			return nil
		}},
		{state: StateGPSLatitude, take: func(h *header, s string) error {
			h.gpsLatitude = s
			return nil
		}},
		{state: StateGPSLongitude, take: func(h *header, s string) error {
			h.gpsLongitude = s
			return nil
		}},
		{state: StateGPSAltitude, take: func(h *header, s string) error {
			h.gpsAltitude = s
			return nil
		}},
		{state: StateGPSTime, take: func(h *header, s string) error {
			h.gpsTime = s
			return nil
		}},
	},
	metadata: func(path string, h *header, _ *spectrum.Series) *spectrum.Metadata {
		return spectrum.NewMetadata(append(commonFields(path, h, spectrum.RawCount),
			spectrum.Field{Key: spectrum.KeyGPSLatitude, Value: lastToken(h.gpsLatitude)},
			spectrum.Field{Key: spectrum.KeyGPSLongitude, Value: lastToken(h.gpsLongitude)},
			spectrum.Field{Key: spectrum.KeyGPSAltitude, Value: lastToken(h.gpsAltitude)},
			spectrum.Field{Key: spectrum.KeyWavelengthRange, Value: spectrum.Range[string]{
				Min: h.wavelengthStart,
				Max: h.wavelengthStop,
			}},
		)...)
	},
}

// commonFields are the leading metadata entries of both layouts. The
// measurement type cannot be detected from a text export, so callers pass
// the raw count label.
func commonFields(path string, h *header, kind spectrum.Kind) []spectrum.Field {
	return []spectrum.Field{
		{Key: spectrum.KeyFile, Value: fileIdentity(path)},
		{Key: spectrum.KeyInstrumentType, Value: InstrumentASD},
		{Key: spectrum.KeyIntegrationTime, Value: h.integrationTime},
		{Key: spectrum.KeyMeasurementType, Value: kind},
		{Key: spectrum.KeyGPSTimeTarget, Value: nil},
		{Key: spectrum.KeyGPSTimeRef, Value: nil},
	}
}

func takeVersion(h *header, s string) error {
	v, err := token(s, programVersionToken)
	if err != nil {
		return err
	}
	h.programVersion = v
	h.fileVersion = lastToken(s)
	return nil
}

func takeSavedAt(h *header, s string) error {
	h.savedAt = s
	return nil
}

func takeIntegrationTime(h *header, s string) error {
	h.integrationTime = lastToken(s)
	return nil
}

func takeDarkCurrent(h *header, s string) error {
	h.darkCurrent = append(h.darkCurrent, s)
	return nil
}
