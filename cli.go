package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/metcalfc/spex/internal/reader"
	"github.com/metcalfc/spex/internal/spectrum"
	"github.com/metcalfc/spex/internal/state"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type config struct {
	readData     bool
	readMetadata bool
	verbose      bool
	print        bool
	output       string
	formats      bool
	fresh        bool
	version      bool
	files        []string
}

func parseFlags(name string, args []string, stderr io.Writer) (config, error) {
	var c config
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&c.readData, "data", true, "Read the measurement series")
	fs.BoolVar(&c.readMetadata, "metadata", true, "Read the header metadata")
	fs.BoolVar(&c.verbose, "v", false, "Log each file as it is read")
	fs.BoolVar(&c.print, "print", false, "Print every file instead of opening the viewer")
	fs.StringVar(&c.output, "o", "yaml", "Print format: yaml or json")
	fs.BoolVar(&c.formats, "formats", false, "List supported file extensions")
	fs.BoolVar(&c.fresh, "fresh", false, "Ignore the saved viewer position")
	fs.BoolVar(&c.version, "version", false, "Show version information")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "%s - spectrometer export reader\n\n", name)
		fmt.Fprintf(stderr, "Usage:\n")
		fmt.Fprintf(stderr, "  %s [options] file...\n\n", name)
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  %s leaf00001.asd.txt                View one export\n", name)
		fmt.Fprintf(stderr, "  %s -print -o json *.txt             Dump every export as JSON\n", name)
		fmt.Fprintf(stderr, "  %s -print -data=false *.000.txt     Dump headers only\n", name)
	}
	if err := fs.Parse(args); err != nil {
		return c, err
	}
	c.files = fs.Args()

	if c.output != "yaml" && c.output != "json" {
		return c, fmt.Errorf("unknown output format %q", c.output)
	}
	if !c.version && !c.formats && len(c.files) == 0 {
		return c, fmt.Errorf("no input files")
	}
	return c, nil
}

func (c config) readOptions(logger *slog.Logger) []reader.Option {
	return []reader.Option{
		reader.WithData(c.readData),
		reader.WithMetadata(c.readMetadata),
		reader.WithVerbose(c.verbose),
		reader.WithLogger(logger),
	}
}

type printedPoint struct {
	Wavelength int     `json:"wavelength" yaml:"wavelength"`
	Value      float64 `json:"value" yaml:"value"`
}

type printedSeries struct {
	Column spectrum.Kind  `json:"column" yaml:"column"`
	Points []printedPoint `json:"points" yaml:"points"`
}

type printedResult struct {
	Path     string             `json:"path" yaml:"path"`
	Metadata *spectrum.Metadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Series   *printedSeries     `json:"series,omitempty" yaml:"series,omitempty"`
}

func toPrinted(r reader.Result) printedResult {
	out := printedResult{Path: r.Path, Metadata: r.Metadata}
	if r.Series != nil {
		ps := &printedSeries{Column: r.Series.Column(), Points: []printedPoint{}}
		for _, p := range r.Series.Points() {
			ps.Points = append(ps.Points, printedPoint{Wavelength: p.Wavelength, Value: p.Value})
		}
		out.Series = ps
	}
	return out
}

// printResults writes one document per result: a YAML stream or a JSON
// array.
func printResults(w io.Writer, results []reader.Result, format string) error {
	printed := make([]printedResult, len(results))
	for i, r := range results {
		printed[i] = toPrinted(r)
	}

	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(printed)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, p := range printed {
		if err := enc.Encode(p); err != nil {
			return err
		}
	}
	return enc.Close()
}

// viewState loads the saved viewer state for path. A missing store or
// unreadable file yields a nil store and the zero state.
func viewState(path string, fresh bool) (*state.StateStore, string, state.ViewState) {
	store, err := state.NewStateStore()
	if err != nil {
		return nil, "", state.ViewState{}
	}
	hash, err := state.ComputeHash(path)
	if err != nil {
		return nil, "", state.ViewState{}
	}
	if fresh {
		return store, hash, state.ViewState{}
	}
	v, _ := store.Get(hash)
	return store, hash, v
}

// clampRow keeps a restored row inside a table of n rows.
func clampRow(row, n int) int {
	if row < 0 || n == 0 {
		return 0
	}
	if row >= n {
		return n - 1
	}
	return row
}

// run handles the modes shared by the terminal and desktop builds. It
// returns done=false when the caller should open its viewer on c.files[0].
func run(c config, stdout io.Writer, logger *slog.Logger) (done bool, err error) {
	switch {
	case c.version:
		fmt.Fprintf(stdout, "spex %s (commit: %s, built: %s)\n", version, commit, date)
		return true, nil

	case c.formats:
		for _, f := range reader.SupportedFormats() {
			fmt.Fprintln(stdout, f)
		}
		return true, nil

	case c.print:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		results, err := reader.ReadAll(ctx, c.files, c.readOptions(logger)...)
		if err != nil {
			return true, err
		}
		return true, printResults(stdout, results, c.output)
	}
	return false, nil
}

// metadataRows renders the record as key/value text pairs in order.
func metadataRows(m *spectrum.Metadata) [][2]string {
	if m == nil {
		return nil
	}
	rows := make([][2]string, 0, m.Len())
	for _, f := range m.Fields() {
		rows = append(rows, [2]string{f.Key, formatValue(f.Value)})
	}
	return rows
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "-"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func formatPoint(p spectrum.Point) (string, string) {
	return strconv.Itoa(p.Wavelength), strconv.FormatFloat(p.Value, 'f', -1, 64)
}

func newLogger(stderr io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
