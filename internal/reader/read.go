package reader

import (
	"context"
	"log/slog"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/metcalfc/spex/internal/spectrum"
)

// Handler decodes one file. Either result may be nil when the matching
// read flag is off.
type Handler func(path string, opts Options) (*spectrum.Series, *spectrum.Metadata, error)

// Options are the read flags handed to every Handler.
type Options struct {
	ReadData     bool
	ReadMetadata bool
	Verbose      bool
	Logger       *slog.Logger
}

var stderrLogger = slog.New(slog.NewTextHandler(os.Stderr, nil))

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return stderrLogger
}

// Option adjusts Options.
type Option func(*Options)

// WithData toggles reading the measurement series.
func WithData(read bool) Option {
	return func(o *Options) { o.ReadData = read }
}

// WithMetadata toggles reading the metadata record.
func WithMetadata(read bool) Option {
	return func(o *Options) { o.ReadMetadata = read }
}

// WithVerbose makes the reader log one line naming the file it reads.
func WithVerbose(v bool) Option {
	return func(o *Options) { o.Verbose = v }
}

// WithLogger sets the logger used for the verbose notice and debug records.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func buildOptions(opts []Option) Options {
	o := Options{ReadData: true, ReadMetadata: true}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Read decodes path with the default registry.
func Read(path string, opts ...Option) (*spectrum.Series, *spectrum.Metadata, error) {
	return Default.Read(path, opts...)
}

// Result is one file's output from ReadAll.
type Result struct {
	Path     string
	Series   *spectrum.Series
	Metadata *spectrum.Metadata
}

// ReadAll reads paths concurrently with the default registry. Results keep
// the order of paths. The first failure cancels the remaining reads.
func ReadAll(ctx context.Context, paths []string, opts ...Option) ([]Result, error) {
	return Default.ReadAll(ctx, paths, opts...)
}

// ReadAll is the registry form of the package level ReadAll.
func (r *Registry) ReadAll(ctx context.Context, paths []string, opts ...Option) ([]Result, error) {
	results := make([]Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, m, err := r.Read(path, opts...)
			if err != nil {
				return err
			}
			results[i] = Result{Path: path, Series: s, Metadata: m}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
