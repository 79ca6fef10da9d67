package revision

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	kberrors "git.home.luguber.info/inful/kbsite/internal/errors"
	"git.home.luguber.info/inful/kbsite/internal/logfields"
	"git.home.luguber.info/inful/kbsite/internal/metrics"
)

// Unknown is the sentinel used for both fields when metadata cannot be read.
const Unknown = "unknown"

// Fallback is the pair returned whenever any query fails.
var Fallback = Metadata{Hash: Unknown, Date: Unknown}

var (
	hashPattern = regexp.MustCompile(`^[0-9a-f]{4,64}$`)
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Metadata is the abbreviated revision identifier and last commit date (YYYY-MM-DD).
type Metadata struct {
	Hash string `json:"hash" yaml:"hash"`
	Date string `json:"date" yaml:"date"`
}

// Reader performs the raw metadata queries. Implementations may fail; the
// Resolver turns every failure into Fallback.
type Reader interface {
	Read(ctx context.Context) (Metadata, error)
	Backend() string
}

// Result carries either the successful pair or Fallback. Err holds the
// recovered cause and is only meant for logging.
type Result struct {
	Metadata
	Degraded bool
	Err      error
}

// Resolver wraps a Reader in the all-or-nothing fallback boundary.
type Resolver struct {
	reader   Reader
	recorder metrics.Recorder
	logger   *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithRecorder attaches a metrics recorder.
func WithRecorder(r metrics.Recorder) ResolverOption {
	return func(res *Resolver) {
		if r != nil {
			res.recorder = r
		}
	}
}

// WithLogger sets the logger used to report degraded reads.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(res *Resolver) {
		if l != nil {
			res.logger = l
		}
	}
}

// NewResolver returns a Resolver for reader.
func NewResolver(reader Reader, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		reader:   reader,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadRevisionMetadata reads metadata with reader and never fails: any error,
// panic, timeout or malformed value yields Fallback.
func ReadRevisionMetadata(ctx context.Context, reader Reader) Result {
	return NewResolver(reader).Resolve(ctx)
}

// Resolve runs the reader's queries as one attempt. Either both values are
// returned or neither is.
func (r *Resolver) Resolve(ctx context.Context) Result {
	backend := "none"
	if r.reader != nil {
		backend = r.reader.Backend()
	}

	start := time.Now()
	md, err := r.attempt(ctx)
	elapsed := time.Since(start)

	if err != nil {
		cerr := kberrors.RevisionUnavailable(backend, err)
		r.recorder.ObserveRevisionRead(backend, elapsed, metrics.OutcomeDegraded)
		r.logger.Debug("Revision metadata unavailable, using fallback",
			logfields.Backend(backend),
			logfields.Duration(elapsed),
			logfields.Error(err))
		return Result{Metadata: Fallback, Degraded: true, Err: cerr}
	}

	r.recorder.ObserveRevisionRead(backend, elapsed, metrics.OutcomeOK)
	r.logger.Debug("Revision metadata read",
		logfields.Backend(backend),
		logfields.Hash(md.Hash),
		logfields.Date(md.Date),
		logfields.Duration(elapsed))
	return Result{Metadata: md}
}

func (r *Resolver) attempt(ctx context.Context) (md Metadata, err error) {
	if r.reader == nil {
		return Metadata{}, fmt.Errorf("no revision reader configured")
	}
	defer func() {
		if p := recover(); p != nil {
			md, err = Metadata{}, fmt.Errorf("revision reader panicked: %v", p)
		}
	}()

	md, err = r.reader.Read(ctx)
	if err != nil {
		return Metadata{}, err
	}
	md = Metadata{Hash: strings.TrimSpace(md.Hash), Date: strings.TrimSpace(md.Date)}
	if err := md.Validate(); err != nil {
		return Metadata{}, err
	}
	return md, nil
}

// Validate reports whether m holds a short hex hash and a YYYY-MM-DD date.
func (m Metadata) Validate() error {
	if !hashPattern.MatchString(m.Hash) {
		return fmt.Errorf("malformed revision hash %q", m.Hash)
	}
	if !datePattern.MatchString(m.Date) {
		return fmt.Errorf("malformed commit date %q", m.Date)
	}
	return nil
}

// IsFallback reports whether m is the sentinel pair.
func (m Metadata) IsFallback() bool { return m == Fallback }
