// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package teq

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"math/rand"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Mode selects the test performed by Check.
type Mode int

const (
	// Tolerant checks that two distributions are epsilon-close, or rejects
	// them if they are eta-far.
	Tolerant Mode = iota
	// Exact checks that two weighted functions are equal.
	Exact
)

var modenames = [...]string{
	Tolerant: "tolerant",
	Exact:    "exact",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modenames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modenames[m]
}

// ParseMode returns the mode with the given name.
func ParseMode(s string) (Mode, error) {
	for k, name := range modenames {
		if strings.EqualFold(s, name) {
			return Mode(k), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidParameter, s)
}

// Verdict is the outcome of a test.
type Verdict bool

const (
	// Reject means that the circuits are found far, or not equivalent.
	Reject Verdict = false
	// Accept means that the circuits are found close, or equivalent.
	Accept Verdict = true
)

func (v Verdict) String() string {
	if v {
		return "Accept"
	}
	return "Reject"
}

// Source is a named circuit description. Open is called each time the circuit
// is compiled.
type Source struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// File returns the Source reading the file at path.
func File(path string) Source {
	return Source{
		Name: path,
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// Bytes returns a Source with content data.
func Bytes(name string, data []byte) Source {
	return Source{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// Request describes a test between two circuits. Weights[0] is used with the
// first circuit and Weights[1] with the second.
type Request struct {
	Mode     Mode
	Params   Params
	Circuits [2]Source
	Weights  [2]Weights
}

// Report gives the verdict of a test together with the statistics used to
// reach it. Fields that do not apply to the mode of the test are nil or zero.
type Report struct {
	RunID   uuid.UUID
	Mode    Mode
	Verdict Verdict
	// Reason is set when the test rejected without computing its statistic,
	// for instance when the supports of the weight functions differ.
	Reason string

	WCT1, WCT2 *big.Rat // weighted counts of the two circuits

	// tolerant mode
	Samples   int
	Threshold *big.Rat
	Estimate  *big.Rat
	Mean      float64 // mean of the deviations, same as Estimate
	StdDev    float64 // standard deviation of the deviations

	// exact mode
	Modulus          *big.Int
	NewWCT1, NewWCT2 *big.Rat // weighted counts under the perturbed weights
	Difference       *big.Rat // NewWCT1 - NewWCT2
}

func ratfloat(r *big.Rat) float64 {
	if r == nil {
		return 0
	}
	f, _ := r.Float64()
	return f
}

// MarshalZerologObject adds the main fields of the report to a log event.
func (r *Report) MarshalZerologObject(e *zerolog.Event) {
	e.Str("run", r.RunID.String()).Stringer("mode", r.Mode).Stringer("verdict", r.Verdict)
	if r.Reason != "" {
		e.Str("reason", r.Reason)
		return
	}
	e.Float64("wct1", ratfloat(r.WCT1)).Float64("wct2", ratfloat(r.WCT2))
	switch r.Mode {
	case Tolerant:
		e.Int("samples", r.Samples).
			Float64("threshold", ratfloat(r.Threshold)).
			Float64("estimate", ratfloat(r.Estimate)).
			Float64("stddev", r.StdDev)
	case Exact:
		e.Stringer("modulus", r.Modulus).Float64("difference", ratfloat(r.Difference))
	}
}

// Tester runs tests using an Oracle. A Tester can be used concurrently; runs
// are reproducible when they are started in the same order.
type Tester struct {
	oracle      Oracle
	log         zerolog.Logger
	parallelism int
	mu          sync.Mutex
	rng         *rand.Rand // root of all the random streams
}

type options struct {
	seed        int64
	log         zerolog.Logger
	parallelism int
}

// Option is a configuration option (function) used as a parameter in New.
type Option func(*options)

// Seed sets the seed of the Tester. The default is 42.
func Seed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// Logger sets the logger used to trace runs. By default nothing is logged.
func Logger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// Parallelism sets the maximal number of goroutines used to evaluate the
// samples of a tolerant test. The default is GOMAXPROCS.
func Parallelism(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.parallelism = n
		}
	}
}

// New returns a Tester that delegates compilation, counting and sampling to o.
func New(o Oracle, opts ...Option) *Tester {
	config := &options{
		seed:        42,
		log:         zerolog.Nop(),
		parallelism: runtime.GOMAXPROCS(0),
	}
	for _, f := range opts {
		f(config)
	}
	return &Tester{
		oracle:      o,
		log:         config.log,
		parallelism: config.parallelism,
		rng:         rand.New(rand.NewSource(config.seed)),
	}
}

// seeds derives the seeds of a run: one for the sampling stream of the oracle
// and one for the perturbation scalars.
func (t *Tester) seeds() (sampling, perturbation int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sampling = t.rng.Int63()
	perturbation = t.rng.Int63()
	return
}

// Check runs the test described by req. Parameters are validated before any
// call to the oracle. Weight functions with different supports, circuits over
// different numbers of variables and circuits with a null weighted count lead
// to a Reject report, with a Reason. Any other error aborts the test. In exact
// mode, the numbers of variables are compared before compiling the circuits.
func (t *Tester) Check(ctx context.Context, req Request) (*Report, error) {
	var err error
	switch req.Mode {
	case Tolerant:
		err = req.Params.Validate()
	case Exact:
		err = req.Params.validateDelta()
	default:
		err = fmt.Errorf("%w: unknown mode %d", ErrInvalidParameter, req.Mode)
	}
	if err != nil {
		return nil, err
	}
	for k, s := range req.Circuits {
		if s.Open == nil {
			return nil, fmt.Errorf("%w: missing circuit %d", ErrInvalidParameter, k+1)
		}
	}
	seed1, seed2 := t.seeds()
	id := uuid.New()
	log := t.log.With().Str("run", id.String()).Stringer("mode", req.Mode).Logger()
	log.Debug().Str("circuit1", req.Circuits[0].Name).Str("circuit2", req.Circuits[1].Name).Msg("starting test")

	rep, err := t.run(ctx, req, seed1, seed2, log)
	if err != nil {
		if !rejects(err) {
			log.Error().Err(err).Msg("test aborted")
			return nil, err
		}
		rep = &Report{Mode: req.Mode, Verdict: Reject, Reason: err.Error()}
	}
	rep.RunID = id
	log.Info().EmbedObject(rep).Msg("test done")
	return rep, nil
}

func (t *Tester) run(ctx context.Context, req Request, seed1, seed2 int64, log zerolog.Logger) (*Report, error) {
	w1, w2 := req.Weights[0], req.Weights[1]
	if err := ValidateSupport(w1, w2); err != nil {
		return nil, err
	}
	if req.Mode == Exact {
		if err := t.checkDomain(ctx, req.Circuits); err != nil {
			return nil, err
		}
	}
	c1, c2, err := t.compile(ctx, req.Circuits)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("varnum1", c1.Varnum()).Int("varnum2", c2.Varnum()).Msg("circuits compiled")
	if req.Mode == Exact {
		return t.exact(ctx, c1, c2, w1, w2, req.Params.Delta, seed2, log)
	}
	return t.tolerant(ctx, c1, c2, w1, w2, req.Params, seed1, log)
}

// checkDomain returns ErrDomainMismatch when the headers of the two circuits
// declare different numbers of variables. Nothing is compiled.
func (t *Tester) checkDomain(ctx context.Context, sources [2]Source) error {
	var varnum [2]int
	for k, s := range sources {
		r, err := s.Open()
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrCompilation, s.Name, err)
		}
		varnum[k], err = t.oracle.Declare(ctx, s.Name, r)
		r.Close()
		if err != nil {
			return oracleError("declare", err)
		}
	}
	if varnum[0] != varnum[1] {
		return fmt.Errorf("%w: %d and %d variables", ErrDomainMismatch, varnum[0], varnum[1])
	}
	return nil
}

func (t *Tester) compile(ctx context.Context, sources [2]Source) (Circuit, Circuit, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var futures [2]*Future[Circuit]
	for k, s := range sources {
		s := s
		futures[k] = Go(ctx, func(ctx context.Context) (Circuit, error) {
			r, err := s.Open()
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrCompilation, s.Name, err)
			}
			defer r.Close()
			c, err := t.oracle.Compile(ctx, s.Name, r)
			return c, oracleError("compile", err)
		})
	}
	var res [2]Circuit
	for k, f := range futures {
		c, err := f.Await(ctx)
		if err != nil {
			return nil, nil, err
		}
		res[k] = c
	}
	return res[0], res[1], nil
}

// oracleError makes sure that errors returned by the oracle wrap ErrOracle.
func oracleError(op string, err error) error {
	if err == nil || errors.Is(err, ErrOracle) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrOracle, op, err)
}

func (t *Tester) annotate(c Circuit, w LiteralWeighter) func(context.Context) (*big.Rat, error) {
	return func(ctx context.Context) (*big.Rat, error) {
		res, err := t.oracle.Annotate(ctx, c, w)
		if err == nil && res == nil {
			err = fmt.Errorf("null weighted count for %s", c.Name())
		}
		return res, oracleError("annotate", err)
	}
}

// Tolerant runs the tolerant test on two compiled circuits.
func (t *Tester) Tolerant(ctx context.Context, c1, c2 Circuit, w1, w2 Weights, p Params) (*Report, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateSupport(w1, w2); err != nil {
		return nil, err
	}
	seed, _ := t.seeds()
	return t.tolerant(ctx, c1, c2, w1, w2, p, seed, t.log)
}

// Exact runs the exact test on two compiled circuits.
func (t *Tester) Exact(ctx context.Context, c1, c2 Circuit, w1, w2 Weights, delta float64) (*Report, error) {
	if err := ValidateSupport(w1, w2); err != nil {
		return nil, err
	}
	_, seed := t.seeds()
	return t.exact(ctx, c1, c2, w1, w2, delta, seed, t.log)
}
