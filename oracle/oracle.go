// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

// Package oracle implements the teq.Oracle interface for circuits given as
// DIMACS CNF formulas, which are compiled into BDD, and for d-DNNF circuits in
// the c2d format. The format is chosen from the extension of the circuit name,
// either .cnf or .nnf.
package oracle

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/big"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/dalzilio/teq"
	"github.com/dalzilio/teq/bdd"
	"github.com/dalzilio/teq/cnf"
	"github.com/dalzilio/teq/nnf"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

const metricsNamespace = "teq"

const metricsSubsystem = "oracle"

// Oracle compiles, counts and samples circuits. The zero value is not usable,
// use New.
type Oracle struct {
	bddopts []bdd.Option
	log     zerolog.Logger
	calls   *prometheus.CounterVec
	errors  *prometheus.CounterVec
	samples prometheus.Counter
}

type options struct {
	reg     prometheus.Registerer
	bddopts []bdd.Option
	log     zerolog.Logger
}

// Option is a configuration option (function) used as a parameter in New.
type Option func(*options)

// Registerer sets the registry where the metrics of the oracle are
// registered. By default metrics are not registered.
func Registerer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.reg = reg
	}
}

// BDDOptions sets the options used when compiling CNF formulas into BDD.
func BDDOptions(opts ...bdd.Option) Option {
	return func(o *options) {
		o.bddopts = append(o.bddopts, opts...)
	}
}

// Logger sets the logger used to report compiled circuits, at debug level.
func Logger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// New returns a new Oracle.
func New(opts ...Option) *Oracle {
	config := &options{log: zerolog.Nop()}
	for _, f := range opts {
		f(config)
	}
	factory := promauto.With(config.reg)
	return &Oracle{
		bddopts: config.bddopts,
		log:     config.log,
		calls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "calls_total",
			Help:      "Number of calls to the oracle by operation.",
		}, []string{"op"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "errors_total",
			Help:      "Number of failed calls to the oracle by operation.",
		}, []string{"op"}),
		samples: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "samples_total",
			Help:      "Number of assignments drawn by the oracle.",
		}),
	}
}

// record updates the call and error counters of operation op.
func (o *Oracle) record(op string, err error) error {
	o.calls.WithLabelValues(op).Inc()
	if err != nil {
		o.errors.WithLabelValues(op).Inc()
	}
	return err
}

// Compile reads a circuit from r. The format is given by the extension of
// name.
func (o *Oracle) Compile(ctx context.Context, name string, r io.Reader) (teq.Circuit, error) {
	c, err := o.compile(ctx, name, r)
	if err == nil {
		o.log.Debug().
			Str("circuit", name).
			Int("varnum", c.Varnum()).
			Int("nodes", c.size()).
			Str("digest", fmt.Sprintf("%016x", c.digest())).
			Msg("circuit compiled")
	}
	return c, o.record("compile", err)
}

func (o *Oracle) compile(ctx context.Context, name string, r io.Reader) (circuit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", teq.ErrCompilation, name, err)
	}
	digest := xxhash.Sum64(data)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".cnf":
		f, err := cnf.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %w: %s: %w", teq.ErrCompilation, teq.ErrInputFormat, name, err)
		}
		b, root, err := cnf.Compile(f, o.bddopts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", teq.ErrCompilation, name, err)
		}
		return &bddCircuit{name: name, hash: digest, varnum: f.Varnum, b: b, root: root}, nil
	case ".nnf":
		c, err := nnf.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %w: %s: %w", teq.ErrCompilation, teq.ErrInputFormat, name, err)
		}
		return &nnfCircuit{name: name, hash: digest, c: c}, nil
	default:
		return nil, fmt.Errorf("%w: %w: %s: expected a .cnf or .nnf file", teq.ErrCompilation, teq.ErrInputFormat, name)
	}
}

// Declare returns the number of variables given in the header of a circuit,
// that is V in "p cnf V C" and n in "nnf v e n". Only the header is read.
func (o *Oracle) Declare(ctx context.Context, name string, r io.Reader) (int, error) {
	n, err := o.declare(ctx, name, r)
	return n, o.record("declare", err)
}

func (o *Oracle) declare(ctx context.Context, name string, r io.Reader) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".cnf":
		varnum, _, err := cnf.ReadHeader(r)
		if err != nil {
			return 0, fmt.Errorf("%w: %w: %s: %w", teq.ErrCompilation, teq.ErrInputFormat, name, err)
		}
		return varnum, nil
	case ".nnf":
		h, err := nnf.ReadHeader(r)
		if err != nil {
			return 0, fmt.Errorf("%w: %w: %s: %w", teq.ErrCompilation, teq.ErrInputFormat, name, err)
		}
		return h.Varnum, nil
	default:
		return 0, fmt.Errorf("%w: %w: %s: expected a .cnf or .nnf file", teq.ErrCompilation, teq.ErrInputFormat, name)
	}
}

// Open compiles the circuit in file path.
func (o *Oracle) Open(ctx context.Context, path string) (teq.Circuit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, o.record("compile", fmt.Errorf("%w: %w", teq.ErrCompilation, err))
	}
	defer f.Close()
	return o.Compile(ctx, path, f)
}

func lookup(c teq.Circuit) (circuit, error) {
	res, ok := c.(circuit)
	if !ok {
		return nil, fmt.Errorf("%w: circuit %s was not compiled by this oracle", teq.ErrOracle, c.Name())
	}
	return res, nil
}

// weights returns the weights of the literals of variables 1 to levels, in
// the order used by packages bdd and nnf.
func weights(w teq.LiteralWeighter, levels int) [][2]*big.Rat {
	res := make([][2]*big.Rat, levels)
	for i := 1; i <= levels; i++ {
		res[i-1] = [2]*big.Rat{w.Literal(-i), w.Literal(i)}
	}
	return res
}

// Annotate returns the weighted count of c under w.
func (o *Oracle) Annotate(ctx context.Context, c teq.Circuit, w teq.LiteralWeighter) (*big.Rat, error) {
	res, err := o.annotate(ctx, c, w)
	return res, o.record("annotate", err)
}

func (o *Oracle) annotate(ctx context.Context, c teq.Circuit, w teq.LiteralWeighter) (*big.Rat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cc, err := lookup(c)
	if err != nil {
		return nil, err
	}
	return cc.count(weights(w, cc.levels()))
}

// Sample draws n models of c under w, projected on the variables of set.
func (o *Oracle) Sample(ctx context.Context, c teq.Circuit, w teq.LiteralWeighter, n int, set []int, rng *rand.Rand) ([]teq.Assignment, error) {
	res, err := o.sample(ctx, c, w, n, set, rng)
	if err == nil {
		o.samples.Add(float64(len(res)))
	}
	return res, o.record("sample", err)
}

func (o *Oracle) sample(ctx context.Context, c teq.Circuit, w teq.LiteralWeighter, n int, set []int, rng *rand.Rand) ([]teq.Assignment, error) {
	cc, err := lookup(c)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative number of samples (%d)", teq.ErrOracle, n)
	}
	for _, v := range set {
		if v < 1 || v > cc.levels() {
			return nil, fmt.Errorf("%w: variable %d not in circuit %s", teq.ErrOracle, v, c.Name())
		}
	}
	d, err := cc.sampler(weights(w, cc.levels()))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", teq.ErrOracle, c.Name(), err)
	}
	res := make([]teq.Assignment, n)
	for i := range res {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		model := d.Draw(rng)
		a := make(teq.Assignment, len(set))
		for k, v := range set {
			a[k] = v
			if model[v-1] == 0 {
				a[k] = -v
			}
		}
		res[i] = a
	}
	return res, nil
}

// Digest returns the xxhash digest of the source of a circuit compiled by an
// Oracle.
func Digest(c teq.Circuit) (uint64, bool) {
	cc, ok := c.(circuit)
	if !ok {
		return 0, false
	}
	return cc.digest(), true
}
