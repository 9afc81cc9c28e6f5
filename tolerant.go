// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package teq

import (
	"context"
	"fmt"
	"math/big"
	"math/rand"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// density returns the product of the weights of the literals in a.
func density(a Assignment, w Weights) *big.Rat {
	res := big.NewRat(1, 1)
	for _, l := range a {
		res.Mul(res, w.Literal(l))
	}
	return res
}

// checkAssignment verifies that a has one literal for each variable of set.
func checkAssignment(a Assignment, set []int) error {
	if len(a) != len(set) {
		return fmt.Errorf("%w: assignment with %d literals, expected %d", ErrOracle, len(a), len(set))
	}
	for k, l := range a {
		if l != set[k] && l != -set[k] {
			return fmt.Errorf("%w: literal %d at position %d, expected variable %d", ErrOracle, l, k, set[k])
		}
	}
	return nil
}

// deviation returns max(0, 1 - r) where r = (s2 wct1)/(s1 wct2) is the ratio
// of the densities of a in the second and first distributions. The argument
// ratio is wct1/wct2.
func deviation(a Assignment, w1, w2 Weights, ratio *big.Rat) (*big.Rat, error) {
	s1 := density(a, w1)
	if s1.Sign() == 0 {
		return nil, fmt.Errorf("%w: sampled an assignment of weight zero", ErrOracle)
	}
	r := density(a, w2)
	r.Quo(r, s1)
	r.Mul(r, ratio)
	if r.Cmp(one) >= 0 {
		return new(big.Rat), nil
	}
	return r.Sub(one, r), nil
}

// tolerant draws N samples from the first circuit and accepts if the average
// deviation is at most epsilon + gamma.
func (t *Tester) tolerant(ctx context.Context, c1, c2 Circuit, w1, w2 Weights, p Params, seed int64, log zerolog.Logger) (*Report, error) {
	n, err := p.SampleCount()
	if err != nil {
		return nil, err
	}
	log.Debug().Int("samples", n).Msg("number of samples required to test tolerant closeness")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	set := w1.Vars()
	rng := rand.New(rand.NewSource(seed))
	sampling := Go(ctx, func(ctx context.Context) ([]Assignment, error) {
		res, err := t.oracle.Sample(ctx, c1, w1, n, set, rng)
		return res, oracleError("sample", err)
	})
	count1 := Go(ctx, t.annotate(c1, w1))
	count2 := Go(ctx, t.annotate(c2, w2))

	wct1, err := count1.Await(ctx)
	if err != nil {
		return nil, err
	}
	wct2, err := count2.Await(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug().Float64("wct1", ratfloat(wct1)).Float64("wct2", ratfloat(wct2)).Msg("weighted counts")
	if wct1.Sign() == 0 || wct2.Sign() == 0 {
		return nil, fmt.Errorf("%w: weighted counts %s and %s", ErrDivisionByZero, wct1.RatString(), wct2.RatString())
	}
	samples, err := sampling.Await(ctx)
	if err != nil {
		return nil, err
	}
	if len(samples) != n {
		return nil, fmt.Errorf("%w: %d samples drawn, expected %d", ErrOracle, len(samples), n)
	}

	ratio := new(big.Rat).Quo(wct1, wct2)
	devs := make([]*big.Rat, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.parallelism)
	for i, a := range samples {
		i, a := i, a
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := checkAssignment(a, set); err != nil {
				return fmt.Errorf("sample %d: %w", i, err)
			}
			d, err := deviation(a, w1, w2, ratio)
			if err != nil {
				return fmt.Errorf("sample %d: %w", i, err)
			}
			devs[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sum := new(big.Rat)
	floats := make([]float64, n)
	for i, d := range devs {
		sum.Add(sum, d)
		floats[i] = ratfloat(d)
	}
	estimate := sum.Quo(sum, big.NewRat(int64(n), 1))
	threshold := p.Threshold()
	rep := &Report{
		Mode:      Tolerant,
		Verdict:   Verdict(estimate.Cmp(threshold) <= 0),
		WCT1:      wct1,
		WCT2:      wct2,
		Samples:   n,
		Threshold: threshold,
		Estimate:  estimate,
	}
	if n > 1 {
		rep.Mean, rep.StdDev = stat.MeanStdDev(floats, nil)
	} else {
		rep.Mean = floats[0]
	}
	return rep, nil
}
