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
)

// Perturb returns the perturbed weight functions of the exact test. For each
// variable i in [1..varnum] we draw a scalar S uniformly in [1, m] and set the
// weight of i to p.S and the weight of -i to (1-p)(1-S), where p is the weight
// of i in w1 (respectively w2), or 1/2 when i is not in the support. The same
// scalar is used for both functions.
func Perturb(w1, w2 Weights, varnum int, m *big.Int, rng *rand.Rand) (LiteralWeights, LiteralWeights) {
	pw1 := make(LiteralWeights, 2*varnum)
	pw2 := make(LiteralWeights, 2*varnum)
	for i := 1; i <= varnum; i++ {
		s := new(big.Int).Rand(rng, m)
		s.Add(s, big.NewInt(1))
		scalar := new(big.Rat).SetInt(s)
		comp := new(big.Rat).Sub(one, scalar)
		for _, x := range []struct {
			w  Weights
			pw LiteralWeights
		}{{w1, pw1}, {w2, pw2}} {
			p := x.w.Lookup(i)
			x.pw[i] = new(big.Rat).Mul(p, scalar)
			x.pw[-i] = p.Sub(one, p).Mul(p, comp)
		}
	}
	return pw1, pw2
}

// exact compares the ratios of perturbed to original weighted counts of the
// two circuits.
func (t *Tester) exact(ctx context.Context, c1, c2 Circuit, w1, w2 Weights, delta float64, seed int64, log zerolog.Logger) (*Report, error) {
	if c1.Varnum() != c2.Varnum() {
		return nil, fmt.Errorf("%w: %d and %d variables", ErrDomainMismatch, c1.Varnum(), c2.Varnum())
	}
	varnum := c1.Varnum()
	m, err := Modulus(varnum, delta)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("varnum", varnum).Stringer("modulus", m).Msg("perturbing weights")
	rng := rand.New(rand.NewSource(seed))
	pw1, pw2 := Perturb(w1, w2, varnum, m, rng)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	futures := []*Future[*big.Rat]{
		Go(ctx, t.annotate(c1, w1)),
		Go(ctx, t.annotate(c2, w2)),
		Go(ctx, t.annotate(c1, pw1)),
		Go(ctx, t.annotate(c2, pw2)),
	}
	counts := make([]*big.Rat, len(futures))
	for k, f := range futures {
		if counts[k], err = f.Await(ctx); err != nil {
			return nil, err
		}
	}
	wct1, wct2, new1, new2 := counts[0], counts[1], counts[2], counts[3]
	if wct1.Sign() == 0 || wct2.Sign() == 0 {
		return nil, fmt.Errorf("%w: weighted counts %s and %s", ErrDivisionByZero, wct1.RatString(), wct2.RatString())
	}
	r1 := new(big.Rat).Quo(new1, wct1)
	r2 := new(big.Rat).Quo(new2, wct2)
	return &Report{
		Mode:       Exact,
		Verdict:    Verdict(r1.Cmp(r2) == 0),
		WCT1:       wct1,
		WCT2:       wct2,
		Modulus:    m,
		NewWCT1:    new1,
		NewWCT2:    new2,
		Difference: new(big.Rat).Sub(new1, new2),
	}, nil
}
