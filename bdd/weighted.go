// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bdd

import (
	"fmt"
	"math/big"
	"math/rand"
)

// Weights associates to each level of a BDD the weight of its negative literal
// (index 0) and of its positive literal (index 1). The slice must have exactly
// Varnum entries.
type Weights [][2]*big.Rat

// Uniform returns the weighting where every literal has weight 1/2. The
// weighted count of a node under Uniform is its Satcount divided by 2^varnum.
func Uniform(varnum int) Weights {
	half := big.NewRat(1, 2)
	w := make(Weights, varnum)
	for k := range w {
		w[k] = [2]*big.Rat{half, half}
	}
	return w
}

func (b *BDD) checkweights(w Weights) error {
	if len(w) != int(b.varnum) {
		return fmt.Errorf("%w: %d levels in weighting, expected %d", ErrWeights, len(w), b.varnum)
	}
	for k, v := range w {
		if v[0] == nil || v[1] == nil {
			return fmt.Errorf("%w: missing weight for level %d", ErrWeights, k)
		}
	}
	return nil
}

// wcounter memoizes the weighted count of the nodes reachable from a root.
// It only reads the node table, so distinct wcounters can work concurrently on
// the same BDD.
type wcounter struct {
	b     *BDD
	w     Weights
	sums  []*big.Rat       // sums[k] is the total weight w[k][0] + w[k][1] of level k
	memo  map[int]*big.Rat // weighted count of node n over levels [level(n)..varnum)
	spans map[[2]int32]*big.Rat
}

func (b *BDD) newwcounter(w Weights) *wcounter {
	wc := &wcounter{
		b:     b,
		w:     w,
		sums:  make([]*big.Rat, len(w)),
		memo:  make(map[int]*big.Rat),
		spans: make(map[[2]int32]*big.Rat),
	}
	for k, v := range w {
		wc.sums[k] = new(big.Rat).Add(v[0], v[1])
	}
	return wc
}

// span returns the product of the total weights of levels in [from..to). This
// is the contribution of the variables skipped along an edge.
func (wc *wcounter) span(from, to int32) *big.Rat {
	if from >= to {
		return big.NewRat(1, 1)
	}
	key := [2]int32{from, to}
	if res, ok := wc.spans[key]; ok {
		return res
	}
	res := big.NewRat(1, 1)
	for k := from; k < to; k++ {
		res.Mul(res, wc.sums[k])
	}
	wc.spans[key] = res
	return res
}

// count returns the weighted count of node n over levels [level(n)..varnum).
func (wc *wcounter) count(n int) *big.Rat {
	if n < 2 {
		return big.NewRat(int64(n), 1)
	}
	if res, ok := wc.memo[n]; ok {
		return res
	}
	res := wc.branch(n, false)
	res.Add(res, wc.branch(n, true))
	wc.memo[n] = res
	return res
}

// branch returns the weighted mass of the low (or high) branch of node n,
// including the weight of the literal on the edge and the skipped levels.
func (wc *wcounter) branch(n int, high bool) *big.Rat {
	level := wc.b.level(n)
	child := wc.b.low(n)
	lit := wc.w[level][0]
	if high {
		child = wc.b.high(n)
		lit = wc.w[level][1]
	}
	res := new(big.Rat).Mul(lit, wc.count(child))
	return res.Mul(res, wc.span(level+1, wc.b.level(child)))
}

// WeightedCount returns the weighted model count of the function denoted by n:
// the sum, over all the satisfying assignments of the Varnum variables, of the
// product of their literal weights. The computation is exact. We return nil
// and set the error status of b if there is an error.
func (b *BDD) WeightedCount(n Node, w Weights) *big.Rat {
	if err := b.checknode(n); err != nil {
		b.seterror("wrong operand in call to WeightedCount (%d)", n)
		return nil
	}
	if err := b.checkweights(w); err != nil {
		b.seterror("%w", err)
		return nil
	}
	wc := b.newwcounter(w)
	res := new(big.Rat).Set(wc.count(int(n)))
	return res.Mul(res, wc.span(0, b.level(int(n))))
}

// Sampler draws satisfying assignments of a node with probability
// proportional to their weight. A Sampler is immutable once built, hence a
// single Sampler can serve concurrent calls to Draw, provided each caller
// uses its own source of randomness.
type Sampler struct {
	b     *BDD
	root  int
	total *big.Rat
	probs map[int]*big.Rat // probability of following the high branch of a node
	free  []*big.Rat       // probability of the positive literal of a skipped level
}

// NewSampler prepares the sampling of satisfying assignments of n under
// weighting w. All weights must be non-negative, and the weighted count of n
// must be positive.
func (b *BDD) NewSampler(n Node, w Weights) (*Sampler, error) {
	if err := b.checknode(n); err != nil {
		return nil, fmt.Errorf("wrong operand in call to NewSampler: %w", err)
	}
	if err := b.checkweights(w); err != nil {
		return nil, err
	}
	for k, v := range w {
		if v[0].Sign() < 0 || v[1].Sign() < 0 {
			return nil, fmt.Errorf("%w: negative weight at level %d", ErrWeights, k)
		}
	}
	wc := b.newwcounter(w)
	total := new(big.Rat).Set(wc.count(int(n)))
	total.Mul(total, wc.span(0, b.level(int(n))))
	if total.Sign() == 0 {
		return nil, fmt.Errorf("cannot sample from a node with zero weighted count")
	}
	s := &Sampler{
		b:     b,
		root:  int(n),
		total: total,
		probs: make(map[int]*big.Rat),
		free:  make([]*big.Rat, len(w)),
	}
	for k, v := range w {
		if wc.sums[k].Sign() == 0 {
			// never used: a level with null total weight cannot be skipped on
			// a path with positive mass
			s.free[k] = new(big.Rat)
			continue
		}
		s.free[k] = new(big.Rat).Quo(v[1], wc.sums[k])
	}
	reached := make([]int, 0, len(wc.memo))
	for m := range wc.memo {
		reached = append(reached, m)
	}
	for _, m := range reached {
		mass := wc.count(m)
		if mass.Sign() == 0 {
			continue
		}
		s.probs[m] = new(big.Rat).Quo(wc.branch(m, true), mass)
	}
	return s, nil
}

// Total returns the weighted count of the sampled node.
func (s *Sampler) Total() *big.Rat {
	return new(big.Rat).Set(s.total)
}

// Draw returns one satisfying assignment as a slice of length varnum, where
// entry k is 1 if level k is true and 0 otherwise.
func (s *Sampler) Draw(rng *rand.Rand) []int {
	res := make([]int, s.b.varnum)
	s.drawfree(rng, res, 0, s.b.level(s.root))
	n := s.root
	for n > 1 {
		level := s.b.level(n)
		next := s.b.low(n)
		res[level] = 0
		if bernoulli(rng, s.probs[n]) {
			next = s.b.high(n)
			res[level] = 1
		}
		s.drawfree(rng, res, level+1, s.b.level(next))
		n = next
	}
	return res
}

func (s *Sampler) drawfree(rng *rand.Rand, res []int, from, to int32) {
	for k := from; k < to; k++ {
		res[k] = 0
		if bernoulli(rng, s.free[k]) {
			res[k] = 1
		}
	}
}

// bernoulli returns true with probability p, exactly: we draw an integer
// uniformly in [0, denom(p)) and compare it with num(p).
func bernoulli(rng *rand.Rand, p *big.Rat) bool {
	if p == nil || p.Sign() <= 0 {
		return false
	}
	if p.Cmp(big.NewRat(1, 1)) >= 0 {
		return true
	}
	r := new(big.Int).Rand(rng, p.Denom())
	return r.Cmp(p.Num()) < 0
}
