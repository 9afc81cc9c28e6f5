// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bdd

import (
	"errors"
	"math"
	"math/big"
	"math/rand"
	"testing"
)

// bruteforce computes the weighted count of n by enumerating all the
// assignments of the BDD variables.
func bruteforce(b *BDD, n Node, w Weights) *big.Rat {
	res := new(big.Rat)
	varnum := b.Varnum()
	for a := 0; a < 1<<varnum; a++ {
		k := int(n)
		for k > 1 {
			if a&(1<<b.level(k)) != 0 {
				k = b.high(k)
			} else {
				k = b.low(k)
			}
		}
		if k == 0 {
			continue
		}
		prod := big.NewRat(1, 1)
		for l := 0; l < varnum; l++ {
			if a&(1<<l) != 0 {
				prod.Mul(prod, w[l][1])
			} else {
				prod.Mul(prod, w[l][0])
			}
		}
		res.Add(res, prod)
	}
	return res
}

func randomWeights(rng *rand.Rand, varnum int, normalized bool) Weights {
	w := make(Weights, varnum)
	for k := range w {
		p := big.NewRat(int64(rng.Intn(11)), 10)
		if normalized {
			w[k] = [2]*big.Rat{new(big.Rat).Sub(big.NewRat(1, 1), p), p}
			continue
		}
		// arbitrary (possibly negative) weights, like perturbed weightings
		q := big.NewRat(int64(rng.Intn(21)-10), int64(rng.Intn(5)+1))
		w[k] = [2]*big.Rat{q, p}
	}
	return w
}

func randomFunction(rng *rand.Rand, bdd *BDD) Node {
	varnum := bdd.Varnum()
	res := bdd.True()
	for c := 0; c < 4; c++ {
		clause := bdd.False()
		for l := 0; l < 3; l++ {
			v := rng.Intn(varnum)
			if rng.Intn(2) == 0 {
				clause = bdd.Or(clause, bdd.Ithvar(v))
			} else {
				clause = bdd.Or(clause, bdd.NIthvar(v))
			}
		}
		res = bdd.And(res, clause)
	}
	return res
}

func TestWeightedCount(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 40; i++ {
		bdd, _ := New(6)
		n := randomFunction(rng, bdd)
		w := randomWeights(rng, 6, i%2 == 0)
		expected := bruteforce(bdd, n, w)
		actual := bdd.WeightedCount(n, w)
		if actual == nil || actual.Cmp(expected) != 0 {
			t.Errorf("test %d: expected %s, actual %v (%s)", i, expected.RatString(), actual, bdd.Error())
		}
	}
}

func TestWeightedCountUniform(t *testing.T) {
	bdd, _ := New(5)
	n := bdd.Or(bdd.And(bdd.Ithvar(1), bdd.Ithvar(3)), bdd.NIthvar(4))
	actual := bdd.WeightedCount(n, Uniform(5))
	expected := new(big.Rat).SetFrac(bdd.Satcount(n), big.NewInt(32))
	if actual.Cmp(expected) != 0 {
		t.Errorf("expected %s, actual %s", expected.RatString(), actual.RatString())
	}
	if bdd.WeightedCount(bdd.True(), Uniform(5)).Cmp(big.NewRat(1, 1)) != 0 {
		t.Errorf("weighted count of True under probabilities should be 1")
	}
}

func TestWeightedCountErrors(t *testing.T) {
	bdd, _ := New(3)
	if res := bdd.WeightedCount(bdd.True(), Uniform(2)); res != nil {
		t.Errorf("expected nil result with short weighting, actual %s", res)
	}
	if !errors.Is(bdd.Err(), ErrWeights) {
		t.Errorf("expected ErrWeights, actual %v", bdd.Err())
	}
	w := Uniform(3)
	w[1] = [2]*big.Rat{big.NewRat(-1, 2), big.NewRat(3, 2)}
	if _, err := bdd.NewSampler(bdd.True(), w); !errors.Is(err, ErrWeights) {
		t.Errorf("expected ErrWeights for negative weights, actual %v", err)
	}
	if _, err := bdd.NewSampler(bdd.False(), Uniform(3)); err == nil {
		t.Errorf("expected error when sampling False")
	}
}

// TestSampler checks that the empirical frequency of each satisfying
// assignment stays within a few standard deviations of its exact probability.
func TestSampler(t *testing.T) {
	bdd, _ := New(4)
	// (x0 | x2) & (!x1 | x3)
	n := bdd.And(bdd.Or(bdd.Ithvar(0), bdd.Ithvar(2)), bdd.Or(bdd.NIthvar(1), bdd.Ithvar(3)))
	w := Weights{
		{big.NewRat(7, 10), big.NewRat(3, 10)},
		{big.NewRat(1, 2), big.NewRat(1, 2)},
		{big.NewRat(1, 5), big.NewRat(4, 5)},
		{big.NewRat(9, 10), big.NewRat(1, 10)},
	}
	s, err := bdd.NewSampler(n, w)
	if err != nil {
		t.Fatal(err)
	}
	if s.Total().Cmp(bdd.WeightedCount(n, w)) != 0 {
		t.Fatalf("sampler total differs from weighted count")
	}
	const draws = 20000
	rng := rand.New(rand.NewSource(42))
	freq := make(map[int]int)
	for i := 0; i < draws; i++ {
		a := s.Draw(rng)
		key := 0
		for l, v := range a {
			key |= v << l
		}
		freq[key]++
	}
	for key := 0; key < 16; key++ {
		cube := bdd.True()
		for l := 0; l < 4; l++ {
			cube = bdd.And(cube, literal(bdd, l, (key>>l)&1))
		}
		exact := new(big.Rat).Quo(bdd.WeightedCount(bdd.And(n, cube), w), s.Total())
		p, _ := exact.Float64()
		if p == 0 {
			if freq[key] != 0 {
				t.Errorf("assignment %04b has null probability but was drawn %d times", key, freq[key])
			}
			continue
		}
		sigma := math.Sqrt(p * (1 - p) / draws)
		if got := float64(freq[key]) / draws; math.Abs(got-p) > 5*sigma {
			t.Errorf("assignment %04b: expected frequency %.4f, actual %.4f", key, p, got)
		}
	}
}

// literal returns the BDD of the literal of level that has the given value: the
// variable itself when value is 1, its negation otherwise.
func literal(bdd *BDD, level, value int) Node {
	if value == 1 {
		return bdd.Ithvar(level)
	}
	return bdd.NIthvar(level)
}

func TestCubeCount(t *testing.T) {
	bdd, _ := New(3)
	w := Weights{
		{big.NewRat(3, 4), big.NewRat(1, 4)},
		{big.NewRat(1, 3), big.NewRat(2, 3)},
		{big.NewRat(1, 2), big.NewRat(1, 2)},
	}
	// the cubes over all levels partition True
	total := new(big.Rat)
	for key := 0; key < 8; key++ {
		cube := bdd.True()
		for l := 0; l < 3; l++ {
			cube = bdd.And(cube, literal(bdd, l, (key>>l)&1))
		}
		if c := bdd.Satcount(cube); c.Int64() != 1 {
			t.Errorf("cube %03b: expected one model, actual %s", key, c)
		}
		total.Add(total, bdd.WeightedCount(cube, w))
	}
	if total.Cmp(big.NewRat(1, 1)) != 0 {
		t.Errorf("sum of cube weights: expected 1, actual %s", total.RatString())
	}
}

func TestSamplerDeterministic(t *testing.T) {
	bdd, _ := New(5)
	n := bdd.Or(bdd.Ithvar(0), bdd.And(bdd.Ithvar(2), bdd.NIthvar(4)))
	s, err := bdd.NewSampler(n, Uniform(5))
	if err != nil {
		t.Fatal(err)
	}
	r1 := rand.New(rand.NewSource(3))
	r2 := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		a1, a2 := s.Draw(r1), s.Draw(r2)
		for k := range a1 {
			if a1[k] != a2[k] {
				t.Fatalf("draw %d differs with the same seed: %v != %v", i, a1, a2)
			}
		}
	}
}
