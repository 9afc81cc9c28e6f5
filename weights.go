// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package teq

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"os"
	"sort"
	"strconv"
	"strings"
)

// half is the weight of both literals of a variable absent from a weight
// function.
var half = big.NewRat(1, 2)

var one = big.NewRat(1, 1)

// Weights is a weight function: it associates to a variable the probability of
// its positive literal. The zero value is the weight function with an empty
// support. Weights are immutable.
type Weights struct {
	probs map[int]*big.Rat
}

// NewWeights returns the weight function defined by m, which maps positive
// variable ids to probabilities in [0,1]. The map is copied.
func NewWeights(m map[int]*big.Rat) (Weights, error) {
	probs := make(map[int]*big.Rat, len(m))
	for v, p := range m {
		if v <= 0 {
			return Weights{}, fmt.Errorf("%w: bad variable id %d", ErrInputFormat, v)
		}
		if p == nil || p.Sign() < 0 || p.Cmp(one) > 0 {
			return Weights{}, fmt.Errorf("%w: weight of variable %d not in [0,1]", ErrInputFormat, v)
		}
		probs[v] = new(big.Rat).Set(p)
	}
	return Weights{probs: probs}, nil
}

// Len returns the number of variables in the support of w.
func (w Weights) Len() int {
	return len(w.probs)
}

// Vars returns the support of w in increasing order.
func (w Weights) Vars() []int {
	res := make([]int, 0, len(w.probs))
	for v := range w.probs {
		res = append(res, v)
	}
	sort.Ints(res)
	return res
}

// Has reports whether variable v is in the support of w.
func (w Weights) Has(v int) bool {
	_, ok := w.probs[v]
	return ok
}

// Lookup returns the weight of the positive literal of v, or 1/2 when v is not
// in the support of w.
func (w Weights) Lookup(v int) *big.Rat {
	if p, ok := w.probs[v]; ok {
		return new(big.Rat).Set(p)
	}
	return new(big.Rat).Set(half)
}

// Literal returns the weight of literal l: Lookup(l) if l is positive, and
// 1 - Lookup(-l) otherwise.
func (w Weights) Literal(l int) *big.Rat {
	if l > 0 {
		return w.Lookup(l)
	}
	return new(big.Rat).Sub(one, w.Lookup(-l))
}

// ParseWeights reads a weight function. Each line is either "v p", "w v p 0"
// or "c p weight v p 0", where v is a literal and p a decimal or a fraction,
// such as 0.25 or 1/3. A negative literal -v sets the weight of v to 1 - p.
// Empty lines and lines starting with 'c' or '#' are comments.
func ParseWeights(r io.Reader) (Weights, error) {
	probs := make(map[int]*big.Rat)
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch {
		case len(fields) >= 3 && fields[0] == "c" && fields[1] == "p" && fields[2] == "weight":
			fields = fields[3:]
		case strings.HasPrefix(fields[0], "c"):
			continue
		case fields[0] == "w":
			fields = fields[1:]
		}
		if len(fields) == 3 && fields[2] == "0" {
			fields = fields[:2]
		}
		if len(fields) != 2 {
			return Weights{}, fmt.Errorf("%w: line %d: expected a literal and a weight", ErrInputFormat, lineno)
		}
		lit, err := strconv.Atoi(fields[0])
		if err != nil || lit == 0 {
			return Weights{}, fmt.Errorf("%w: line %d: bad literal %q", ErrInputFormat, lineno, fields[0])
		}
		p, ok := new(big.Rat).SetString(fields[1])
		if !ok || p.Sign() < 0 || p.Cmp(one) > 0 {
			return Weights{}, fmt.Errorf("%w: line %d: weight %q not in [0,1]", ErrInputFormat, lineno, fields[1])
		}
		v := lit
		if lit < 0 {
			v = -lit
			p.Sub(one, p)
		}
		if old, ok := probs[v]; ok && old.Cmp(p) != 0 {
			return Weights{}, fmt.Errorf("%w: line %d: conflicting weights for variable %d", ErrInputFormat, lineno, v)
		}
		probs[v] = p
	}
	if err := scanner.Err(); err != nil {
		return Weights{}, err
	}
	return Weights{probs: probs}, nil
}

func readWeights(path string) (Weights, error) {
	f, err := os.Open(path)
	if err != nil {
		return Weights{}, err
	}
	defer f.Close()
	w, err := ParseWeights(f)
	if err != nil {
		return Weights{}, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

// LoadWeights reads the weight functions of the two circuits. When there is
// only one path, the same weight function is used for both.
func LoadWeights(paths ...string) (w1, w2 Weights, err error) {
	if len(paths) == 0 || len(paths) > 2 {
		return Weights{}, Weights{}, fmt.Errorf("%w: expected one or two weight files, got %d", ErrInvalidParameter, len(paths))
	}
	if w1, err = readWeights(paths[0]); err != nil {
		return Weights{}, Weights{}, err
	}
	if len(paths) == 1 {
		return w1, w1, nil
	}
	if w2, err = readWeights(paths[1]); err != nil {
		return Weights{}, Weights{}, err
	}
	return w1, w2, nil
}

// ValidateSupport returns ErrSupportMismatch if w1 and w2 are not defined over
// the same variables.
func ValidateSupport(w1, w2 Weights) error {
	if w1.Len() != w2.Len() {
		return fmt.Errorf("%w: %d and %d variables", ErrSupportMismatch, w1.Len(), w2.Len())
	}
	for v := range w1.probs {
		if !w2.Has(v) {
			return fmt.Errorf("%w: variable %d only in first weight function", ErrSupportMismatch, v)
		}
	}
	return nil
}
