// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package teq

import (
	"fmt"
	"math"
	"math/big"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Params are the parameters of a test. Epsilon and Eta are only used in
// tolerant mode.
type Params struct {
	Epsilon float64 `yaml:"epsilon" validate:"gte=0,lt=1"` // closeness
	Eta     float64 `yaml:"eta" validate:"gt=0,lte=1"`     // farness
	Delta   float64 `yaml:"delta" validate:"gt=0,lt=1"`    // confidence
}

// DefaultParams returns epsilon = 0.01, eta = 0.2 and delta = 0.01.
func DefaultParams() Params {
	return Params{Epsilon: 0.01, Eta: 0.2, Delta: 0.01}
}

// Validate checks that the parameters are in range and that eta is strictly
// larger than epsilon.
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidParameter, err)
	}
	if p.Eta <= p.Epsilon {
		return fmt.Errorf("%w: eta (%g) must be larger than epsilon (%g)", ErrInvalidParameter, p.Eta, p.Epsilon)
	}
	return nil
}

// validateDelta only checks Delta, which is the only parameter of the exact
// test.
func (p Params) validateDelta() error {
	if err := validate.StructPartial(p, "Delta"); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidParameter, err)
	}
	return nil
}

func rat(f float64) *big.Rat {
	return new(big.Rat).SetFloat64(f)
}

// Gamma returns (eta - epsilon)/2, computed exactly from the binary values of
// the parameters.
func (p Params) Gamma() *big.Rat {
	res := new(big.Rat).Sub(rat(p.Eta), rat(p.Epsilon))
	return res.Quo(res, big.NewRat(2, 1))
}

// Threshold returns epsilon + gamma, that is (epsilon + eta)/2.
func (p Params) Threshold() *big.Rat {
	return new(big.Rat).Add(rat(p.Epsilon), p.Gamma())
}

// SampleCount returns the number of samples needed by the tolerant test.
func (p Params) SampleCount() (int, error) {
	return SampleCount(p.Epsilon, p.Eta, p.Delta)
}

// SampleCount returns ceil(ln(2/delta) / (2 gamma^2)), with gamma equal to
// (eta - epsilon)/2. This is the number of samples needed for the average of
// the deviations to be within gamma of its expectation with probability at
// least 1 - delta.
func SampleCount(epsilon, eta, delta float64) (int, error) {
	if err := (Params{Epsilon: epsilon, Eta: eta, Delta: delta}).Validate(); err != nil {
		return 0, err
	}
	gamma := (eta - epsilon) / 2
	n := math.Ceil(math.Log(2/delta) / (2 * gamma * gamma))
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: too many samples (%g)", ErrInvalidParameter, n)
	}
	return int(n), nil
}

// Modulus returns ceil(varnum / delta), the size of the range of the random
// scalars used by the exact test. The value is computed exactly from the
// binary value of delta.
func Modulus(varnum int, delta float64) (*big.Int, error) {
	if err := (Params{Delta: delta}).validateDelta(); err != nil {
		return nil, err
	}
	if varnum < 0 {
		return nil, fmt.Errorf("%w: negative number of variables (%d)", ErrInvalidParameter, varnum)
	}
	q := new(big.Rat).Quo(big.NewRat(int64(varnum), 1), rat(delta))
	m, r := new(big.Int).QuoRem(q.Num(), q.Denom(), new(big.Int))
	if r.Sign() > 0 {
		m.Add(m, big.NewInt(1))
	}
	return m, nil
}
