// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package teq

import (
	"errors"
	"fmt"
)

// Errors returned by the testers. They are wrapped with additional context, so
// callers should use errors.Is to test for them.
var (
	// ErrInputFormat is returned for a malformed weight or circuit file.
	ErrInputFormat = errors.New("input format error")
	// ErrSupportMismatch is returned when the two weight functions are not
	// defined over the same set of variables.
	ErrSupportMismatch = errors.New("support is not same")
	// ErrDomainMismatch is returned when the two circuits are not defined over
	// the same number of variables.
	ErrDomainMismatch = errors.New("not defined over same set of variables")
	// ErrInvalidParameter is returned for out of range parameters.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrDivisionByZero is returned when a circuit has a null weighted count.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrOracle is returned when the oracle fails or breaks its contract.
	ErrOracle = errors.New("oracle error")
	// ErrCompilation is returned when a circuit cannot be compiled.
	ErrCompilation = fmt.Errorf("%w: compilation failed", ErrOracle)
)

// rejects reports whether err is one of the errors that lead to an immediate
// Reject instead of aborting the run.
func rejects(err error) bool {
	return errors.Is(err, ErrSupportMismatch) ||
		errors.Is(err, ErrDomainMismatch) ||
		errors.Is(err, ErrDivisionByZero)
}
