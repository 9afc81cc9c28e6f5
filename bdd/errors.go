// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bdd

import (
	"errors"
	"fmt"
)

// ErrMemory is the error status set when the node table would grow above the
// limit given by Maxnodesize.
var ErrMemory = errors.New("unable to allocate new node in BDD")

// ErrWeights is returned when a weighting does not cover every level of the
// BDD or, for sampling, contains a negative weight.
var ErrWeights = errors.New("bad weights")

// Error returns the error status of the BDD. We return an empty string if
// there are no errors.
func (b *BDD) Error() string {
	if b.err == nil {
		return ""
	}
	return b.err.Error()
}

// Errored returns true if there was an error during a computation.
func (b *BDD) Errored() bool {
	return b.err != nil
}

// Err returns the error status of the BDD as an error value, or nil.
func (b *BDD) Err() error {
	return b.err
}

// seterror chains a new error onto the error status and returns an invalid
// node, so that it can be used directly in a return statement.
func (b *BDD) seterror(format string, a ...interface{}) Node {
	if b.err != nil {
		b.err = fmt.Errorf(format+"; %w", append(a, b.err)...)
		return invalid
	}
	b.err = fmt.Errorf(format, a...)
	return invalid
}

// checknode returns an error if n is not the address of an active node.
func (b *BDD) checknode(n Node) error {
	if n < 0 || int(n) >= len(b.nodes) {
		return fmt.Errorf("illegal node address %d", n)
	}
	return nil
}
