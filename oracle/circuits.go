// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package oracle

import (
	"math/big"
	"math/rand"

	"github.com/dalzilio/teq"
	"github.com/dalzilio/teq/bdd"
	"github.com/dalzilio/teq/nnf"
)

// circuit is implemented by the circuits returned by Compile.
type circuit interface {
	teq.Circuit
	digest() uint64
	// levels is the number of weights expected by count and sampler. It can be
	// larger than Varnum.
	levels() int
	// size is the number of nodes of the circuit.
	size() int
	count(w [][2]*big.Rat) (*big.Rat, error)
	sampler(w [][2]*big.Rat) (drawer, error)
}

// drawer returns a model where entry k is 1 when variable k+1 is true.
type drawer interface {
	Draw(rng *rand.Rand) []int
}

// bddCircuit is a CNF formula compiled into a BDD. Variable i of the formula is
// at level i-1.
type bddCircuit struct {
	name   string
	hash   uint64
	varnum int
	b      *bdd.BDD
	root   bdd.Node
}

func (c *bddCircuit) Name() string   { return c.name }
func (c *bddCircuit) Varnum() int    { return c.varnum }
func (c *bddCircuit) digest() uint64 { return c.hash }
func (c *bddCircuit) levels() int    { return c.b.Varnum() }
func (c *bddCircuit) size() int      { return c.b.Nodecount(c.root) }

func (c *bddCircuit) count(w [][2]*big.Rat) (*big.Rat, error) {
	res := c.b.WeightedCount(c.root, bdd.Weights(w))
	if res == nil {
		return nil, c.b.Err()
	}
	return res, nil
}

func (c *bddCircuit) sampler(w [][2]*big.Rat) (drawer, error) {
	return c.b.NewSampler(c.root, bdd.Weights(w))
}

// nnfCircuit is a d-DNNF circuit.
type nnfCircuit struct {
	name string
	hash uint64
	c    *nnf.Circuit
}

func (c *nnfCircuit) Name() string   { return c.name }
func (c *nnfCircuit) Varnum() int    { return c.c.Varnum() }
func (c *nnfCircuit) digest() uint64 { return c.hash }
func (c *nnfCircuit) levels() int    { return c.c.Varnum() }

func (c *nnfCircuit) size() int {
	nodes, _ := c.c.Size()
	return nodes
}

func (c *nnfCircuit) count(w [][2]*big.Rat) (*big.Rat, error) {
	return c.c.Count(nnf.Weights(w))
}

func (c *nnfCircuit) sampler(w [][2]*big.Rat) (drawer, error) {
	return c.c.NewSampler(nnf.Weights(w))
}
