// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bdd

import (
	"fmt"
	"math"
)

// _MAXVAR is the maximal number of levels in the BDD.
const _MAXVAR int = 0x1FFFFF

// _DEFAULTCACHESIZE is the default number of entries in each operation cache.
const _DEFAULTCACHESIZE int = 10000

// Node is a reference to an element of a BDD. It represents the atomic unit of
// interactions and computations within a BDD.
type Node int

const (
	invalid Node = -1
	bddzero Node = 0
	bddone  Node = 1
)

// BDD implements a Binary Decision Diagram using the runtime hashmap for the
// unicity table. We hash a triplet (level, low, high) to the index of the
// corresponding node in the nodes table.
type BDD struct {
	varnum   int32           // number of BDD variables
	nodes    []huddnode      // List of all the BDD nodes. Constants are always kept at index 0 and 1
	unique   map[nodekey]int // Unicity table, used to associate each triplet to a single node
	varset   [][2]int        // We have a pair for each variable for its positive and negative occurrence
	produced int             // Total number of new nodes ever produced
	applycache               // Cache for apply and not results
	itecache                 // Cache for ITE results
	cacheStat                // Information about the caches
	err      error           // Error status to help chain operations
	configs                  // Configurable parameters
}

type huddnode struct {
	level int32 // Order of the variable in the BDD
	low   int   // Reference to the false branch
	high  int   // Reference to the true branch
}

type nodekey struct {
	level int32
	low   int
	high  int
}

// New returns a new BDD with varnum variables. Options, such as Nodesize or
// Cachesize, can be used to tune the size of the initial tables.
func New(varnum int, options ...Option) (*BDD, error) {
	if (varnum < 1) || (varnum > _MAXVAR) {
		return nil, fmt.Errorf("bad number of variable (%d)", varnum)
	}
	config := makeconfigs(varnum)
	for _, f := range options {
		f(config)
	}
	b := &BDD{configs: *config}
	b.varnum = int32(varnum)
	b.nodes = make([]huddnode, 2, b.nodesize)
	b.unique = make(map[nodekey]int, b.nodesize)
	// creating bddzero and bddone. We do not add them to the unique table.
	// Constants always have the highest level.
	b.nodes[0] = huddnode{level: b.varnum, low: 0, high: 0}
	b.nodes[1] = huddnode{level: b.varnum, low: 1, high: 1}
	b.varset = make([][2]int, varnum)
	for k := int32(0); k < b.varnum; k++ {
		v0 := b.makenode(k, 0, 1)
		if v0 < 0 {
			return nil, fmt.Errorf("cannot allocate new variable %d: %w", k, b.err)
		}
		v1 := b.makenode(k, 1, 0)
		if v1 < 0 {
			return nil, fmt.Errorf("cannot allocate new variable %d: %w", k, b.err)
		}
		b.varset[k] = [2]int{v0, v1}
	}
	b.cacheinit(b.cachesize)
	return b, nil
}

// makenode returns the index of the node (level, low, high), creating it if
// needed. It returns -1 and sets the error status when the table is full.
func (b *BDD) makenode(level int32, low int, high int) int {
	b.uniqueAccess++
	// check whether children are equal, in which case we can skip the node
	if low == high {
		return low
	}
	key := nodekey{level, low, high}
	if res, ok := b.unique[key]; ok {
		b.uniqueHit++
		return res
	}
	b.uniqueMiss++
	if b.maxnodesize > 0 && len(b.nodes) >= b.maxnodesize {
		b.seterror("%w (%d nodes)", ErrMemory, len(b.nodes))
		return -1
	}
	if len(b.nodes) >= math.MaxInt32 {
		b.seterror("%w (%d nodes)", ErrMemory, len(b.nodes))
		return -1
	}
	res := len(b.nodes)
	b.nodes = append(b.nodes, huddnode{level, low, high})
	b.unique[key] = res
	b.produced++
	return res
}

func (b *BDD) level(n int) int32 {
	return b.nodes[n].level
}

func (b *BDD) low(n int) int {
	return b.nodes[n].low
}

func (b *BDD) high(n int) int {
	return b.nodes[n].high
}

// Varnum returns the number of defined variables.
func (b *BDD) Varnum() int {
	return int(b.varnum)
}

// True returns the constant true BDD
func (b *BDD) True() Node {
	return bddone
}

// False returns the constant false BDD
func (b *BDD) False() Node {
	return bddzero
}

// Ithvar returns a BDD representing the i'th variable on success, otherwise we
// set the error status in the BDD and returns an invalid Node. The requested
// variable must be in the range [0..Varnum).
func (b *BDD) Ithvar(i int) Node {
	if (i < 0) || (int32(i) >= b.varnum) {
		return b.seterror("unknown variable used (%d) in call to ithvar", i)
	}
	return Node(b.varset[i][0])
}

// NIthvar returns a bdd representing the negation of the i'th variable on
// success. See *ithvar* for further info.
func (b *BDD) NIthvar(i int) Node {
	if (i < 0) || (int32(i) >= b.varnum) {
		return b.seterror("unknown variable used (%d) in call to nithvar", i)
	}
	return Node(b.varset[i][1])
}

// Label returns the variable (level) of node n. We set the BDD to its error
// state and return -1 if we try to access a constant node.
func (b *BDD) Label(n Node) int {
	if err := b.checknode(n); err != nil {
		b.seterror("%s in call to Label", err)
		return -1
	}
	if n < 2 {
		b.seterror("try to access label of constant node")
		return -1
	}
	return int(b.nodes[n].level)
}

// Equal tests equivalence between nodes. Since the BDD is reduced and ordered,
// two nodes denote the same function exactly when they have the same address.
func (b *BDD) Equal(n1, n2 Node) bool {
	if n1 < 0 || n2 < 0 {
		return false
	}
	return n1 == n2
}
