// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

// Package nnf reads circuits in deterministic decomposable negation normal
// form (d-DNNF), in the format produced by the c2d compiler, and computes
// weighted model counts and weighted random models directly on the circuit.
//
// A file starts with a header "nnf v e n", where v is the number of nodes, e
// the number of edges and n the number of variables. Each of the following v
// lines declares one node:
//
//	L l          a literal l, with 0 < |l| <= n
//	A c i1 .. ic a conjunction of c nodes (A 0 is the constant true)
//	O j c i1 i2  a disjunction of c nodes deciding on variable j, or 0 when
//	             unknown (O 0 0 is the constant false)
//
// Nodes are numbered from 0 in order of declaration, children must refer to
// nodes declared before, and the last node is the root of the circuit.
//
// We do not check that the circuit is deterministic and decomposable. Counts
// and samples are meaningless on a circuit that is not.
package nnf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// ErrFormat is returned for malformed circuit files.
var ErrFormat = errors.New("malformed nnf")

type kind uint8

const (
	literal kind = iota
	and
	or
)

type node struct {
	kind     kind
	lit      int            // literal of a leaf
	decision int            // decision variable of an or-node (0 if unknown)
	children []int          // children of an and/or node
	vars     *bitset.BitSet // variables occurring below the node
}

// Circuit is a d-DNNF circuit over variables 1..Varnum. A Circuit is never
// modified after Parse, so it can be used concurrently.
type Circuit struct {
	varnum int
	edges  int
	nodes  []node
}

// Parse reads a circuit in c2d format. Lines starting with 'c' are comments.
func Parse(r io.Reader) (*Circuit, error) {
	var c *Circuit
	declared := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || fields[0] == "c" {
			continue
		}
		if c == nil {
			h, err := parseheader(fields, lineno)
			if err != nil {
				return nil, err
			}
			declared = h.Nodes
			c = &Circuit{varnum: h.Varnum, nodes: make([]node, 0, declared)}
			continue
		}
		if len(c.nodes) == declared {
			return nil, fmt.Errorf("%w: line %d: more than %d nodes", ErrFormat, lineno, declared)
		}
		n, err := c.parsenode(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %s", ErrFormat, lineno, err)
		}
		c.nodes = append(c.nodes, n)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: missing header", ErrFormat)
	}
	if len(c.nodes) != declared {
		return nil, fmt.Errorf("%w: %d nodes declared, %d found", ErrFormat, declared, len(c.nodes))
	}
	return c, nil
}

// Header is the content of the "nnf v e n" line of a circuit file.
type Header struct {
	Nodes  int
	Edges  int
	Varnum int
}

func parseheader(fields []string, lineno int) (Header, error) {
	if fields[0] != "nnf" || len(fields) != 4 {
		return Header{}, fmt.Errorf("%w: line %d: expected header \"nnf v e n\"", ErrFormat, lineno)
	}
	hd, err := atois(fields[1:])
	if err != nil || hd[0] < 1 || hd[1] < 0 || hd[2] < 0 {
		return Header{}, fmt.Errorf("%w: line %d: bad header %q", ErrFormat, lineno, strings.Join(fields, " "))
	}
	return Header{Nodes: hd[0], Edges: hd[1], Varnum: hd[2]}, nil
}

// ReadHeader reads the input up to the header line and returns it, without
// looking at the nodes.
func ReadHeader(r io.Reader) (Header, error) {
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || fields[0] == "c" {
			continue
		}
		return parseheader(fields, lineno)
	}
	if err := scanner.Err(); err != nil {
		return Header{}, err
	}
	return Header{}, fmt.Errorf("%w: missing header", ErrFormat)
}

func (c *Circuit) parsenode(fields []string) (node, error) {
	args, err := atois(fields[1:])
	if err != nil {
		return node{}, err
	}
	n := node{vars: bitset.New(uint(c.varnum + 1))}
	switch fields[0] {
	case "L":
		if len(args) != 1 {
			return node{}, fmt.Errorf("expected one literal")
		}
		v := args[0]
		if v < 0 {
			v = -v
		}
		if v == 0 || v > c.varnum {
			return node{}, fmt.Errorf("variable %d out of range [1..%d]", v, c.varnum)
		}
		n.kind = literal
		n.lit = args[0]
		n.vars.Set(uint(v))
		return n, nil
	case "A":
		n.kind = and
	case "O":
		if len(args) < 1 {
			return node{}, fmt.Errorf("missing decision variable")
		}
		n.kind = or
		n.decision = args[0]
		if n.decision < 0 || n.decision > c.varnum {
			return node{}, fmt.Errorf("decision variable %d out of range", n.decision)
		}
		args = args[1:]
	default:
		return node{}, fmt.Errorf("unknown node type %q", fields[0])
	}
	if len(args) < 1 || args[0] != len(args)-1 {
		return node{}, fmt.Errorf("wrong number of children")
	}
	n.children = args[1:]
	for _, i := range n.children {
		if i < 0 || i >= len(c.nodes) {
			return node{}, fmt.Errorf("child %d is not a previous node", i)
		}
		n.vars.InPlaceUnion(c.nodes[i].vars)
	}
	c.edges += len(n.children)
	return n, nil
}

func atois(fields []string) ([]int, error) {
	res := make([]int, len(fields))
	for k, s := range fields {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("bad integer %q", s)
		}
		res[k] = v
	}
	return res, nil
}

// Varnum returns the number of variables declared in the header.
func (c *Circuit) Varnum() int {
	return c.varnum
}

// Size returns the number of nodes and edges of the circuit.
func (c *Circuit) Size() (nodes, edges int) {
	return len(c.nodes), c.edges
}

func (c *Circuit) root() int {
	return len(c.nodes) - 1
}

// Eval returns the value of the circuit on an assignment, given as a slice of
// length Varnum where entry k is 1 when variable k+1 is true.
func (c *Circuit) Eval(assignment []int) bool {
	val := make([]bool, len(c.nodes))
	for k, n := range c.nodes {
		switch n.kind {
		case literal:
			v := n.lit
			if v < 0 {
				v = -v
			}
			val[k] = (assignment[v-1] == 1) == (n.lit > 0)
		case and:
			val[k] = true
			for _, i := range n.children {
				if !val[i] {
					val[k] = false
					break
				}
			}
		case or:
			for _, i := range n.children {
				if val[i] {
					val[k] = true
					break
				}
			}
		}
	}
	return val[c.root()]
}
