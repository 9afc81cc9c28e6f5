// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bdd

// Operator describe the potential (binary) operations available on an Apply.
type Operator int

const (
	OPand    Operator = iota // Boolean conjunction
	OPxor                    // Exclusive or
	OPor                     // Disjunction
	OPnand                   // Negation of and
	OPnor                    // Negation of or
	OPimp                    // Implication
	OPbiimp                  // Equivalence
	OPdiff                   // Difference
	OPless                   // Set difference
	OPinvimp                 // Reverse implication
	opnot                    // Negation. Should not be used in apply, but used in caches
)

var opnames = [11]string{
	OPand:    "and",
	OPxor:    "xor",
	OPor:     "or",
	OPnand:   "nand",
	OPnor:    "nor",
	OPimp:    "imp",
	OPbiimp:  "biimp",
	OPdiff:   "diff",
	OPless:   "less",
	OPinvimp: "invimp",
	opnot:    "not",
}

func (op Operator) String() string {
	if op < 0 || int(op) >= len(opnames) {
		return "unknown"
	}
	return opnames[op]
}

// opres gives the truth table of each binary operator, indexed by the values
// of the left and right operands.
var opres = [10][2][2]Node{
	//                      00    01               10    11
	OPand:    {0: [2]Node{0: 0, 1: 0}, 1: [2]Node{0: 0, 1: 1}}, // 0001
	OPxor:    {0: [2]Node{0: 0, 1: 1}, 1: [2]Node{0: 1, 1: 0}}, // 0110
	OPor:     {0: [2]Node{0: 0, 1: 1}, 1: [2]Node{0: 1, 1: 1}}, // 0111
	OPnand:   {0: [2]Node{0: 1, 1: 1}, 1: [2]Node{0: 1, 1: 0}}, // 1110
	OPnor:    {0: [2]Node{0: 1, 1: 0}, 1: [2]Node{0: 0, 1: 0}}, // 1000
	OPimp:    {0: [2]Node{0: 1, 1: 1}, 1: [2]Node{0: 0, 1: 1}}, // 1101
	OPbiimp:  {0: [2]Node{0: 1, 1: 0}, 1: [2]Node{0: 0, 1: 1}}, // 1001
	OPdiff:   {0: [2]Node{0: 0, 1: 0}, 1: [2]Node{0: 1, 1: 0}}, // 0010
	OPless:   {0: [2]Node{0: 0, 1: 1}, 1: [2]Node{0: 0, 1: 0}}, // 0100
	OPinvimp: {0: [2]Node{0: 1, 1: 0}, 1: [2]Node{0: 1, 1: 1}}, // 1011
}
