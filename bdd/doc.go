// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

/*
Package bdd defines a concrete type for Binary Decision Diagrams (BDD) used as
a compiled form of Boolean circuits, with support for exact weighted model
counting and exact weighted sampling of satisfying assignments.

Basics

Each BDD has a fixed number of variables, Varnum, declared when it is
initialized (using the function New) and each variable is represented by an
(integer) index in the interval [0..Varnum), called a level. Variable i of a
DIMACS formula lives at level i-1.

Operations return a Node, the integer address of a "vertex" in the node
table, with the convention that 1 (respectively 0) is the address of the
constant function True (respectively False). An invalid Node (negative value)
is returned when an operation fails; the cause is kept in the error status of
the BDD and can be retrieved with Error.

Weights

A weighting gives, for every level, the weight of the negative and positive
literal as exact rationals (see type Weights). Weights do not need to sum to
one: WeightedCount multiplies the contribution of a level skipped along a path
by the sum of its two literal weights, which is the exact semantics of a
weighted model count over all Varnum variables. Sampling additionally requires
non-negative weights.

Memory management

Nodes are never reclaimed. The package is meant for a compile-once,
query-many workload: a circuit is built once, then counted and sampled many
times. Once built, a BDD is only read by WeightedCount and NewSampler, so
several of these calls can run concurrently on the same structure.
*/
package bdd
