// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

/*
Package teq tests whether two weighted Boolean circuits define the same
distribution over their satisfying assignments.

Weights

A weight function associates to some variables the probability of their
positive literal; the weight of the negative literal is one minus this value.
Weights are exact rationals and every computation that leads to a verdict is
done with math/big. Variables absent from a weight function have weight 1/2.

Tolerant mode

Given a closeness parameter epsilon, a farness parameter eta and a confidence
delta, the tolerant tester draws N = ceil(ln(2/delta)/(2 gamma^2)) samples
from the first circuit, where gamma = (eta - epsilon)/2, and estimates the
one-sided distance between the two distributions with the ratio of the
densities of each sample. It accepts when the estimate is below epsilon +
gamma. It accepts with probability at least 1 - delta if the distributions
are epsilon-close and rejects with probability at least 1 - delta if they are
eta-far.

Exact mode

The exact tester multiplies the weights of each variable by a random scalar
S drawn in [1, m], with m = ceil(n/delta), giving the positive literal weight
p.S and the negative literal weight (1-p)(1-S), and compares the ratio of
perturbed to original weighted counts of the two circuits. Equal functions
are always accepted; different ones are accepted with probability at most
delta.

Oracle

Compiling circuits, computing weighted counts and drawing weighted samples is
delegated to an Oracle. Package oracle provides one for DIMACS CNF files and
d-DNNF circuits.
*/
package teq
