// Copyright 2021. Silvano DAL ZILIO.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package bdd

import (
	"bufio"
	"fmt"
	"io"
	"sort"
)

// Stats returns information about the BDD
func (b *BDD) Stats() string {
	res := fmt.Sprintf("Varnum:     %d\n", b.varnum)
	res += fmt.Sprintf("Allocated:  %d\n", len(b.nodes))
	res += fmt.Sprintf("Produced:   %d\n", b.produced)
	res += "==============\n"
	res += b.cacheStat.describe()
	return res
}

// reachable returns the sorted list of non-constant nodes reachable from n.
func (b *BDD) reachable(n int) []int {
	seen := make(map[int]bool)
	var visit func(int)
	visit = func(k int) {
		if k < 2 || seen[k] {
			return
		}
		seen[k] = true
		visit(b.low(k))
		visit(b.high(k))
	}
	visit(n)
	res := make([]int, 0, len(seen))
	for k := range seen {
		res = append(res, k)
	}
	sort.Ints(res)
	return res
}

// Nodecount returns the number of non-constant nodes reachable from n.
func (b *BDD) Nodecount(n Node) int {
	if err := b.checknode(n); err != nil {
		b.seterror("wrong operand in call to Nodecount (%d)", n)
		return 0
	}
	return len(b.reachable(int(n)))
}

// Print writes a textual representation of the BDD with root n, one node per
// line, in the form "id[level] ? low : high".
func (b *BDD) Print(w io.Writer, n Node) error {
	if b.err != nil {
		return b.err
	}
	if err := b.checknode(n); err != nil {
		return err
	}
	switch n {
	case bddzero:
		_, err := fmt.Fprintln(w, "False")
		return err
	case bddone:
		_, err := fmt.Fprintln(w, "True")
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "node: %d\n", n)
	for _, k := range b.reachable(int(n)) {
		fmt.Fprintf(bw, "%d[%d] ? %d : %d\n", k, b.nodes[k].level, b.nodes[k].low, b.nodes[k].high)
	}
	return bw.Flush()
}

// PrintDot writes a graph-like description of the BDD with root n using the
// DOT format. We do not draw arcs that go to the constant false.
func (b *BDD) PrintDot(w io.Writer, n Node) error {
	if b.err != nil {
		return b.err
	}
	if err := b.checknode(n); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph G {")
	fmt.Fprintln(bw, "1 [shape=box, label=\"1\", style=filled, shape=box, height=0.3, width=0.3];")
	for _, v := range b.reachable(int(n)) {
		fmt.Fprintf(bw, "%d %s\n", v, dotlabel(v, b.nodes[v].level))
		if b.nodes[v].low != 0 {
			fmt.Fprintf(bw, "%d -> %d [style=dotted];\n", v, b.nodes[v].low)
		}
		if b.nodes[v].high != 0 {
			fmt.Fprintf(bw, "%d -> %d [style=filled];\n", v, b.nodes[v].high)
		}
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

func dotlabel(a int, b int32) string {
	return fmt.Sprintf(`[label=<
	<FONT POINT-SIZE="20">%d</FONT>
	<FONT POINT-SIZE="10">[%d]</FONT>
>];`, b, a)
}
