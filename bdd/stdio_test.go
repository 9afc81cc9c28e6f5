// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bdd

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
)

func TestPrint(t *testing.T) {
	bdd, _ := New(3)
	n := bdd.And(bdd.Ithvar(0), bdd.NIthvar(2))
	if c := bdd.Nodecount(n); c != 2 {
		t.Errorf("Nodecount: expected 2, actual %d", c)
	}

	var buf bytes.Buffer
	if err := bdd.Print(&buf, n); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || lines[0] != "node: "+strconv.Itoa(int(n)) {
		t.Errorf("Print: unexpected output %q", buf.String())
	}

	buf.Reset()
	if err := bdd.Print(&buf, bdd.False()); err != nil || buf.String() != "False\n" {
		t.Errorf("Print(False): unexpected output %q (%v)", buf.String(), err)
	}

	buf.Reset()
	if err := bdd.PrintDot(&buf, n); err != nil {
		t.Fatal(err)
	}
	dot := buf.String()
	if !strings.HasPrefix(dot, "digraph G {") || strings.Count(dot, "->") != 2 {
		t.Errorf("PrintDot: unexpected output %q", dot)
	}

	if err := bdd.Print(&buf, Node(99)); err == nil {
		t.Errorf("Print: expected error on illegal node")
	}
}

func TestStats(t *testing.T) {
	bdd, _ := New(4)
	bdd.Or(bdd.And(bdd.Ithvar(0), bdd.Ithvar(1)), bdd.Ithvar(3))
	stats := bdd.Stats()
	for _, s := range []string{"Varnum:     4", "Allocated:", "Op Miss:"} {
		if !strings.Contains(stats, s) {
			t.Errorf("Stats: missing %q in %q", s, stats)
		}
	}
}
