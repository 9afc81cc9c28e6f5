// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

// Package cnf reads Boolean formulas in the DIMACS CNF format and compiles
// them into Binary Decision Diagrams.
package cnf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrFormat is returned for malformed DIMACS input.
var ErrFormat = errors.New("malformed DIMACS CNF")

// Formula is a CNF formula: a conjunction of clauses over variables numbered
// from 1 to Varnum. Each clause is a disjunction of non-zero literals.
type Formula struct {
	Varnum  int
	Clauses [][]int
}

// Parse reads a formula in DIMACS format. The header "p cnf V C" must come
// before the first clause; its third token is the number of variables.
// Clauses are terminated by 0 and may span several lines. Lines starting with
// 'c' are comments and a line starting with '%' ends the input.
func Parse(r io.Reader) (*Formula, error) {
	var f *Formula
	declared := 0
	var clause []int
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == 'c' {
			continue
		}
		if line[0] == '%' {
			break
		}
		if line[0] == 'p' {
			if f != nil {
				return nil, fmt.Errorf("%w: line %d: duplicate header", ErrFormat, lineno)
			}
			varnum, clauses, err := parseheader(line, lineno)
			if err != nil {
				return nil, err
			}
			declared = clauses
			f = &Formula{Varnum: varnum, Clauses: make([][]int, 0, declared)}
			continue
		}
		if f == nil {
			return nil, fmt.Errorf("%w: line %d: clause before header", ErrFormat, lineno)
		}
		for _, tok := range strings.Fields(line) {
			lit, err := strconv.Atoi(tok)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: bad literal %q", ErrFormat, lineno, tok)
			}
			if lit == 0 {
				f.Clauses = append(f.Clauses, clause)
				clause = nil
				continue
			}
			if v := abs(lit); v > f.Varnum {
				return nil, fmt.Errorf("%w: line %d: variable %d out of range [1..%d]", ErrFormat, lineno, v, f.Varnum)
			}
			clause = append(clause, lit)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("%w: missing header", ErrFormat)
	}
	if len(clause) > 0 {
		// tolerate a last clause without its terminating 0
		f.Clauses = append(f.Clauses, clause)
	}
	if len(f.Clauses) != declared {
		return nil, fmt.Errorf("%w: %d clauses declared, %d found", ErrFormat, declared, len(f.Clauses))
	}
	return f, nil
}

// parseheader reads a "p cnf V C" line.
func parseheader(line string, lineno int) (varnum, clauses int, err error) {
	fields := strings.Fields(line)
	if len(fields) != 4 || fields[0] != "p" || fields[1] != "cnf" {
		return 0, 0, fmt.Errorf("%w: line %d: bad header %q", ErrFormat, lineno, line)
	}
	varnum, err = strconv.Atoi(fields[2])
	if err != nil || varnum < 0 {
		return 0, 0, fmt.Errorf("%w: line %d: bad number of variables %q", ErrFormat, lineno, fields[2])
	}
	clauses, err = strconv.Atoi(fields[3])
	if err != nil || clauses < 0 {
		return 0, 0, fmt.Errorf("%w: line %d: bad number of clauses %q", ErrFormat, lineno, fields[3])
	}
	return varnum, clauses, nil
}

// ReadHeader reads the input up to the "p cnf V C" header and returns V and C,
// without looking at the clauses.
func ReadHeader(r io.Reader) (varnum, clauses int, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == 'c' {
			continue
		}
		if line[0] == '%' {
			break
		}
		if line[0] != 'p' {
			return 0, 0, fmt.Errorf("%w: line %d: clause before header", ErrFormat, lineno)
		}
		return parseheader(line, lineno)
	}
	if err := scanner.Err(); err != nil {
		return 0, 0, err
	}
	return 0, 0, fmt.Errorf("%w: missing header", ErrFormat)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
