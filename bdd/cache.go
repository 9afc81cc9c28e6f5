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
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// cache is used for caching apply/not/ite results. It is a direct-mapped
// table: a new entry simply overwrites the previous one in its slot.
type cache struct {
	table []cacheData
	buff  [24]byte // scratch buffer used to compute the hash of an entry
}

// cacheStat stores status information about cache usage
type cacheStat struct {
	uniqueAccess int // accesses to the unique node table
	uniqueHit    int // entries actually found in the the unique node table
	uniqueMiss   int // entries not found in the the unique node table
	opHit        int // entries found in the operator caches
	opMiss       int // entries not found in the operator caches
}

// cacheData is a unit of information stored in the Apply and ITE cache
type cacheData struct {
	res int
	a   int
	b   int
	c   int
}

type applycache struct {
	cache          // Cache for apply results
	op    Operator // Current operation during an apply
}

type itecache struct {
	cache // Cache for ITE results
}

func (bc *cache) cacheinit(size int) {
	size = primeGte(size)
	bc.table = make([]cacheData, size)
	bc.cachereset()
}

func (bc *cache) cachereset() {
	for k := range bc.table {
		bc.table[k].a = -1
	}
}

// index returns the slot of triplet (a, b, c) in the table.
func (bc *cache) index(a, b, c int) int {
	binary.LittleEndian.PutUint64(bc.buff[0:8], uint64(a))
	binary.LittleEndian.PutUint64(bc.buff[8:16], uint64(b))
	binary.LittleEndian.PutUint64(bc.buff[16:24], uint64(c))
	return int(xxhash.Sum64(bc.buff[:]) % uint64(len(bc.table)))
}

func (b *BDD) cacheinit(cachesize int) {
	b.applycache.cacheinit(cachesize)
	b.itecache.cacheinit(cachesize)
}

// ************************************************************

// The hash for operation Not(n) is #(n, -1, opnot).

func (b *BDD) matchnot(n int) int {
	entry := b.applycache.table[b.applycache.index(n, -1, int(opnot))]
	if entry.a == n && entry.c == int(opnot) {
		b.opHit++
		return entry.res
	}
	b.opMiss++
	return -1
}

func (b *BDD) setnot(n int, res int) int {
	if res < 0 {
		b.seterror("problem in call to not")
		return -1
	}
	b.applycache.table[b.applycache.index(n, -1, int(opnot))] = cacheData{
		a:   n,
		b:   -1,
		c:   int(opnot),
		res: res,
	}
	return res
}

// The hash for Apply is #(left, right, applycache.op).

func (b *BDD) matchapply(left, right int) int {
	entry := b.applycache.table[b.applycache.index(left, right, int(b.applycache.op))]
	if entry.a == left && entry.b == right && entry.c == int(b.applycache.op) {
		b.opHit++
		return entry.res
	}
	b.opMiss++
	return -1
}

func (b *BDD) setapply(left, right, res int) int {
	if res < 0 {
		b.seterror("problem in call to apply(%d,%d,%s)", left, right, b.applycache.op)
		return -1
	}
	b.applycache.table[b.applycache.index(left, right, int(b.applycache.op))] = cacheData{
		a:   left,
		b:   right,
		c:   int(b.applycache.op),
		res: res,
	}
	return res
}

// The hash for ITE is #(f,g,h).

func (b *BDD) matchite(f, g, h int) int {
	entry := b.itecache.table[b.itecache.index(f, g, h)]
	if entry.a == f && entry.b == g && entry.c == h {
		b.opHit++
		return entry.res
	}
	b.opMiss++
	return -1
}

func (b *BDD) setite(f, g, h, res int) int {
	if res < 0 {
		b.seterror("problem in call to ite")
		return -1
	}
	b.itecache.table[b.itecache.index(f, g, h)] = cacheData{
		a:   f,
		b:   g,
		c:   h,
		res: res,
	}
	return res
}

func (c cacheStat) describe() string {
	res := fmt.Sprintf("Unique Access:  %d\n", c.uniqueAccess)
	res += fmt.Sprintf("Unique Hit:     %d\n", c.uniqueHit)
	res += fmt.Sprintf("Unique Miss:    %d\n", c.uniqueMiss)
	res += fmt.Sprintf("Op Hit:         %d\n", c.opHit)
	res += fmt.Sprintf("Op Miss:        %d", c.opMiss)
	return res
}
