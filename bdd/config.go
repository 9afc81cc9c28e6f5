// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bdd

// configs is used to store the values of different parameters of the BDD
type configs struct {
	varnum      int // number of BDD variables
	nodesize    int // initial number of nodes in the table
	cachesize   int // number of entries in each operation cache
	maxnodesize int // Maximum total number of nodes (0 if no limit)
}

// Option is a configuration option (function) used as a parameter in New.
type Option func(*configs)

func makeconfigs(varnum int) *configs {
	c := &configs{varnum: varnum}
	// we build enough nodes to include all the variables in varset
	c.nodesize = 2*varnum + 2
	c.cachesize = _DEFAULTCACHESIZE
	return c
}

// Nodesize is a configuration option (function). Used as a parameter in New it
// sets a preferred initial size for the node table. The size of the BDD can
// increase during computation. By default we create a table large enough to
// include the two constants and the "variables" used in the call to Ithvar and
// NIthvar.
func Nodesize(size int) Option {
	return func(c *configs) {
		if size >= 2*c.varnum+2 {
			c.nodesize = size
		}
	}
}

// Maxnodesize is a configuration option (function). Used as a parameter in New
// it sets a limit to the number of nodes in the BDD. An operation trying to
// raise the number of nodes above this limit will set the error status and
// return an invalid Node. The default value (0) means that there is no limit.
func Maxnodesize(size int) Option {
	return func(c *configs) {
		c.maxnodesize = size
	}
}

// Cachesize is a configuration option (function). Used as a parameter in New it
// sets the number of entries in the operation caches. The value is rounded up
// to a prime number. The default is 10 007 entries.
func Cachesize(size int) Option {
	return func(c *configs) {
		if size > 0 {
			c.cachesize = size
		}
	}
}
