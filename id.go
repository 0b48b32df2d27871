package sway

import (
	"fmt"
	"math"
	"sync/atomic"
)

// ID identifies a node, property or animation across the UI/render boundary.
// Owner names the client that created the object; Counter is unique within
// that owner. The composite is never treated as an opaque scalar except on
// the wire (see Uint64).
type ID struct {
	Owner   uint32
	Counter uint32
}

// FallbackNodeID is the root node every render context and client creates.
// Animations of a removed node are moved here so they can finish normally.
var FallbackNodeID = ID{Owner: 0, Counter: 1}

// IDFromUint64 splits a wire id into its owner and counter halves.
func IDFromUint64(v uint64) ID {
	return ID{Owner: uint32(v >> 32), Counter: uint32(v)}
}

// Uint64 packs the id as owner<<32 | counter.
func (id ID) Uint64() uint64 {
	return uint64(id.Owner)<<32 | uint64(id.Counter)
}

// Route returns the owner tag callbacks for this id are delivered to.
func (id ID) Route() uint32 {
	return id.Owner
}

// IsZero reports whether id is the zero id ("no object").
func (id ID) IsZero() bool {
	return id.Owner == 0 && id.Counter == 0
}

// Less orders ids by owner, then by counter.
func (id ID) Less(other ID) bool {
	if id.Owner != other.Owner {
		return id.Owner < other.Owner
	}
	return id.Counter < other.Counter
}

func (id ID) String() string {
	return fmt.Sprintf("%d:%d", id.Owner, id.Counter)
}

// IDGenerator hands out ids for one owner. Safe for concurrent use.
type IDGenerator struct {
	owner   uint32
	counter atomic.Uint32
}

// NewIDGenerator returns a generator whose first id is {owner, 1}.
func NewIDGenerator(owner uint32) *IDGenerator {
	return &IDGenerator{owner: owner}
}

// Owner returns the owner tag stamped on every generated id.
func (g *IDGenerator) Owner() uint32 {
	return g.owner
}

// Next returns a fresh id. When the counter space is exhausted the failure
// is logged and numbering restarts at 1.
func (g *IDGenerator) Next() ID {
	for {
		cur := g.counter.Load()
		next := cur + 1
		if cur == math.MaxUint32 {
			logger.Error("id space exhausted, restarting counter", "owner", g.owner)
			next = 1
		}
		if g.counter.CompareAndSwap(cur, next) {
			return ID{Owner: g.owner, Counter: next}
		}
	}
}

// reset is used by tests to move the counter close to overflow.
func (g *IDGenerator) reset(v uint32) {
	g.counter.Store(v)
}
