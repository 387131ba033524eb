package rws

import (
	"strconv"
	"sync/atomic"
)

// Ref is a handle to a registered listener. The zero Ref never names a listener.
type Ref uint64

func (r Ref) String() string {
	return "#" + strconv.FormatUint(uint64(r), 10)
}

type atomicRef struct {
	last atomic.Uint64
}

func (ar *atomicRef) nextRef() Ref {
	return Ref(ar.last.Add(1))
}
