// owner.go
package vkvideo

import (
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pion/logging"
)

// owner is the shared-ownership node embedded in every driver-backed
// resource. A child retains each parent it depends on when it is created;
// releasing the last reference runs the destroy hook and then releases the
// parents, so teardown always happens child-before-parent.
//
// Destroy hooks never return errors. A driver failure during teardown is
// logged and swallowed so it cannot obscure whatever failure got us here.
type owner struct {
	refs    atomic.Int64
	id      uuid.UUID
	name    string
	log     logging.LeveledLogger
	destroy func()
	parents []*owner
}

func newOwner(name string, log logging.LeveledLogger, destroy func(), parents ...*owner) *owner {
	o := &owner{
		id:      uuid.New(),
		name:    name,
		log:     log,
		destroy: destroy,
		parents: parents,
	}
	o.refs.Store(1)
	for _, p := range o.parents {
		p.retain()
	}
	return o
}

func (o *owner) retain() {
	if o.refs.Add(1) <= 1 {
		panic("retain on destroyed " + o.name)
	}
}

func (o *owner) release() {
	n := o.refs.Add(-1)
	if n > 0 {
		return
	}
	if n < 0 {
		panic("release on destroyed " + o.name)
	}
	if o.destroy != nil {
		o.destroy()
	}
	if o.log != nil {
		o.log.Tracef("destroyed %s %s", o.name, o.id)
	}
	for _, p := range o.parents {
		p.release()
	}
}

// alive is a test seam; it reports whether the node still holds references.
func (o *owner) alive() bool {
	return o.refs.Load() > 0
}
