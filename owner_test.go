// owner_test.go
package vkvideo

import (
	"testing"

	"github.com/pion/logging"
)

var testLog = logging.NewDefaultLoggerFactory().NewLogger("test")

func TestOwnerDestroyOrder(t *testing.T) {
	var order []string
	device := newOwner("device", testLog, func() { order = append(order, "device") })
	buffer := newOwner("buffer", testLog, func() { order = append(order, "buffer") }, device)

	// The buffer holds the device alive through the creator's release.
	device.release()
	if !device.alive() {
		t.Fatal("device destroyed while a child still references it")
	}
	if len(order) != 0 {
		t.Fatalf("premature destroy: %v", order)
	}

	buffer.release()
	if device.alive() || buffer.alive() {
		t.Fatal("nodes still alive after final release")
	}
	if len(order) != 2 || order[0] != "buffer" || order[1] != "device" {
		t.Fatalf("destroy order: %v, want child before parent", order)
	}
}

func TestOwnerRetainDelaysDestroy(t *testing.T) {
	destroyed := false
	node := newOwner("node", testLog, func() { destroyed = true })

	node.retain()
	node.release()
	if destroyed {
		t.Fatal("destroyed with an outstanding reference")
	}
	node.release()
	if !destroyed {
		t.Fatal("not destroyed after the last release")
	}
}

func TestOwnerSharedParent(t *testing.T) {
	var order []string
	parent := newOwner("parent", testLog, func() { order = append(order, "parent") })
	a := newOwner("a", testLog, func() { order = append(order, "a") }, parent)
	b := newOwner("b", testLog, func() { order = append(order, "b") }, parent)

	parent.release()
	a.release()
	if !parent.alive() {
		t.Fatal("parent destroyed while a child remains")
	}
	b.release()
	if parent.alive() {
		t.Fatal("parent must go once the last child does")
	}
	if order[len(order)-1] != "parent" {
		t.Fatalf("destroy order: %v", order)
	}
}

func TestOwnerNilDestroyAndLog(t *testing.T) {
	node := newOwner("bare", nil, nil)
	node.release()
	if node.alive() {
		t.Fatal("still alive")
	}
}
