package mcs

import "testing"

func TestNodePoolAllocateExhaustion(t *testing.T) {
	p := NewNodePool(ThreadID(5), 2)

	id1, ok := p.Allocate()
	if !ok {
		t.Fatal("expected allocation to succeed")
	}
	id2, ok := p.Allocate()
	if !ok {
		t.Fatal("expected allocation to succeed")
	}
	if id1 == id2 {
		t.Errorf("allocate returned the same id twice: %+v", id1)
	}
	if _, ok := p.Allocate(); ok {
		t.Error("expected pool to be exhausted")
	}

	p.Release(id1)
	id3, ok := p.Allocate()
	if !ok {
		t.Fatal("expected allocation to succeed after release")
	}
	if id3 != id1 {
		t.Errorf("expected released id %+v to be reused, got %+v", id1, id3)
	}
}

func TestRegistryResolveUnregisteredThreadPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected Resolve to panic for an unregistered thread")
		}
	}()
	reg := NewRegistry()
	reg.Resolve(NodeID{Thread: 99, Block: 1})
}

func TestRegistryAllocateAndResolveRoundTrip(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterThread(1, 4)

	id, ok := reg.Allocate(1)
	if !ok {
		t.Fatal("allocate failed")
	}
	node := reg.Resolve(id)
	if node == nil {
		t.Fatal("resolve returned nil")
	}
	node.waiting.Store(false)
	if reg.Resolve(id).waiting.Load() {
		t.Error("resolve did not return the same underlying node on a second call")
	}
}
