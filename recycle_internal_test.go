// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import "testing"

// fakeState is a State that records Close.
type fakeState struct {
	id     int
	closed bool
}

func (s *fakeState) Load(Code) error { return nil }
func (s *fakeState) Resume(Reply) (Op, error) { return nil, nil }
func (s *fakeState) SharedName(Value) (string, bool) { return "", false }
func (s *fakeState) Shared(string) (Value, bool) { return Nil(), false }
func (s *fakeState) Reset() error { return nil }
func (s *fakeState) Close() { s.closed = true }

func newFakePool(capacity int) (*recyclePool, *[]State) {
	var destroyed []State
	p := newRecyclePool(capacity, func(s State) {
		s.Close()
		destroyed = append(destroyed, s)
	})
	return p, &destroyed
}

func TestRecyclePoolFIFO(t *testing.T) {
	p, _ := newFakePool(3)
	states := []*fakeState{{id: 1}, {id: 2}, {id: 3}, {id: 4}}
	for i, s := range states {
		ok := p.put(s)
		if want := i < 3; ok != want {
			t.Fatalf("put #%d: got %v, want %v", i, ok, want)
		}
	}
	if p.len() != 3 {
		t.Fatalf("len: got %d, want 3", p.len())
	}
	for _, want := range states[:3] {
		got, ok := p.get()
		if !ok || got != want {
			t.Fatalf("get: got %v, want state %d", got, want.id)
		}
	}
	if _, ok := p.get(); ok {
		t.Fatal("get from empty pool succeeded")
	}
}

func TestRecyclePoolZeroCapacity(t *testing.T) {
	p, _ := newFakePool(0)
	if p.put(&fakeState{}) {
		t.Fatal("zero-capacity pool accepted a state")
	}
	if _, ok := p.get(); ok {
		t.Fatal("zero-capacity pool returned a state")
	}
	p.setCapacity(1)
	if !p.put(&fakeState{}) || p.len() != 1 {
		t.Fatal("grown pool did not accept a state")
	}
}

func TestRecyclePoolShrinkKeepsOldest(t *testing.T) {
	p, destroyed := newFakePool(4)
	states := []*fakeState{{id: 1}, {id: 2}, {id: 3}, {id: 4}}
	for _, s := range states {
		p.put(s)
	}
	p.setCapacity(2)
	if p.capacity() != 2 || p.len() != 2 {
		t.Fatalf("capacity=%d len=%d", p.capacity(), p.len())
	}
	if len(*destroyed) != 2 || !states[2].closed || !states[3].closed {
		t.Fatal("shrink did not destroy the newest states")
	}
	if got, _ := p.get(); got != states[0] {
		t.Fatal("oldest state was not kept first")
	}
	p.setCapacity(-1)
	if p.capacity() != 0 || p.len() != 0 || !states[1].closed {
		t.Fatal("negative capacity did not empty the pool")
	}
}

func TestRecyclePoolClose(t *testing.T) {
	p, destroyed := newFakePool(2)
	a, b := &fakeState{id: 1}, &fakeState{id: 2}
	p.put(a)
	p.put(b)
	p.close()
	if len(*destroyed) != 2 || !a.closed || !b.closed {
		t.Fatal("close did not destroy pooled states")
	}
	if p.put(&fakeState{}) {
		t.Fatal("closed pool accepted a state")
	}
	p.setCapacity(5)
	if p.capacity() != 0 {
		t.Fatal("closed pool changed capacity")
	}
	p.close()
}
