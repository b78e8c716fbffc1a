// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

// procList is an intrusive FIFO of processes threaded through Process.next.
// It is used for the ready queue and for both wait queues of every channel.
// Callers hold the lock that owns the list.
type procList struct {
	head *Process
	tail *Process
	n    int
}

// push appends p. A process is a member of at most one list.
func (l *procList) push(p *Process) {
	if p.list != nil {
		panic("csp: process linked into two lists")
	}
	p.list = l
	p.next = nil
	if l.tail == nil {
		l.head = p
	} else {
		l.tail.next = p
	}
	l.tail = p
	l.n++
}

// pop removes and returns the head, or nil when empty.
func (l *procList) pop() *Process {
	p := l.head
	if p == nil {
		return nil
	}
	l.head = p.next
	if l.head == nil {
		l.tail = nil
	}
	p.next = nil
	p.list = nil
	l.n--
	return p
}

// remove unlinks p if it is a member of l.
func (l *procList) remove(p *Process) bool {
	if p.list != l {
		return false
	}
	var prev *Process
	for cur := l.head; cur != nil; prev, cur = cur, cur.next {
		if cur != p {
			continue
		}
		if prev == nil {
			l.head = cur.next
		} else {
			prev.next = cur.next
		}
		if l.tail == cur {
			l.tail = prev
		}
		cur.next = nil
		cur.list = nil
		l.n--
		return true
	}
	return false
}

// drain pops every member in order.
func (l *procList) drain() []*Process {
	out := make([]*Process, 0, l.n)
	for p := l.pop(); p != nil; p = l.pop() {
		out = append(out, p)
	}
	return out
}

func (l *procList) len() int { return l.n }

func (l *procList) empty() bool { return l.head == nil }
