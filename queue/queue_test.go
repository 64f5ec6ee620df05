package queue_test

import (
	"cmp"
	"testing"

	"github.com/lanrat/csvsort/queue"
)

func intCompareFunc(a, b int) int {
	return cmp.Compare(a, b)
}

func TestInit0(t *testing.T) {
	q := queue.NewPriorityQueue(intCompareFunc)
	for i := 20; i > 0; i-- {
		q.Push(0) // all elements are the same
	}

	l := q.Len()
	if l != 20 {
		t.Fatalf("queue len is %d, expected %d", l, 20)
	}

	for i := 1; q.Len() > 0; i++ {
		x := q.Peek()
		y := q.Pop()
		if x != y {
			t.Fatalf("q.Peek() and q.Pop() returned different values %d %d", x, y)
		}
		if x != 0 {
			t.Errorf("%d.th pop got %d; want %d", i, x, 0)
		}
	}
}

func Test(t *testing.T) {
	q := queue.NewPriorityQueue(intCompareFunc)
	l := q.Len()
	if l != 0 {
		t.Fatalf("queue len is %d, expected %d", l, 0)
	}

	for i := 20; i > 10; i-- {
		q.Push(i)
	}

	l = q.Len()
	if l != 10 {
		t.Fatalf("queue len is %d, expected %d", l, 10)
	}

	for i := 10; i > 0; i-- {
		q.Push(i)
	}

	l = q.Len()
	if l != 20 {
		t.Fatalf("queue len is %d, expected %d", l, 20)
	}

	for i := 1; q.Len() > 0; i++ {
		x := q.Peek()
		y := q.Pop()
		if x != y {
			t.Fatalf("q.Peek() and q.Pop() returned different values %d %d", x, y)
		}
		if i < 20 {
			q.Push(20 + i)
		}
		if x != i {
			t.Errorf("%d.th pop got %d; want %d", i, x, i)
		}
	}
}

type cursor struct {
	head   int
	source int
}

// TestPeekUpdate drives the queue the way a k-way merge does: the front item
// is modified in place and the heap is fixed instead of popping and pushing.
func TestPeekUpdate(t *testing.T) {
	sources := [][]int{
		{1, 4, 7},
		{2, 5, 8},
		{3, 6, 9},
	}
	pos := make([]int, len(sources))
	q := queue.NewPriorityQueueSize(func(a, b *cursor) int {
		if c := cmp.Compare(a.head, b.head); c != 0 {
			return c
		}
		return cmp.Compare(a.source, b.source)
	}, len(sources))
	for i, s := range sources {
		q.Push(&cursor{head: s[0], source: i})
	}

	var got []int
	for q.Len() > 0 {
		c := q.Peek()
		got = append(got, c.head)
		pos[c.source]++
		if pos[c.source] < len(sources[c.source]) {
			c.head = sources[c.source][pos[c.source]]
			q.PeekUpdate()
		} else {
			q.Pop()
		}
	}

	if len(got) != 9 {
		t.Fatalf("merged %d values, expected %d", len(got), 9)
	}
	for i, v := range got {
		if v != i+1 {
			t.Errorf("position %d got %d; want %d", i, v, i+1)
		}
	}
}

// TestTieBreak checks that equal heads come out in source order when the
// comparison function breaks ties on the source.
func TestTieBreak(t *testing.T) {
	q := queue.NewPriorityQueue(func(a, b cursor) int {
		if c := cmp.Compare(a.head, b.head); c != 0 {
			return c
		}
		return cmp.Compare(a.source, b.source)
	})
	for _, src := range []int{4, 2, 0, 3, 1} {
		q.Push(cursor{head: 7, source: src})
	}
	for want := 0; q.Len() > 0; want++ {
		c := q.Pop()
		if c.source != want {
			t.Errorf("got source %d; want %d", c.source, want)
		}
	}
}
