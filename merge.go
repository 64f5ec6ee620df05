package csvsort

import (
	"cmp"
	"context"

	"github.com/lanrat/csvsort/queue"
)

// ctxCheckInterval is how many records Merge emits between context checks
const ctxCheckInterval = 1024

// frontierEntry is the head record of one run waiting in the merge queue
type frontierEntry struct {
	key Key
	rec Record
	run *RunReader
}

// Merge performs a k-way merge of the sorted runs behind readers, calling emit
// once per record in the requested order. Records with equal keys are emitted
// in ascending run ID order, so runs cut from consecutive input in ID order
// merge into a stable result. Run IDs must be distinct.
//
// Merge does not close the readers. It returns the number of records emitted,
// and ErrEmptyInput when readers is empty.
func Merge(ctx context.Context, readers []*RunReader, keyIndex int, order Order, emit func(Record) error) (int64, error) {
	if len(readers) == 0 {
		return 0, ErrEmptyInput
	}

	pq := queue.NewPriorityQueueSize(func(a, b *frontierEntry) int {
		if c := CompareKeys(a.key, b.key, order); c != 0 {
			return c
		}
		return cmp.Compare(a.run.ID(), b.run.ID())
	}, len(readers))

	for _, r := range readers {
		if rec, ok := r.Peek(); ok {
			pq.Push(&frontierEntry{key: ExtractKey(rec, keyIndex), rec: rec, run: r})
		}
	}

	var emitted int64
	for pq.Len() > 0 {
		if emitted%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return emitted, err
			}
		}

		head := pq.Peek()
		if err := emit(head.rec); err != nil {
			return emitted, err
		}
		emitted++

		if err := head.run.Advance(); err != nil {
			return emitted, err
		}
		if rec, ok := head.run.Peek(); ok {
			head.rec = rec
			head.key = ExtractKey(rec, keyIndex)
			pq.PeekUpdate()
		} else {
			pq.Pop()
		}
	}
	return emitted, nil
}
