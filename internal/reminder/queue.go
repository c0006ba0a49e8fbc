// ABOUTME: Time-ordered min-heap of pending reminders
// ABOUTME: Orders by fire-at instant, then by enqueue sequence for equal instants

package reminder

import "container/heap"

// jobQueue implements heap.Interface over pending reminders.
type jobQueue []*Reminder

func (q jobQueue) Len() int { return len(q) }

func (q jobQueue) Less(i, j int) bool {
	if q[i].FireAt.Equal(q[j].FireAt) {
		return q[i].seq < q[j].seq
	}
	return q[i].FireAt.Before(q[j].FireAt)
}

func (q jobQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *jobQueue) Push(x any) {
	*q = append(*q, x.(*Reminder))
}

func (q *jobQueue) Pop() any {
	old := *q
	n := len(old)
	r := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return r
}

// peek returns the earliest reminder without removing it.
func (q jobQueue) peek() *Reminder {
	if len(q) == 0 {
		return nil
	}
	return q[0]
}

var _ heap.Interface = (*jobQueue)(nil)
