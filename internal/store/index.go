package store

import (
	"container/heap"

	"github.com/powersched/powersched/internal/task"
)

// pendingIndex implements container/heap.Interface over Pending tasks,
// ordered by task.Less (earliest execute_at first).
type pendingIndex []*task.Task

func (h pendingIndex) Len() int           { return len(h) }
func (h pendingIndex) Less(i, j int) bool { return task.Less(h[i], h[j]) }
func (h pendingIndex) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *pendingIndex) Push(x any) {
	*h = append(*h, x.(*task.Task))
}

func (h *pendingIndex) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}

func indexPush(h *pendingIndex, t *task.Task) {
	heap.Push(h, t)
}

// indexPeek returns the earliest pending task, or nil.
func indexPeek(h *pendingIndex) *task.Task {
	if h.Len() == 0 {
		return nil
	}
	return (*h)[0]
}

// indexRemove removes the task with the given id.
// Returns false if it was not indexed.
func indexRemove(h *pendingIndex, id string) bool {
	for i, t := range *h {
		if t.ID == id {
			heap.Remove(h, i)
			return true
		}
	}
	return false
}
