// ABOUTME: In-memory TodoStore backed by a mutex-guarded slice
// ABOUTME: Implements case-insensitive first-match keyword completion

package store

import (
	"strings"
	"sync"
)

// MemoryTodoStore implements TodoStore in process memory.
type MemoryTodoStore struct {
	mu    sync.Mutex
	tasks []string
}

// NewMemoryTodoStore creates an empty todo store.
func NewMemoryTodoStore() *MemoryTodoStore {
	return &MemoryTodoStore{}
}

// Add appends task to the end of the list.
func (s *MemoryTodoStore) Add(task string) {
	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()
}

// List returns a copy of the tasks in insertion order.
func (s *MemoryTodoStore) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]string, len(s.tasks))
	copy(result, s.tasks)
	return result
}

// Complete removes and returns the first task containing keyword, ignoring case.
// Later matches stay in the list until a subsequent call.
func (s *MemoryTodoStore) Complete(keyword string) (string, error) {
	needle := strings.ToLower(keyword)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, task := range s.tasks {
		if strings.Contains(strings.ToLower(task), needle) {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return task, nil
		}
	}
	return "", ErrNotFound
}

// Len returns the number of tasks.
func (s *MemoryTodoStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}
