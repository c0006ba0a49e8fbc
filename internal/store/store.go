// ABOUTME: TodoStore interface and errors for the gateway's in-memory state
// ABOUTME: Defines the operations the todo tools depend on

package store

import "errors"

// ErrNotFound is returned when no task matches a completion keyword
var ErrNotFound = errors.New("not found")

// TodoStore is an ordered list of task descriptions.
type TodoStore interface {
	// Add appends task to the end of the list.
	Add(task string)

	// List returns a snapshot of all tasks in insertion order.
	List() []string

	// Complete removes the first task (in insertion order) whose text
	// contains keyword, ignoring case, and returns it.
	// Returns ErrNotFound and leaves the list untouched if nothing matches.
	Complete(keyword string) (string, error)

	// Len returns the number of tasks.
	Len() int
}
