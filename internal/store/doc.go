// Package store holds the gateway's volatile state.
//
// # Todo List
//
// The only stored data is the shared to-do list: an ordered sequence of task
// strings. Insertion order is meaningful for display, duplicates are allowed,
// and there is no update operation. Tasks are removed by keyword completion:
//
//	s := store.NewMemoryTodoStore()
//	s.Add("Buy milk")
//	s.Add("buy bread")
//	removed, err := s.Complete("BUY") // removes "Buy milk"
//
// Nothing is persisted; the list is lost when the process exits.
//
// # Ownership
//
// A store is created by the gateway at startup and handed to the tool
// handlers that need it. There is no package-level list, so tests can build
// as many isolated stores as they like.
//
// # Error Handling
//
//   - ErrNotFound: no task matched the completion keyword
package store
