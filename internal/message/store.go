package message

import (
	"context"
	"time"
)

// Query pages and optionally narrows a message listing to one state.
type Query struct {
	Page  int
	Limit int
	Sort  string // column name
	Desc  bool
	State *State
}

// Store is the persistence boundary for messages and their action history.
// Getters return (nil, nil) when absent.
type Store interface {
	Transact(ctx context.Context, fn func(Store) error) error

	Get(ctx context.Context, id uint64) (*Message, error)
	List(ctx context.Context, q Query) ([]Message, int64, error)
	Create(ctx context.Context, m *Message) error
	Update(ctx context.Context, m *Message) error

	AppendAction(ctx context.Context, a *Action) error
	Actions(ctx context.Context, messageID uint64) ([]Action, error)

	SenderExists(ctx context.Context, contactID uint64) (bool, error)

	// EnqueueTimeout schedules the processing watchdog for a message.
	EnqueueTimeout(ctx context.Context, messageID uint64, runAt time.Time) error
}
