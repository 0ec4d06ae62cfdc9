package memstore

import (
	"context"
	"sort"
	"time"

	"placement/internal/message"
)

type Messages struct {
	db *DB
}

func (d *DB) Messages() *Messages { return &Messages{db: d} }

var _ message.Store = (*Messages)(nil)

func (s *Messages) Transact(_ context.Context, fn func(message.Store) error) error {
	return fn(s)
}

func (s *Messages) Get(_ context.Context, id uint64) (*message.Message, error) {
	m, ok := s.db.messages[id]
	if !ok {
		return nil, nil
	}
	out := *m
	return &out, nil
}

func (s *Messages) List(_ context.Context, q message.Query) ([]message.Message, int64, error) {
	var rows []message.Message
	for _, id := range sortedKeys(s.db.messages) {
		m := s.db.messages[id]
		if q.State != nil && m.State != *q.State {
			continue
		}
		rows = append(rows, *m)
	}

	field := q.Sort
	if field == "" {
		field = "date"
	}
	sort.SliceStable(rows, func(i, j int) bool {
		var less bool
		switch field {
		case "priority":
			less = rows[i].Priority < rows[j].Priority
		case "state":
			less = rows[i].State < rows[j].State
		case "channel":
			less = rows[i].Channel < rows[j].Channel
		case "subject":
			var a, b string
			if rows[i].Subject != nil {
				a = *rows[i].Subject
			}
			if rows[j].Subject != nil {
				b = *rows[j].Subject
			}
			less = a < b
		default:
			less = rows[i].Date.Before(rows[j].Date)
		}
		if q.Desc {
			return !less
		}
		return less
	})

	total := int64(len(rows))
	start := q.Page * q.Limit
	if start > len(rows) {
		start = len(rows)
	}
	end := start + q.Limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], total, nil
}

func (s *Messages) Create(_ context.Context, m *message.Message) error {
	m.ID = s.db.nextID()
	stored := *m
	s.db.messages[m.ID] = &stored
	return nil
}

func (s *Messages) Update(_ context.Context, m *message.Message) error {
	if cur, ok := s.db.messages[m.ID]; ok {
		cur.State = m.State
		cur.Priority = m.Priority
	}
	return nil
}

func (s *Messages) AppendAction(_ context.Context, a *message.Action) error {
	a.ID = s.db.nextID()
	s.db.actions = append(s.db.actions, *a)
	return nil
}

func (s *Messages) Actions(_ context.Context, messageID uint64) ([]message.Action, error) {
	var out []message.Action
	for _, a := range s.db.actions {
		if a.MessageID == messageID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Messages) SenderExists(_ context.Context, contactID uint64) (bool, error) {
	_, ok := s.db.contacts[contactID]
	return ok, nil
}

func (s *Messages) EnqueueTimeout(_ context.Context, messageID uint64, runAt time.Time) error {
	s.db.Timeouts = append(s.db.Timeouts, Timeout{MessageID: messageID, RunAt: runAt})
	return nil
}
