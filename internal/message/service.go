package message

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("invalid input")
	ErrWrongState = errors.New("wrong new state")
)

type Service struct {
	Store Store

	// ProcessingTimeout > 0 schedules a watchdog job whenever a message
	// enters PROCESSING.
	ProcessingTimeout time.Duration
}

type CreateInput struct {
	SenderID uint64
	Channel  Channel
	Subject  *string
	Body     *string
	Date     time.Time
}

func (s *Service) List(ctx context.Context, q Query) ([]Message, int64, error) {
	if q.Page < 0 {
		return nil, 0, fmt.Errorf("%w: page must be >= 0", ErrValidation)
	}
	if q.Limit <= 0 {
		return nil, 0, fmt.Errorf("%w: limit must be > 0", ErrValidation)
	}
	return s.Store.List(ctx, q)
}

func (s *Service) Get(ctx context.Context, id uint64) (*Message, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: message id must be > 0", ErrValidation)
	}
	m, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: message %d", ErrNotFound, id)
	}
	return m, nil
}

// Create registers an inbound message. Every message starts in RECEIVED with
// priority 0.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Message, error) {
	if in.SenderID == 0 {
		return nil, fmt.Errorf("%w: sender id must be > 0", ErrValidation)
	}
	if _, ok := ParseChannel(string(in.Channel)); !ok {
		return nil, fmt.Errorf("%w: unknown channel %q", ErrValidation, in.Channel)
	}
	if in.Subject != nil && strings.TrimSpace(*in.Subject) == "" {
		return nil, fmt.Errorf("%w: subject must not be blank", ErrValidation)
	}
	if in.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	}

	var out *Message
	err := s.Store.Transact(ctx, func(st Store) error {
		ok, err := st.SenderExists(ctx, in.SenderID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: sender %d", ErrNotFound, in.SenderID)
		}
		m := &Message{
			SenderID: in.SenderID,
			Date:     in.Date,
			Subject:  in.Subject,
			Body:     in.Body,
			Channel:  in.Channel,
			Priority: 0,
			State:    StateReceived,
		}
		if err := st.Create(ctx, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ChangeState applies one transition, appending exactly one Action on success.
// An illegal transition fails with ErrWrongState and leaves the message as-is.
func (s *Service) ChangeState(ctx context.Context, id uint64, next State, comment *string) (*Message, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: message id must be > 0", ErrValidation)
	}
	if _, ok := ParseState(string(next)); !ok {
		return nil, fmt.Errorf("%w: unknown state %q", ErrValidation, next)
	}

	var out *Message
	err := s.Store.Transact(ctx, func(st Store) error {
		m, err := st.Get(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return fmt.Errorf("%w: message %d", ErrNotFound, id)
		}
		if !m.State.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", ErrWrongState, m.State, next)
		}
		now := time.Now()
		m.State = next
		if err := st.Update(ctx, m); err != nil {
			return err
		}
		if err := st.AppendAction(ctx, &Action{
			MessageID: m.ID,
			State:     next,
			Date:      now,
			Comment:   comment,
		}); err != nil {
			return err
		}
		if next == StateProcessing && s.ProcessingTimeout > 0 {
			if err := st.EnqueueTimeout(ctx, m.ID, now.Add(s.ProcessingTimeout)); err != nil {
				return err
			}
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ChangePriority has no state restriction; any existing message can be
// reprioritized.
func (s *Service) ChangePriority(ctx context.Context, id uint64, priority int) (*Message, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: message id must be > 0", ErrValidation)
	}
	if priority < 0 {
		return nil, fmt.Errorf("%w: priority must be >= 0", ErrValidation)
	}

	var out *Message
	err := s.Store.Transact(ctx, func(st Store) error {
		m, err := st.Get(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return fmt.Errorf("%w: message %d", ErrNotFound, id)
		}
		m.Priority = priority
		if err := st.Update(ctx, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// History returns the action log in the order it was recorded.
func (s *Service) History(ctx context.Context, id uint64) ([]Action, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: message id must be > 0", ErrValidation)
	}
	m, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: message %d", ErrNotFound, id)
	}
	return s.Store.Actions(ctx, m.ID)
}
