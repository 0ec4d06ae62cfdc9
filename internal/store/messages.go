package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"placement/internal/contact"
	"placement/internal/jobs"
	"placement/internal/message"

	"gorm.io/gorm"
)

type Messages struct {
	DB *gorm.DB
}

var _ message.Store = (*Messages)(nil)

func (s *Messages) Transact(ctx context.Context, fn func(message.Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Messages{DB: tx})
	})
}

func (s *Messages) Get(ctx context.Context, id uint64) (*message.Message, error) {
	var m message.Message
	err := s.DB.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Messages) List(ctx context.Context, q message.Query) ([]message.Message, int64, error) {
	db := s.DB.WithContext(ctx).Model(&message.Message{})
	if q.State != nil {
		db = db.Where("state = ?", *q.State)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sort := q.Sort
	if sort == "" {
		sort = "date"
	}
	dir := "asc"
	if q.Desc {
		dir = "desc"
	}

	var rows []message.Message
	err := db.Order(fmt.Sprintf("%s %s, id asc", sort, dir)).
		Offset(q.Page * q.Limit).
		Limit(q.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *Messages) Create(ctx context.Context, m *message.Message) error {
	return s.DB.WithContext(ctx).Create(m).Error
}

func (s *Messages) Update(ctx context.Context, m *message.Message) error {
	return s.DB.WithContext(ctx).Model(&message.Message{ID: m.ID}).
		Updates(map[string]any{"state": m.State, "priority": m.Priority}).Error
}

func (s *Messages) AppendAction(ctx context.Context, a *message.Action) error {
	return s.DB.WithContext(ctx).Create(a).Error
}

func (s *Messages) Actions(ctx context.Context, messageID uint64) ([]message.Action, error) {
	var rows []message.Action
	err := s.DB.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Messages) SenderExists(ctx context.Context, contactID uint64) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&contact.Contact{}).Where("id = ?", contactID).Count(&n).Error
	return n > 0, err
}

func (s *Messages) EnqueueTimeout(ctx context.Context, messageID uint64, runAt time.Time) error {
	payload, _ := json.Marshal(map[string]any{"message_id": messageID})
	j := jobs.Job{
		Type:    jobs.TypeMessageTimeout,
		Payload: payload,
		RunAt:   runAt,
		Status:  "PENDING",
	}
	return s.DB.WithContext(ctx).Create(&j).Error
}
