package store

import (
	"context"
	"errors"
	"fmt"

	"placement/internal/document"

	"gorm.io/gorm"
)

type Documents struct {
	DB *gorm.DB
}

var _ document.Store = (*Documents)(nil)

func (s *Documents) Transact(ctx context.Context, fn func(document.Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Documents{DB: tx})
	})
}

func (s *Documents) Get(ctx context.Context, id uint64) (*document.Metadata, error) {
	var m document.Metadata
	err := s.DB.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Documents) GetData(ctx context.Context, id uint64) (*document.Binary, error) {
	var b document.Binary
	err := s.DB.WithContext(ctx).First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Documents) FindByName(ctx context.Context, name string) (*document.Metadata, error) {
	var m document.Metadata
	err := s.DB.WithContext(ctx).Where("name = ?", name).Order("id").First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Documents) List(ctx context.Context, q document.Query) ([]document.Metadata, int64, error) {
	db := s.DB.WithContext(ctx).Model(&document.Metadata{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sort := q.Sort
	if sort == "" {
		sort = "name"
	}
	dir := "asc"
	if q.Desc {
		dir = "desc"
	}

	var rows []document.Metadata
	err := db.Order(fmt.Sprintf("%s %s, id asc", sort, dir)).
		Offset(q.Page * q.Limit).
		Limit(q.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *Documents) Create(ctx context.Context, meta *document.Metadata, content []byte) error {
	if err := s.DB.WithContext(ctx).Create(meta).Error; err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Create(&document.Binary{ID: meta.ID, Content: content}).Error
}

func (s *Documents) Update(ctx context.Context, meta *document.Metadata, content []byte) error {
	err := s.DB.WithContext(ctx).Model(&document.Metadata{ID: meta.ID}).
		Updates(map[string]any{
			"name":         meta.Name,
			"size":         meta.Size,
			"content_type": meta.ContentType,
		}).Error
	if err != nil {
		return err
	}
	if content == nil {
		return nil
	}
	return s.DB.WithContext(ctx).Model(&document.Binary{ID: meta.ID}).
		Update("content", content).Error
}

func (s *Documents) Delete(ctx context.Context, id uint64) error {
	if err := s.DB.WithContext(ctx).Delete(&document.Binary{}, id).Error; err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(&document.Metadata{}, id).Error
}
