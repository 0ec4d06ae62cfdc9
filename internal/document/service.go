package document

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("invalid input")
	ErrNameTaken  = errors.New("document name already exists")
)

type Service struct {
	Store Store
	Log   *zap.Logger
}

func (s *Service) List(ctx context.Context, q Query) ([]Metadata, int64, error) {
	if q.Page < 0 {
		return nil, 0, fmt.Errorf("%w: page must be >= 0", ErrValidation)
	}
	if q.Limit <= 0 {
		return nil, 0, fmt.Errorf("%w: limit must be > 0", ErrValidation)
	}
	return s.Store.List(ctx, q)
}

func (s *Service) Get(ctx context.Context, id uint64) (*Metadata, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: document id must be > 0", ErrValidation)
	}
	meta, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, fmt.Errorf("%w: document %d", ErrNotFound, id)
	}
	return meta, nil
}

// GetData returns the metadata together with the byte payload.
func (s *Service) GetData(ctx context.Context, id uint64) (*Metadata, []byte, error) {
	meta, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	bin, err := s.Store.GetData(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if bin == nil {
		return nil, nil, fmt.Errorf("%w: document %d", ErrNotFound, id)
	}
	return meta, bin.Content, nil
}

func (s *Service) Create(ctx context.Context, name, contentType string, content []byte) (*Metadata, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name must not be blank", ErrValidation)
	}
	if strings.TrimSpace(contentType) == "" {
		return nil, fmt.Errorf("%w: content type must not be blank", ErrValidation)
	}

	var out *Metadata
	err := s.Store.Transact(ctx, func(st Store) error {
		existing, err := st.FindByName(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: %q", ErrNameTaken, name)
		}
		meta := &Metadata{
			Name:        name,
			Size:        int64(len(content)),
			ContentType: contentType,
		}
		if err := st.Create(ctx, meta, content); err != nil {
			return err
		}
		out = meta
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("document created", zap.Uint64("id", out.ID), zap.String("name", name))
	return out, nil
}

// Modify updates any subset of name, content type and payload. Replacing the
// payload recomputes the stored size.
func (s *Service) Modify(ctx context.Context, id uint64, name, contentType *string, content []byte) (*Metadata, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: document id must be > 0", ErrValidation)
	}
	if name != nil && strings.TrimSpace(*name) == "" {
		return nil, fmt.Errorf("%w: name must not be blank", ErrValidation)
	}
	if contentType != nil && strings.TrimSpace(*contentType) == "" {
		return nil, fmt.Errorf("%w: content type must not be blank", ErrValidation)
	}

	var out *Metadata
	err := s.Store.Transact(ctx, func(st Store) error {
		meta, err := st.Get(ctx, id)
		if err != nil {
			return err
		}
		if meta == nil {
			return fmt.Errorf("%w: document %d", ErrNotFound, id)
		}
		if name != nil && strings.TrimSpace(*name) != meta.Name {
			taken, err := st.FindByName(ctx, strings.TrimSpace(*name))
			if err != nil {
				return err
			}
			if taken != nil {
				return fmt.Errorf("%w: %q", ErrNameTaken, *name)
			}
			meta.Name = strings.TrimSpace(*name)
		}
		if contentType != nil {
			meta.ContentType = strings.TrimSpace(*contentType)
		}
		if content != nil {
			meta.Size = int64(len(content))
		}
		if err := st.Update(ctx, meta, content); err != nil {
			return err
		}
		out = meta
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("document modified", zap.Uint64("id", id))
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id uint64) error {
	if id == 0 {
		return fmt.Errorf("%w: document id must be > 0", ErrValidation)
	}
	err := s.Store.Transact(ctx, func(st Store) error {
		meta, err := st.Get(ctx, id)
		if err != nil {
			return err
		}
		if meta == nil {
			return fmt.Errorf("%w: document %d", ErrNotFound, id)
		}
		return st.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.Log.Info("document deleted", zap.Uint64("id", id))
	return nil
}
