package memstore

import (
	"context"
	"sort"

	"placement/internal/document"
)

type Documents struct {
	db *DB
}

func (d *DB) Documents() *Documents { return &Documents{db: d} }

var _ document.Store = (*Documents)(nil)

func (s *Documents) Transact(_ context.Context, fn func(document.Store) error) error {
	return fn(s)
}

func (s *Documents) Get(_ context.Context, id uint64) (*document.Metadata, error) {
	m, ok := s.db.documents[id]
	if !ok {
		return nil, nil
	}
	out := *m
	return &out, nil
}

func (s *Documents) GetData(_ context.Context, id uint64) (*document.Binary, error) {
	content, ok := s.db.binaries[id]
	if !ok {
		return nil, nil
	}
	return &document.Binary{ID: id, Content: content}, nil
}

func (s *Documents) FindByName(_ context.Context, name string) (*document.Metadata, error) {
	for _, id := range sortedKeys(s.db.documents) {
		if s.db.documents[id].Name == name {
			out := *s.db.documents[id]
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Documents) List(_ context.Context, q document.Query) ([]document.Metadata, int64, error) {
	var rows []document.Metadata
	for _, id := range sortedKeys(s.db.documents) {
		rows = append(rows, *s.db.documents[id])
	}

	field := q.Sort
	if field == "" {
		field = "name"
	}
	sort.SliceStable(rows, func(i, j int) bool {
		var less bool
		switch field {
		case "size":
			less = rows[i].Size < rows[j].Size
		case "content_type":
			less = rows[i].ContentType < rows[j].ContentType
		case "created_at":
			less = rows[i].CreatedAt.Before(rows[j].CreatedAt)
		default:
			less = rows[i].Name < rows[j].Name
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

func (s *Documents) Create(_ context.Context, meta *document.Metadata, content []byte) error {
	meta.ID = s.db.nextID()
	stored := *meta
	s.db.documents[meta.ID] = &stored
	s.db.binaries[meta.ID] = append([]byte(nil), content...)
	return nil
}

func (s *Documents) Update(_ context.Context, meta *document.Metadata, content []byte) error {
	if cur, ok := s.db.documents[meta.ID]; ok {
		cur.Name = meta.Name
		cur.Size = meta.Size
		cur.ContentType = meta.ContentType
	}
	if content != nil {
		s.db.binaries[meta.ID] = append([]byte(nil), content...)
	}
	return nil
}

func (s *Documents) Delete(_ context.Context, id uint64) error {
	delete(s.db.documents, id)
	delete(s.db.binaries, id)
	return nil
}
