package document

import (
	"context"
	"time"
)

// Metadata describes a stored document. Paired 1:1 with a Binary row sharing
// the same id; the two are created, updated and deleted together.
type Metadata struct {
	ID          uint64    `gorm:"primaryKey"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Size        int64     `gorm:"not null"`
	ContentType string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null;default:now()"`
}

// Binary holds the byte payload for a Metadata row (same id).
type Binary struct {
	ID      uint64 `gorm:"primaryKey"`
	Content []byte `gorm:"type:bytea;not null"`
}

// Query pages a document listing.
type Query struct {
	Page  int
	Limit int
	Sort  string // column name
	Desc  bool
}

// Store persists metadata/binary pairs. Getters return (nil, nil) when absent.
type Store interface {
	Transact(ctx context.Context, fn func(Store) error) error

	Get(ctx context.Context, id uint64) (*Metadata, error)
	GetData(ctx context.Context, id uint64) (*Binary, error)
	FindByName(ctx context.Context, name string) (*Metadata, error)
	List(ctx context.Context, q Query) ([]Metadata, int64, error)
	Create(ctx context.Context, meta *Metadata, content []byte) error
	Update(ctx context.Context, meta *Metadata, content []byte) error // nil content keeps the payload
	Delete(ctx context.Context, id uint64) error
}
