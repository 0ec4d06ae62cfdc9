package contact

import "context"

// Query narrows and pages a contact listing. Non-blank filters OR-match as
// case-insensitive substrings.
type Query struct {
	Page  int
	Limit int
	Sort  string // column name
	Desc  bool

	Name      string
	Surname   string
	Email     string
	Telephone string
}

// Store is the persistence boundary for the contact aggregate. Getters return
// (nil, nil) when the row is absent; all mutations performed inside Transact
// commit or roll back together.
type Store interface {
	Transact(ctx context.Context, fn func(Store) error) error

	GetContact(ctx context.Context, id uint64) (*Contact, error)
	ListContacts(ctx context.Context, q Query) ([]Contact, int64, error)
	CreateContact(ctx context.Context, c *Contact) error
	UpdateContact(ctx context.Context, c *Contact) error
	DeleteContact(ctx context.Context, id uint64) error

	// Cascade hook: a deleted contact takes its sent messages (and their
	// action history) with it.
	DeleteMessagesBySender(ctx context.Context, senderID uint64) error

	FindEmail(ctx context.Context, value string) (*Email, error)
	GetEmail(ctx context.Context, id uint64) (*Email, error)
	CreateEmail(ctx context.Context, e *Email) error
	UpdateEmail(ctx context.Context, e *Email) error
	DeleteEmail(ctx context.Context, id uint64) error
	LinkEmail(ctx context.Context, contactID, emailID uint64) error
	UnlinkEmail(ctx context.Context, contactID, emailID uint64) error
	EmailLinked(ctx context.Context, contactID, emailID uint64) (bool, error)
	EmailOwners(ctx context.Context, emailID uint64) (int64, error)

	FindAddress(ctx context.Context, value string) (*Address, error)
	GetAddress(ctx context.Context, id uint64) (*Address, error)
	CreateAddress(ctx context.Context, a *Address) error
	UpdateAddress(ctx context.Context, a *Address) error
	DeleteAddress(ctx context.Context, id uint64) error
	LinkAddress(ctx context.Context, contactID, addressID uint64) error
	UnlinkAddress(ctx context.Context, contactID, addressID uint64) error
	AddressLinked(ctx context.Context, contactID, addressID uint64) (bool, error)
	AddressOwners(ctx context.Context, addressID uint64) (int64, error)

	FindTelephone(ctx context.Context, prefix, number string) (*Telephone, error)
	GetTelephone(ctx context.Context, id uint64) (*Telephone, error)
	CreateTelephone(ctx context.Context, t *Telephone) error
	UpdateTelephone(ctx context.Context, t *Telephone) error
	DeleteTelephone(ctx context.Context, id uint64) error
	LinkTelephone(ctx context.Context, contactID, telephoneID uint64) error
	UnlinkTelephone(ctx context.Context, contactID, telephoneID uint64) error
	TelephoneLinked(ctx context.Context, contactID, telephoneID uint64) (bool, error)
	TelephoneOwners(ctx context.Context, telephoneID uint64) (int64, error)
}
