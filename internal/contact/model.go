package contact

import "time"

// Category classifies a contact.
type Category string

const (
	CategoryUnknown      Category = "UNKNOWN"
	CategoryCustomer     Category = "CUSTOMER"
	CategoryProfessional Category = "PROFESSIONAL"
)

// ParseCategory maps a request string to a Category.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryUnknown, CategoryCustomer, CategoryProfessional:
		return Category(s), true
	}
	return "", false
}

// Contact is the aggregate root. Emails/Addresses/Telephones are shared value
// rows: membership lives in the join tables, the rows themselves may be
// referenced by any number of contacts.
type Contact struct {
	ID       uint64  `gorm:"primaryKey"`
	Name     string  `gorm:"not null"`
	Surname  string  `gorm:"not null"`
	SSN      *string `gorm:"column:ssn"`
	Category Category `gorm:"type:text;not null;default:'UNKNOWN'"`

	Emails     []Email     `gorm:"many2many:contact_emails"`
	Addresses  []Address   `gorm:"many2many:contact_addresses"`
	Telephones []Telephone `gorm:"many2many:contact_telephones"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

// Email is a deduplicated email address. No back-reference to contacts:
// ownership is tracked only through the contact_emails join table.
type Email struct {
	ID    uint64 `gorm:"primaryKey"`
	Email string `gorm:"uniqueIndex;not null"`
}

// Address is a deduplicated postal address.
type Address struct {
	ID      uint64 `gorm:"primaryKey"`
	Address string `gorm:"uniqueIndex;not null"`
}

// Telephone is a deduplicated phone number, split into a 2-digit prefix and
// the remaining digits.
type Telephone struct {
	ID     uint64 `gorm:"primaryKey"`
	Prefix string `gorm:"not null;uniqueIndex:uq_telephones_prefix_number"`
	Number string `gorm:"not null;uniqueIndex:uq_telephones_prefix_number"`
}
