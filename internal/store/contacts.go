// Package store implements the domain Store interfaces on gorm + Postgres.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"placement/internal/contact"
	"placement/internal/message"

	"gorm.io/gorm"
)

type Contacts struct {
	DB *gorm.DB
}

var _ contact.Store = (*Contacts)(nil)

func (s *Contacts) Transact(ctx context.Context, fn func(contact.Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Contacts{DB: tx})
	})
}

func (s *Contacts) GetContact(ctx context.Context, id uint64) (*contact.Contact, error) {
	var c contact.Contact
	err := s.DB.WithContext(ctx).
		Preload("Emails", func(db *gorm.DB) *gorm.DB { return db.Order("emails.id") }).
		Preload("Addresses", func(db *gorm.DB) *gorm.DB { return db.Order("addresses.id") }).
		Preload("Telephones", func(db *gorm.DB) *gorm.DB { return db.Order("telephones.id") }).
		First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// filter applies the combinatorial name/surname/email/telephone substring
// predicate as a single dynamic OR.
func (s *Contacts) filter(ctx context.Context, q contact.Query) *gorm.DB {
	db := s.DB.WithContext(ctx).Model(&contact.Contact{})
	var ors []string
	var args []any
	if q.Name != "" {
		ors = append(ors, "contacts.name ILIKE ?")
		args = append(args, "%"+q.Name+"%")
	}
	if q.Surname != "" {
		ors = append(ors, "contacts.surname ILIKE ?")
		args = append(args, "%"+q.Surname+"%")
	}
	if q.Email != "" {
		db = db.Joins("LEFT JOIN contact_emails ON contact_emails.contact_id = contacts.id").
			Joins("LEFT JOIN emails ON emails.id = contact_emails.email_id")
		ors = append(ors, "emails.email ILIKE ?")
		args = append(args, "%"+q.Email+"%")
	}
	if q.Telephone != "" {
		db = db.Joins("LEFT JOIN contact_telephones ON contact_telephones.contact_id = contacts.id").
			Joins("LEFT JOIN telephones ON telephones.id = contact_telephones.telephone_id")
		ors = append(ors, "(telephones.prefix || telephones.number) ILIKE ?")
		args = append(args, "%"+q.Telephone+"%")
	}
	if len(ors) > 0 {
		db = db.Where(strings.Join(ors, " OR "), args...)
	}
	return db
}

func (s *Contacts) ListContacts(ctx context.Context, q contact.Query) ([]contact.Contact, int64, error) {
	var total int64
	if err := s.filter(ctx, q).Distinct("contacts.id").Count(&total).Error; err != nil {
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

	var rows []contact.Contact
	err := s.filter(ctx, q).
		Select("contacts.*").
		Group("contacts.id").
		Order(fmt.Sprintf("contacts.%s %s, contacts.id asc", sort, dir)).
		Offset(q.Page * q.Limit).
		Limit(q.Limit).
		Preload("Emails", func(db *gorm.DB) *gorm.DB { return db.Order("emails.id") }).
		Preload("Addresses", func(db *gorm.DB) *gorm.DB { return db.Order("addresses.id") }).
		Preload("Telephones", func(db *gorm.DB) *gorm.DB { return db.Order("telephones.id") }).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *Contacts) CreateContact(ctx context.Context, c *contact.Contact) error {
	// associations are linked explicitly through the join tables
	return s.DB.WithContext(ctx).Omit("Emails", "Addresses", "Telephones").Create(c).Error
}

func (s *Contacts) UpdateContact(ctx context.Context, c *contact.Contact) error {
	return s.DB.WithContext(ctx).Model(&contact.Contact{ID: c.ID}).
		Updates(map[string]any{
			"name":     c.Name,
			"surname":  c.Surname,
			"ssn":      c.SSN,
			"category": c.Category,
		}).Error
}

func (s *Contacts) DeleteContact(ctx context.Context, id uint64) error {
	db := s.DB.WithContext(ctx)
	for _, join := range []string{"contact_emails", "contact_addresses", "contact_telephones"} {
		if err := db.Exec(fmt.Sprintf(`delete from %s where contact_id = ?`, join), id).Error; err != nil {
			return err
		}
	}
	return db.Delete(&contact.Contact{}, id).Error
}

func (s *Contacts) DeleteMessagesBySender(ctx context.Context, senderID uint64) error {
	db := s.DB.WithContext(ctx)
	if err := db.Exec(`delete from actions where message_id in (select id from messages where sender_id = ?)`, senderID).Error; err != nil {
		return err
	}
	return db.Where("sender_id = ?", senderID).Delete(&message.Message{}).Error
}

func (s *Contacts) FindEmail(ctx context.Context, value string) (*contact.Email, error) {
	var e contact.Email
	err := s.DB.WithContext(ctx).Where("email = ?", value).Order("id").First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Contacts) GetEmail(ctx context.Context, id uint64) (*contact.Email, error) {
	var e contact.Email
	err := s.DB.WithContext(ctx).First(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Contacts) CreateEmail(ctx context.Context, e *contact.Email) error {
	return s.DB.WithContext(ctx).Create(e).Error
}

func (s *Contacts) UpdateEmail(ctx context.Context, e *contact.Email) error {
	return s.DB.WithContext(ctx).Model(&contact.Email{ID: e.ID}).Update("email", e.Email).Error
}

func (s *Contacts) DeleteEmail(ctx context.Context, id uint64) error {
	return s.DB.WithContext(ctx).Delete(&contact.Email{}, id).Error
}

func (s *Contacts) LinkEmail(ctx context.Context, contactID, emailID uint64) error {
	return s.DB.WithContext(ctx).
		Exec(`insert into contact_emails (contact_id, email_id) values (?, ?) on conflict do nothing`, contactID, emailID).Error
}

func (s *Contacts) UnlinkEmail(ctx context.Context, contactID, emailID uint64) error {
	return s.DB.WithContext(ctx).
		Exec(`delete from contact_emails where contact_id = ? and email_id = ?`, contactID, emailID).Error
}

func (s *Contacts) EmailLinked(ctx context.Context, contactID, emailID uint64) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Table("contact_emails").
		Where("contact_id = ? and email_id = ?", contactID, emailID).Count(&n).Error
	return n > 0, err
}

func (s *Contacts) EmailOwners(ctx context.Context, emailID uint64) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Table("contact_emails").Where("email_id = ?", emailID).Count(&n).Error
	return n, err
}

func (s *Contacts) FindAddress(ctx context.Context, value string) (*contact.Address, error) {
	var a contact.Address
	err := s.DB.WithContext(ctx).Where("address = ?", value).Order("id").First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Contacts) GetAddress(ctx context.Context, id uint64) (*contact.Address, error) {
	var a contact.Address
	err := s.DB.WithContext(ctx).First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Contacts) CreateAddress(ctx context.Context, a *contact.Address) error {
	return s.DB.WithContext(ctx).Create(a).Error
}

func (s *Contacts) UpdateAddress(ctx context.Context, a *contact.Address) error {
	return s.DB.WithContext(ctx).Model(&contact.Address{ID: a.ID}).Update("address", a.Address).Error
}

func (s *Contacts) DeleteAddress(ctx context.Context, id uint64) error {
	return s.DB.WithContext(ctx).Delete(&contact.Address{}, id).Error
}

func (s *Contacts) LinkAddress(ctx context.Context, contactID, addressID uint64) error {
	return s.DB.WithContext(ctx).
		Exec(`insert into contact_addresses (contact_id, address_id) values (?, ?) on conflict do nothing`, contactID, addressID).Error
}

func (s *Contacts) UnlinkAddress(ctx context.Context, contactID, addressID uint64) error {
	return s.DB.WithContext(ctx).
		Exec(`delete from contact_addresses where contact_id = ? and address_id = ?`, contactID, addressID).Error
}

func (s *Contacts) AddressLinked(ctx context.Context, contactID, addressID uint64) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Table("contact_addresses").
		Where("contact_id = ? and address_id = ?", contactID, addressID).Count(&n).Error
	return n > 0, err
}

func (s *Contacts) AddressOwners(ctx context.Context, addressID uint64) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Table("contact_addresses").Where("address_id = ?", addressID).Count(&n).Error
	return n, err
}

func (s *Contacts) FindTelephone(ctx context.Context, prefix, number string) (*contact.Telephone, error) {
	var t contact.Telephone
	err := s.DB.WithContext(ctx).Where("prefix = ? and number = ?", prefix, number).Order("id").First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Contacts) GetTelephone(ctx context.Context, id uint64) (*contact.Telephone, error) {
	var t contact.Telephone
	err := s.DB.WithContext(ctx).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Contacts) CreateTelephone(ctx context.Context, t *contact.Telephone) error {
	return s.DB.WithContext(ctx).Create(t).Error
}

func (s *Contacts) UpdateTelephone(ctx context.Context, t *contact.Telephone) error {
	return s.DB.WithContext(ctx).Model(&contact.Telephone{ID: t.ID}).
		Updates(map[string]any{"prefix": t.Prefix, "number": t.Number}).Error
}

func (s *Contacts) DeleteTelephone(ctx context.Context, id uint64) error {
	return s.DB.WithContext(ctx).Delete(&contact.Telephone{}, id).Error
}

func (s *Contacts) LinkTelephone(ctx context.Context, contactID, telephoneID uint64) error {
	return s.DB.WithContext(ctx).
		Exec(`insert into contact_telephones (contact_id, telephone_id) values (?, ?) on conflict do nothing`, contactID, telephoneID).Error
}

func (s *Contacts) UnlinkTelephone(ctx context.Context, contactID, telephoneID uint64) error {
	return s.DB.WithContext(ctx).
		Exec(`delete from contact_telephones where contact_id = ? and telephone_id = ?`, contactID, telephoneID).Error
}

func (s *Contacts) TelephoneLinked(ctx context.Context, contactID, telephoneID uint64) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Table("contact_telephones").
		Where("contact_id = ? and telephone_id = ?", contactID, telephoneID).Count(&n).Error
	return n > 0, err
}

func (s *Contacts) TelephoneOwners(ctx context.Context, telephoneID uint64) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Table("contact_telephones").Where("telephone_id = ?", telephoneID).Count(&n).Error
	return n, err
}
