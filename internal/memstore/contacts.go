package memstore

import (
	"context"
	"sort"
	"strings"

	"placement/internal/contact"
)

type Contacts struct {
	db *DB
}

func (d *DB) Contacts() *Contacts { return &Contacts{db: d} }

var _ contact.Store = (*Contacts)(nil)

func (s *Contacts) Transact(_ context.Context, fn func(contact.Store) error) error {
	return fn(s)
}

func (s *Contacts) loaded(c *contact.Contact) *contact.Contact {
	out := *c
	out.Emails = nil
	out.Addresses = nil
	out.Telephones = nil
	for _, id := range sortedSet(s.db.contactEmails[c.ID]) {
		out.Emails = append(out.Emails, *s.db.emails[id])
	}
	for _, id := range sortedSet(s.db.contactAddresses[c.ID]) {
		out.Addresses = append(out.Addresses, *s.db.addresses[id])
	}
	for _, id := range sortedSet(s.db.contactTelephones[c.ID]) {
		out.Telephones = append(out.Telephones, *s.db.telephones[id])
	}
	return &out
}

func sortedSet(set map[uint64]bool) []uint64 {
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Contacts) GetContact(_ context.Context, id uint64) (*contact.Contact, error) {
	c, ok := s.db.contacts[id]
	if !ok {
		return nil, nil
	}
	return s.loaded(c), nil
}

func (s *Contacts) ListContacts(_ context.Context, q contact.Query) ([]contact.Contact, int64, error) {
	match := func(c *contact.Contact) bool {
		if q.Name == "" && q.Surname == "" && q.Email == "" && q.Telephone == "" {
			return true
		}
		if q.Name != "" && containsFold(c.Name, q.Name) {
			return true
		}
		if q.Surname != "" && containsFold(c.Surname, q.Surname) {
			return true
		}
		if q.Email != "" {
			for id := range s.db.contactEmails[c.ID] {
				if containsFold(s.db.emails[id].Email, q.Email) {
					return true
				}
			}
		}
		if q.Telephone != "" {
			for id := range s.db.contactTelephones[c.ID] {
				t := s.db.telephones[id]
				if containsFold(t.Prefix+t.Number, q.Telephone) {
					return true
				}
			}
		}
		return false
	}

	var rows []contact.Contact
	for _, id := range sortedKeys(s.db.contacts) {
		if c := s.db.contacts[id]; match(c) {
			rows = append(rows, *s.loaded(c))
		}
	}

	field := q.Sort
	if field == "" {
		field = "name"
	}
	sort.SliceStable(rows, func(i, j int) bool {
		var less bool
		switch field {
		case "surname":
			less = rows[i].Surname < rows[j].Surname
		case "category":
			less = rows[i].Category < rows[j].Category
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

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func (s *Contacts) CreateContact(_ context.Context, c *contact.Contact) error {
	c.ID = s.db.nextID()
	stored := *c
	stored.Emails, stored.Addresses, stored.Telephones = nil, nil, nil
	s.db.contacts[c.ID] = &stored
	return nil
}

func (s *Contacts) UpdateContact(_ context.Context, c *contact.Contact) error {
	if cur, ok := s.db.contacts[c.ID]; ok {
		cur.Name = c.Name
		cur.Surname = c.Surname
		cur.SSN = c.SSN
		cur.Category = c.Category
	}
	return nil
}

func (s *Contacts) DeleteContact(_ context.Context, id uint64) error {
	delete(s.db.contacts, id)
	delete(s.db.contactEmails, id)
	delete(s.db.contactAddresses, id)
	delete(s.db.contactTelephones, id)
	return nil
}

func (s *Contacts) DeleteMessagesBySender(_ context.Context, senderID uint64) error {
	for id, m := range s.db.messages {
		if m.SenderID != senderID {
			continue
		}
		delete(s.db.messages, id)
		kept := s.db.actions[:0]
		for _, a := range s.db.actions {
			if a.MessageID != id {
				kept = append(kept, a)
			}
		}
		s.db.actions = kept
	}
	return nil
}

func (s *Contacts) FindEmail(_ context.Context, value string) (*contact.Email, error) {
	for _, id := range sortedKeys(s.db.emails) {
		if s.db.emails[id].Email == value {
			e := *s.db.emails[id]
			return &e, nil
		}
	}
	return nil, nil
}

func (s *Contacts) GetEmail(_ context.Context, id uint64) (*contact.Email, error) {
	e, ok := s.db.emails[id]
	if !ok {
		return nil, nil
	}
	out := *e
	return &out, nil
}

func (s *Contacts) CreateEmail(_ context.Context, e *contact.Email) error {
	e.ID = s.db.nextID()
	stored := *e
	s.db.emails[e.ID] = &stored
	return nil
}

func (s *Contacts) UpdateEmail(_ context.Context, e *contact.Email) error {
	if cur, ok := s.db.emails[e.ID]; ok {
		cur.Email = e.Email
	}
	return nil
}

func (s *Contacts) DeleteEmail(_ context.Context, id uint64) error {
	delete(s.db.emails, id)
	return nil
}

func (s *Contacts) LinkEmail(_ context.Context, contactID, emailID uint64) error {
	link(s.db.contactEmails, contactID, emailID)
	return nil
}

func (s *Contacts) UnlinkEmail(_ context.Context, contactID, emailID uint64) error {
	unlink(s.db.contactEmails, contactID, emailID)
	return nil
}

func (s *Contacts) EmailLinked(_ context.Context, contactID, emailID uint64) (bool, error) {
	return s.db.contactEmails[contactID][emailID], nil
}

func (s *Contacts) EmailOwners(_ context.Context, emailID uint64) (int64, error) {
	return owners(s.db.contactEmails, emailID), nil
}

func (s *Contacts) FindAddress(_ context.Context, value string) (*contact.Address, error) {
	for _, id := range sortedKeys(s.db.addresses) {
		if s.db.addresses[id].Address == value {
			a := *s.db.addresses[id]
			return &a, nil
		}
	}
	return nil, nil
}

func (s *Contacts) GetAddress(_ context.Context, id uint64) (*contact.Address, error) {
	a, ok := s.db.addresses[id]
	if !ok {
		return nil, nil
	}
	out := *a
	return &out, nil
}

func (s *Contacts) CreateAddress(_ context.Context, a *contact.Address) error {
	a.ID = s.db.nextID()
	stored := *a
	s.db.addresses[a.ID] = &stored
	return nil
}

func (s *Contacts) UpdateAddress(_ context.Context, a *contact.Address) error {
	if cur, ok := s.db.addresses[a.ID]; ok {
		cur.Address = a.Address
	}
	return nil
}

func (s *Contacts) DeleteAddress(_ context.Context, id uint64) error {
	delete(s.db.addresses, id)
	return nil
}

func (s *Contacts) LinkAddress(_ context.Context, contactID, addressID uint64) error {
	link(s.db.contactAddresses, contactID, addressID)
	return nil
}

func (s *Contacts) UnlinkAddress(_ context.Context, contactID, addressID uint64) error {
	unlink(s.db.contactAddresses, contactID, addressID)
	return nil
}

func (s *Contacts) AddressLinked(_ context.Context, contactID, addressID uint64) (bool, error) {
	return s.db.contactAddresses[contactID][addressID], nil
}

func (s *Contacts) AddressOwners(_ context.Context, addressID uint64) (int64, error) {
	return owners(s.db.contactAddresses, addressID), nil
}

func (s *Contacts) FindTelephone(_ context.Context, prefix, number string) (*contact.Telephone, error) {
	for _, id := range sortedKeys(s.db.telephones) {
		t := s.db.telephones[id]
		if t.Prefix == prefix && t.Number == number {
			out := *t
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Contacts) GetTelephone(_ context.Context, id uint64) (*contact.Telephone, error) {
	t, ok := s.db.telephones[id]
	if !ok {
		return nil, nil
	}
	out := *t
	return &out, nil
}

func (s *Contacts) CreateTelephone(_ context.Context, t *contact.Telephone) error {
	t.ID = s.db.nextID()
	stored := *t
	s.db.telephones[t.ID] = &stored
	return nil
}

func (s *Contacts) UpdateTelephone(_ context.Context, t *contact.Telephone) error {
	if cur, ok := s.db.telephones[t.ID]; ok {
		cur.Prefix = t.Prefix
		cur.Number = t.Number
	}
	return nil
}

func (s *Contacts) DeleteTelephone(_ context.Context, id uint64) error {
	delete(s.db.telephones, id)
	return nil
}

func (s *Contacts) LinkTelephone(_ context.Context, contactID, telephoneID uint64) error {
	link(s.db.contactTelephones, contactID, telephoneID)
	return nil
}

func (s *Contacts) UnlinkTelephone(_ context.Context, contactID, telephoneID uint64) error {
	unlink(s.db.contactTelephones, contactID, telephoneID)
	return nil
}

func (s *Contacts) TelephoneLinked(_ context.Context, contactID, telephoneID uint64) (bool, error) {
	return s.db.contactTelephones[contactID][telephoneID], nil
}

func (s *Contacts) TelephoneOwners(_ context.Context, telephoneID uint64) (int64, error) {
	return owners(s.db.contactTelephones, telephoneID), nil
}
