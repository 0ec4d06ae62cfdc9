package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("invalid input")
)

type Service struct {
	Store Store
}

type CreateInput struct {
	Name       string
	Surname    string
	SSN        *string
	Category   Category
	Emails     []string
	Addresses  []string
	Telephones []string
}

// TelephoneInput carries either an already-split prefix/number pair or a raw
// number to be normalized. When Prefix is set, no splitting occurs.
type TelephoneInput struct {
	Raw    string
	Prefix string
	Number string
}

type UpdateInput struct {
	Name    *string
	Surname *string
	SSN     *string
}

func (s *Service) List(ctx context.Context, q Query) ([]Contact, int64, error) {
	if q.Page < 0 {
		return nil, 0, fmt.Errorf("%w: page must be >= 0", ErrValidation)
	}
	if q.Limit <= 0 {
		return nil, 0, fmt.Errorf("%w: limit must be > 0", ErrValidation)
	}
	return s.Store.ListContacts(ctx, q)
}

func (s *Service) Get(ctx context.Context, id uint64) (*Contact, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: contact id must be > 0", ErrValidation)
	}
	c, err := s.Store.GetContact(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: contact %d", ErrNotFound, id)
	}
	return c, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Contact, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name must not be blank", ErrValidation)
	}
	if strings.TrimSpace(in.Surname) == "" {
		return nil, fmt.Errorf("%w: surname must not be blank", ErrValidation)
	}
	if in.Category == "" {
		in.Category = CategoryUnknown
	}
	if _, ok := ParseCategory(string(in.Category)); !ok {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, in.Category)
	}
	for _, v := range in.Emails {
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("%w: email must not be blank", ErrValidation)
		}
	}
	for _, v := range in.Addresses {
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("%w: address must not be blank", ErrValidation)
		}
	}
	phones := make([][2]string, 0, len(in.Telephones))
	for _, v := range in.Telephones {
		prefix, number, err := NormalizeTelephone(v)
		if err != nil {
			return nil, err
		}
		phones = append(phones, [2]string{prefix, number})
	}

	var out *Contact
	err := s.Store.Transact(ctx, func(st Store) error {
		c := &Contact{
			Name:     strings.TrimSpace(in.Name),
			Surname:  strings.TrimSpace(in.Surname),
			SSN:      in.SSN,
			Category: in.Category,
		}
		if err := st.CreateContact(ctx, c); err != nil {
			return err
		}
		for _, v := range in.Emails {
			e, err := resolveEmail(ctx, st, strings.TrimSpace(v))
			if err != nil {
				return err
			}
			if err := st.LinkEmail(ctx, c.ID, e.ID); err != nil {
				return err
			}
		}
		for _, v := range in.Addresses {
			a, err := resolveAddress(ctx, st, strings.TrimSpace(v))
			if err != nil {
				return err
			}
			if err := st.LinkAddress(ctx, c.ID, a.ID); err != nil {
				return err
			}
		}
		for _, p := range phones {
			t, err := resolveTelephone(ctx, st, p[0], p[1])
			if err != nil {
				return err
			}
			if err := st.LinkTelephone(ctx, c.ID, t.ID); err != nil {
				return err
			}
		}
		var err error
		out, err = st.GetContact(ctx, c.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, id uint64, in UpdateInput) (*Contact, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: contact id must be > 0", ErrValidation)
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, fmt.Errorf("%w: name must not be blank", ErrValidation)
	}
	if in.Surname != nil && strings.TrimSpace(*in.Surname) == "" {
		return nil, fmt.Errorf("%w: surname must not be blank", ErrValidation)
	}

	var out *Contact
	err := s.Store.Transact(ctx, func(st Store) error {
		c, err := st.GetContact(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("%w: contact %d", ErrNotFound, id)
		}
		if in.Name != nil {
			c.Name = strings.TrimSpace(*in.Name)
		}
		if in.Surname != nil {
			c.Surname = strings.TrimSpace(*in.Surname)
		}
		if in.SSN != nil {
			c.SSN = in.SSN
		}
		if err := st.UpdateContact(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a contact, detaching every shared value (deleting the ones it
// was the last owner of) and cascading to the messages it sent.
func (s *Service) Delete(ctx context.Context, id uint64) error {
	if id == 0 {
		return fmt.Errorf("%w: contact id must be > 0", ErrValidation)
	}
	return s.Store.Transact(ctx, func(st Store) error {
		c, err := st.GetContact(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("%w: contact %d", ErrNotFound, id)
		}
		for _, e := range c.Emails {
			if err := detachEmail(ctx, st, c.ID, e.ID); err != nil {
				return err
			}
		}
		for _, a := range c.Addresses {
			if err := detachAddress(ctx, st, c.ID, a.ID); err != nil {
				return err
			}
		}
		for _, t := range c.Telephones {
			if err := detachTelephone(ctx, st, c.ID, t.ID); err != nil {
				return err
			}
		}
		if err := st.DeleteMessagesBySender(ctx, c.ID); err != nil {
			return err
		}
		return st.DeleteContact(ctx, c.ID)
	})
}

func (s *Service) ChangeCategory(ctx context.Context, id uint64, category Category) (*Contact, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: contact id must be > 0", ErrValidation)
	}
	if _, ok := ParseCategory(string(category)); !ok {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, category)
	}
	var out *Contact
	err := s.Store.Transact(ctx, func(st Store) error {
		c, err := st.GetContact(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("%w: contact %d", ErrNotFound, id)
		}
		c.Category = category
		if err := st.UpdateContact(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) AddEmail(ctx context.Context, contactID uint64, value string) (*Contact, error) {
	value = strings.TrimSpace(value)
	if contactID == 0 {
		return nil, fmt.Errorf("%w: contact id must be > 0", ErrValidation)
	}
	if value == "" {
		return nil, fmt.Errorf("%w: email must not be blank", ErrValidation)
	}
	return s.attach(ctx, contactID, func(st Store, c *Contact) error {
		e, err := resolveEmail(ctx, st, value)
		if err != nil {
			return err
		}
		return st.LinkEmail(ctx, c.ID, e.ID)
	})
}

func (s *Service) ChangeEmail(ctx context.Context, contactID, emailID uint64, newValue string) (*Contact, error) {
	newValue = strings.TrimSpace(newValue)
	if contactID == 0 || emailID == 0 {
		return nil, fmt.Errorf("%w: ids must be > 0", ErrValidation)
	}
	if newValue == "" {
		return nil, fmt.Errorf("%w: email must not be blank", ErrValidation)
	}
	return s.attach(ctx, contactID, func(st Store, c *Contact) error {
		e, err := st.GetEmail(ctx, emailID)
		if err != nil {
			return err
		}
		if e == nil {
			return fmt.Errorf("%w: email %d", ErrNotFound, emailID)
		}
		linked, err := st.EmailLinked(ctx, c.ID, e.ID)
		if err != nil {
			return err
		}
		if !linked {
			return fmt.Errorf("%w: email %d does not belong to contact %d", ErrNotFound, emailID, c.ID)
		}
		if e.Email == newValue {
			return nil
		}

		// The value is unique across the table: renaming onto an existing
		// row re-points the contact at that row instead.
		existing, err := st.FindEmail(ctx, newValue)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := detachEmail(ctx, st, c.ID, e.ID); err != nil {
				return err
			}
			return st.LinkEmail(ctx, c.ID, existing.ID)
		}

		owners, err := st.EmailOwners(ctx, e.ID)
		if err != nil {
			return err
		}
		if owners == 1 {
			// Sole owner: a true rename, nobody else can observe it.
			e.Email = newValue
			return st.UpdateEmail(ctx, e)
		}
		if err := detachEmail(ctx, st, c.ID, e.ID); err != nil {
			return err
		}
		fresh, err := resolveEmail(ctx, st, newValue)
		if err != nil {
			return err
		}
		return st.LinkEmail(ctx, c.ID, fresh.ID)
	})
}

func (s *Service) DeleteEmail(ctx context.Context, contactID, emailID uint64) (*Contact, error) {
	if contactID == 0 || emailID == 0 {
		return nil, fmt.Errorf("%w: ids must be > 0", ErrValidation)
	}
	return s.attach(ctx, contactID, func(st Store, c *Contact) error {
		e, err := st.GetEmail(ctx, emailID)
		if err != nil {
			return err
		}
		if e == nil {
			return fmt.Errorf("%w: email %d", ErrNotFound, emailID)
		}
		linked, err := st.EmailLinked(ctx, c.ID, e.ID)
		if err != nil {
			return err
		}
		if !linked {
			return fmt.Errorf("%w: email %d does not belong to contact %d", ErrNotFound, emailID, c.ID)
		}
		return detachEmail(ctx, st, c.ID, e.ID)
	})
}

func (s *Service) AddAddress(ctx context.Context, contactID uint64, value string) (*Contact, error) {
	value = strings.TrimSpace(value)
	if contactID == 0 {
		return nil, fmt.Errorf("%w: contact id must be > 0", ErrValidation)
	}
	if value == "" {
		return nil, fmt.Errorf("%w: address must not be blank", ErrValidation)
	}
	return s.attach(ctx, contactID, func(st Store, c *Contact) error {
		a, err := resolveAddress(ctx, st, value)
		if err != nil {
			return err
		}
		return st.LinkAddress(ctx, c.ID, a.ID)
	})
}

func (s *Service) ChangeAddress(ctx context.Context, contactID, addressID uint64, newValue string) (*Contact, error) {
	newValue = strings.TrimSpace(newValue)
	if contactID == 0 || addressID == 0 {
		return nil, fmt.Errorf("%w: ids must be > 0", ErrValidation)
	}
	if newValue == "" {
		return nil, fmt.Errorf("%w: address must not be blank", ErrValidation)
	}
	return s.attach(ctx, contactID, func(st Store, c *Contact) error {
		a, err := st.GetAddress(ctx, addressID)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("%w: address %d", ErrNotFound, addressID)
		}
		linked, err := st.AddressLinked(ctx, c.ID, a.ID)
		if err != nil {
			return err
		}
		if !linked {
			return fmt.Errorf("%w: address %d does not belong to contact %d", ErrNotFound, addressID, c.ID)
		}
		if a.Address == newValue {
			return nil
		}

		existing, err := st.FindAddress(ctx, newValue)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := detachAddress(ctx, st, c.ID, a.ID); err != nil {
				return err
			}
			return st.LinkAddress(ctx, c.ID, existing.ID)
		}

		owners, err := st.AddressOwners(ctx, a.ID)
		if err != nil {
			return err
		}
		if owners == 1 {
			a.Address = newValue
			return st.UpdateAddress(ctx, a)
		}
		if err := detachAddress(ctx, st, c.ID, a.ID); err != nil {
			return err
		}
		fresh, err := resolveAddress(ctx, st, newValue)
		if err != nil {
			return err
		}
		return st.LinkAddress(ctx, c.ID, fresh.ID)
	})
}

func (s *Service) DeleteAddress(ctx context.Context, contactID, addressID uint64) (*Contact, error) {
	if contactID == 0 || addressID == 0 {
		return nil, fmt.Errorf("%w: ids must be > 0", ErrValidation)
	}
	return s.attach(ctx, contactID, func(st Store, c *Contact) error {
		a, err := st.GetAddress(ctx, addressID)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("%w: address %d", ErrNotFound, addressID)
		}
		linked, err := st.AddressLinked(ctx, c.ID, a.ID)
		if err != nil {
			return err
		}
		if !linked {
			return fmt.Errorf("%w: address %d does not belong to contact %d", ErrNotFound, addressID, c.ID)
		}
		return detachAddress(ctx, st, c.ID, a.ID)
	})
}

func (s *Service) AddTelephone(ctx context.Context, contactID uint64, in TelephoneInput) (*Contact, error) {
	if contactID == 0 {
		return nil, fmt.Errorf("%w: contact id must be > 0", ErrValidation)
	}
	prefix, number, err := in.split()
	if err != nil {
		return nil, err
	}
	return s.attach(ctx, contactID, func(st Store, c *Contact) error {
		t, err := resolveTelephone(ctx, st, prefix, number)
		if err != nil {
			return err
		}
		return st.LinkTelephone(ctx, c.ID, t.ID)
	})
}

func (s *Service) ChangeTelephone(ctx context.Context, contactID, telephoneID uint64, in TelephoneInput) (*Contact, error) {
	if contactID == 0 || telephoneID == 0 {
		return nil, fmt.Errorf("%w: ids must be > 0", ErrValidation)
	}
	prefix, number, err := in.split()
	if err != nil {
		return nil, err
	}
	return s.attach(ctx, contactID, func(st Store, c *Contact) error {
		t, err := st.GetTelephone(ctx, telephoneID)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("%w: telephone %d", ErrNotFound, telephoneID)
		}
		linked, err := st.TelephoneLinked(ctx, c.ID, t.ID)
		if err != nil {
			return err
		}
		if !linked {
			return fmt.Errorf("%w: telephone %d does not belong to contact %d", ErrNotFound, telephoneID, c.ID)
		}
		if t.Prefix == prefix && t.Number == number {
			return nil
		}

		existing, err := st.FindTelephone(ctx, prefix, number)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := detachTelephone(ctx, st, c.ID, t.ID); err != nil {
				return err
			}
			return st.LinkTelephone(ctx, c.ID, existing.ID)
		}

		owners, err := st.TelephoneOwners(ctx, t.ID)
		if err != nil {
			return err
		}
		if owners == 1 {
			t.Prefix = prefix
			t.Number = number
			return st.UpdateTelephone(ctx, t)
		}
		if err := detachTelephone(ctx, st, c.ID, t.ID); err != nil {
			return err
		}
		fresh, err := resolveTelephone(ctx, st, prefix, number)
		if err != nil {
			return err
		}
		return st.LinkTelephone(ctx, c.ID, fresh.ID)
	})
}

func (s *Service) DeleteTelephone(ctx context.Context, contactID, telephoneID uint64) (*Contact, error) {
	if contactID == 0 || telephoneID == 0 {
		return nil, fmt.Errorf("%w: ids must be > 0", ErrValidation)
	}
	return s.attach(ctx, contactID, func(st Store, c *Contact) error {
		t, err := st.GetTelephone(ctx, telephoneID)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("%w: telephone %d", ErrNotFound, telephoneID)
		}
		linked, err := st.TelephoneLinked(ctx, c.ID, t.ID)
		if err != nil {
			return err
		}
		if !linked {
			return fmt.Errorf("%w: telephone %d does not belong to contact %d", ErrNotFound, telephoneID, c.ID)
		}
		return detachTelephone(ctx, st, c.ID, t.ID)
	})
}

// attach runs fn against an existing contact inside one transaction and
// returns the reloaded aggregate.
func (s *Service) attach(ctx context.Context, contactID uint64, fn func(Store, *Contact) error) (*Contact, error) {
	var out *Contact
	err := s.Store.Transact(ctx, func(st Store) error {
		c, err := st.GetContact(ctx, contactID)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("%w: contact %d", ErrNotFound, contactID)
		}
		if err := fn(st, c); err != nil {
			return err
		}
		out, err = st.GetContact(ctx, contactID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
