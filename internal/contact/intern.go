package contact

import (
	"context"
	"fmt"
	"strings"
)

// NormalizeTelephone splits a raw phone number into a 2-character prefix and
// the remaining digits. A single leading + is stripped first. The 2-character
// split is a deliberate format assumption (country-code-less local prefixes),
// not a general phone-number parser.
func NormalizeTelephone(raw string) (prefix, number string, err error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "+")
	if len(raw) < 3 {
		return "", "", fmt.Errorf("%w: telephone must have a prefix and a number", ErrValidation)
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return "", "", fmt.Errorf("%w: telephone must contain only digits", ErrValidation)
		}
	}
	return raw[:2], raw[2:], nil
}

func (in TelephoneInput) split() (prefix, number string, err error) {
	if in.Prefix != "" || in.Number != "" {
		prefix = strings.TrimSpace(in.Prefix)
		number = strings.TrimSpace(in.Number)
		if prefix == "" || number == "" {
			return "", "", fmt.Errorf("%w: prefix and number must not be blank", ErrValidation)
		}
		for _, r := range prefix + number {
			if r < '0' || r > '9' {
				return "", "", fmt.Errorf("%w: telephone must contain only digits", ErrValidation)
			}
		}
		return prefix, number, nil
	}
	return NormalizeTelephone(in.Raw)
}

// resolveEmail returns the shared row for value, creating it when absent.
func resolveEmail(ctx context.Context, st Store, value string) (*Email, error) {
	e, err := st.FindEmail(ctx, value)
	if err != nil {
		return nil, err
	}
	if e != nil {
		return e, nil
	}
	e = &Email{Email: value}
	if err := st.CreateEmail(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// detachEmail removes one membership and deletes the row once orphaned.
func detachEmail(ctx context.Context, st Store, contactID, emailID uint64) error {
	if err := st.UnlinkEmail(ctx, contactID, emailID); err != nil {
		return err
	}
	owners, err := st.EmailOwners(ctx, emailID)
	if err != nil {
		return err
	}
	if owners == 0 {
		return st.DeleteEmail(ctx, emailID)
	}
	return nil
}

func resolveAddress(ctx context.Context, st Store, value string) (*Address, error) {
	a, err := st.FindAddress(ctx, value)
	if err != nil {
		return nil, err
	}
	if a != nil {
		return a, nil
	}
	a = &Address{Address: value}
	if err := st.CreateAddress(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func detachAddress(ctx context.Context, st Store, contactID, addressID uint64) error {
	if err := st.UnlinkAddress(ctx, contactID, addressID); err != nil {
		return err
	}
	owners, err := st.AddressOwners(ctx, addressID)
	if err != nil {
		return err
	}
	if owners == 0 {
		return st.DeleteAddress(ctx, addressID)
	}
	return nil
}

func resolveTelephone(ctx context.Context, st Store, prefix, number string) (*Telephone, error) {
	t, err := st.FindTelephone(ctx, prefix, number)
	if err != nil {
		return nil, err
	}
	if t != nil {
		return t, nil
	}
	t = &Telephone{Prefix: prefix, Number: number}
	if err := st.CreateTelephone(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func detachTelephone(ctx context.Context, st Store, contactID, telephoneID uint64) error {
	if err := st.UnlinkTelephone(ctx, contactID, telephoneID); err != nil {
		return err
	}
	owners, err := st.TelephoneOwners(ctx, telephoneID)
	if err != nil {
		return err
	}
	if owners == 0 {
		return st.DeleteTelephone(ctx, telephoneID)
	}
	return nil
}
