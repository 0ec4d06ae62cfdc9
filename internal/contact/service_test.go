package contact_test

import (
	"context"
	"testing"
	"time"

	"placement/internal/contact"
	"placement/internal/memstore"
	"placement/internal/message"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*contact.Service, *memstore.DB) {
	t.Helper()
	db := memstore.New()
	return &contact.Service{Store: db.Contacts()}, db
}

func mustCreate(t *testing.T, svc *contact.Service, in contact.CreateInput) *contact.Contact {
	t.Helper()
	c, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	return c
}

func TestCreateWithValues(t *testing.T) {
	svc, _ := newService(t)

	c := mustCreate(t, svc, contact.CreateInput{
		Name:       "Grace",
		Surname:    "Hopper",
		Emails:     []string{"grace@example.com"},
		Addresses:  []string{"12 Navy Way"},
		Telephones: []string{"+39123456"},
	})

	assert.Equal(t, contact.CategoryUnknown, c.Category)
	require.Len(t, c.Emails, 1)
	assert.Equal(t, "grace@example.com", c.Emails[0].Email)
	require.Len(t, c.Addresses, 1)
	require.Len(t, c.Telephones, 1)
	assert.Equal(t, "39", c.Telephones[0].Prefix)
	assert.Equal(t, "123456", c.Telephones[0].Number)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, contact.CreateInput{Surname: "Hopper"})
	assert.ErrorIs(t, err, contact.ErrValidation)

	_, err = svc.Create(ctx, contact.CreateInput{Name: "Grace", Surname: "  "})
	assert.ErrorIs(t, err, contact.ErrValidation)

	_, err = svc.Create(ctx, contact.CreateInput{Name: "G", Surname: "H", Emails: []string{" "}})
	assert.ErrorIs(t, err, contact.ErrValidation)

	_, err = svc.Create(ctx, contact.CreateInput{Name: "G", Surname: "H", Category: "FRIEND"})
	assert.ErrorIs(t, err, contact.ErrValidation)
}

func TestSharedValuesAreInterned(t *testing.T) {
	svc, db := newService(t)

	a := mustCreate(t, svc, contact.CreateInput{Name: "A", Surname: "One", Emails: []string{"shared@example.com"}})
	b := mustCreate(t, svc, contact.CreateInput{Name: "B", Surname: "Two", Emails: []string{"shared@example.com"}})

	require.Len(t, a.Emails, 1)
	require.Len(t, b.Emails, 1)
	assert.Equal(t, a.Emails[0].ID, b.Emails[0].ID, "same value resolves to the same row")
	assert.Equal(t, 1, db.EmailRows())
}

func TestAddEmailIsIdempotent(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	c := mustCreate(t, svc, contact.CreateInput{Name: "A", Surname: "One", Emails: []string{"a@example.com"}})

	c, err := svc.AddEmail(ctx, c.ID, "a@example.com")
	require.NoError(t, err)
	assert.Len(t, c.Emails, 1)
	assert.Equal(t, 1, db.EmailRows())
}

func TestDeleteEmailKeepsSharedRow(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, contact.CreateInput{Name: "A", Surname: "One", Emails: []string{"shared@example.com"}})
	mustCreate(t, svc, contact.CreateInput{Name: "B", Surname: "Two", Emails: []string{"shared@example.com"}})

	a, err := svc.DeleteEmail(ctx, a.ID, a.Emails[0].ID)
	require.NoError(t, err)
	assert.Empty(t, a.Emails)
	assert.Equal(t, 1, db.EmailRows(), "row survives while another contact owns it")
}

func TestDeleteEmailRemovesOrphan(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	c := mustCreate(t, svc, contact.CreateInput{Name: "A", Surname: "One", Emails: []string{"solo@example.com"}})

	_, err := svc.DeleteEmail(ctx, c.ID, c.Emails[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 0, db.EmailRows(), "orphaned value rows are deleted")
}

func TestChangeEmailSoleOwnerRenames(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	c := mustCreate(t, svc, contact.CreateInput{Name: "A", Surname: "One", Emails: []string{"x@example.com"}})
	oldID := c.Emails[0].ID

	c, err := svc.ChangeEmail(ctx, c.ID, oldID, "y@example.com")
	require.NoError(t, err)
	require.Len(t, c.Emails, 1)
	assert.Equal(t, oldID, c.Emails[0].ID, "sole owner renames in place")
	assert.Equal(t, "y@example.com", c.Emails[0].Email)
	assert.Equal(t, 1, db.EmailRows())
}

func TestChangeEmailSharedSplits(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, contact.CreateInput{Name: "A", Surname: "One", Emails: []string{"x@example.com"}})
	b := mustCreate(t, svc, contact.CreateInput{Name: "B", Surname: "Two", Emails: []string{"x@example.com"}})
	sharedID := a.Emails[0].ID

	a, err := svc.ChangeEmail(ctx, a.ID, sharedID, "y@example.com")
	require.NoError(t, err)
	require.Len(t, a.Emails, 1)
	assert.NotEqual(t, sharedID, a.Emails[0].ID, "shared value splits into a new row")
	assert.Equal(t, "y@example.com", a.Emails[0].Email)

	b, err = svc.Get(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, b.Emails, 1)
	assert.Equal(t, sharedID, b.Emails[0].ID)
	assert.Equal(t, "x@example.com", b.Emails[0].Email, "other owner is unaffected")
	assert.Equal(t, 2, db.EmailRows())
}

func TestChangeEmailOntoExistingRowRepoints(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, contact.CreateInput{Name: "A", Surname: "One", Emails: []string{"x@example.com"}})
	b := mustCreate(t, svc, contact.CreateInput{Name: "B", Surname: "Two", Emails: []string{"y@example.com"}})

	a, err := svc.ChangeEmail(ctx, a.ID, a.Emails[0].ID, "y@example.com")
	require.NoError(t, err)
	require.Len(t, a.Emails, 1)
	assert.Equal(t, b.Emails[0].ID, a.Emails[0].ID, "rename onto an existing value shares its row")
	assert.Equal(t, 1, db.EmailRows(), "the orphaned old row is gone")
}

func TestChangeEmailNotOwned(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, contact.CreateInput{Name: "A", Surname: "One", Emails: []string{"x@example.com"}})
	b := mustCreate(t, svc, contact.CreateInput{Name: "B", Surname: "Two", Emails: []string{"y@example.com"}})

	_, err := svc.ChangeEmail(ctx, a.ID, b.Emails[0].ID, "z@example.com")
	assert.ErrorIs(t, err, contact.ErrNotFound)
}

func TestTelephoneSplitVariants(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	c := mustCreate(t, svc, contact.CreateInput{Name: "A", Surname: "One"})

	c, err := svc.AddTelephone(ctx, c.ID, contact.TelephoneInput{Raw: "+39123456"})
	require.NoError(t, err)
	require.Len(t, c.Telephones, 1)
	assert.Equal(t, "39", c.Telephones[0].Prefix)
	assert.Equal(t, "123456", c.Telephones[0].Number)

	// Same number pre-split resolves to the same interned row.
	c, err = svc.AddTelephone(ctx, c.ID, contact.TelephoneInput{Prefix: "39", Number: "123456"})
	require.NoError(t, err)
	assert.Len(t, c.Telephones, 1)
	assert.Equal(t, 1, db.TelephoneRows())

	_, err = svc.AddTelephone(ctx, c.ID, contact.TelephoneInput{Raw: "12"})
	assert.ErrorIs(t, err, contact.ErrValidation)

	_, err = svc.AddTelephone(ctx, c.ID, contact.TelephoneInput{Raw: "39-123456"})
	assert.ErrorIs(t, err, contact.ErrValidation)
}

func TestUpdateAndChangeCategory(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	c := mustCreate(t, svc, contact.CreateInput{Name: "Grace", Surname: "Hopper"})

	name := "Grace Brewster"
	ssn := "123-45-6789"
	c, err := svc.Update(ctx, c.ID, contact.UpdateInput{Name: &name, SSN: &ssn})
	require.NoError(t, err)
	assert.Equal(t, "Grace Brewster", c.Name)
	assert.Equal(t, "Hopper", c.Surname)
	require.NotNil(t, c.SSN)
	assert.Equal(t, ssn, *c.SSN)

	c, err = svc.ChangeCategory(ctx, c.ID, contact.CategoryProfessional)
	require.NoError(t, err)
	assert.Equal(t, contact.CategoryProfessional, c.Category)

	_, err = svc.ChangeCategory(ctx, c.ID, "FRIEND")
	assert.ErrorIs(t, err, contact.ErrValidation)
}

func TestDeleteCascades(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, contact.CreateInput{
		Name:    "A",
		Surname: "One",
		Emails:  []string{"solo@example.com", "shared@example.com"},
	})
	mustCreate(t, svc, contact.CreateInput{Name: "B", Surname: "Two", Emails: []string{"shared@example.com"}})

	msgSvc := &message.Service{Store: db.Messages()}
	m, err := msgSvc.Create(ctx, message.CreateInput{
		SenderID: a.ID,
		Channel:  message.ChannelTextMessage,
		Date:     time.Now(),
	})
	require.NoError(t, err)
	_, err = msgSvc.ChangeState(ctx, m.ID, message.StateRead, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, a.ID))

	_, err = svc.Get(ctx, a.ID)
	assert.ErrorIs(t, err, contact.ErrNotFound)
	assert.Equal(t, 1, db.EmailRows(), "only the shared value survives")

	_, err = msgSvc.Get(ctx, m.ID)
	assert.ErrorIs(t, err, message.ErrNotFound, "sent messages go with the sender")
	history, err := db.Messages().Actions(ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, history, "action history goes with the message")
}

func TestListFilters(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	mustCreate(t, svc, contact.CreateInput{Name: "Grace", Surname: "Hopper", Emails: []string{"grace@navy.mil"}})
	mustCreate(t, svc, contact.CreateInput{Name: "Ada", Surname: "Lovelace", Telephones: []string{"44123456"}})

	got, total, err := svc.List(ctx, contact.Query{Limit: 10, Name: "gra"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, "Grace", got[0].Name)

	// Filters OR together.
	got, total, err = svc.List(ctx, contact.Query{Limit: 10, Name: "gra", Telephone: "44123"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, got, 2)

	_, _, err = svc.List(ctx, contact.Query{Limit: 0})
	assert.ErrorIs(t, err, contact.ErrValidation)
}
