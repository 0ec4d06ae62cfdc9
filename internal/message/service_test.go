package message_test

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

func newService(t *testing.T) (*message.Service, *memstore.DB, uint64) {
	t.Helper()
	db := memstore.New()
	sender := &contact.Contact{Name: "Ada", Surname: "Lovelace"}
	require.NoError(t, db.Contacts().CreateContact(context.Background(), sender))
	return &message.Service{Store: db.Messages()}, db, sender.ID
}

func receivedMessage(t *testing.T, svc *message.Service, senderID uint64) *message.Message {
	t.Helper()
	subject := "cv attached"
	m, err := svc.Create(context.Background(), message.CreateInput{
		SenderID: senderID,
		Channel:  message.ChannelEmail,
		Subject:  &subject,
		Date:     time.Now(),
	})
	require.NoError(t, err)
	return m
}

func TestCreateStartsReceived(t *testing.T) {
	svc, _, senderID := newService(t)

	m := receivedMessage(t, svc, senderID)
	assert.Equal(t, message.StateReceived, m.State)
	assert.Equal(t, 0, m.Priority)

	got, err := svc.Get(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)

	history, err := svc.History(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Empty(t, history, "creation records no action")
}

func TestCreateValidation(t *testing.T) {
	svc, _, senderID := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, message.CreateInput{Channel: message.ChannelEmail, Date: time.Now()})
	assert.ErrorIs(t, err, message.ErrValidation)

	_, err = svc.Create(ctx, message.CreateInput{SenderID: senderID, Channel: "CARRIER_PIGEON", Date: time.Now()})
	assert.ErrorIs(t, err, message.ErrValidation)

	blank := "   "
	_, err = svc.Create(ctx, message.CreateInput{SenderID: senderID, Channel: message.ChannelEmail, Subject: &blank, Date: time.Now()})
	assert.ErrorIs(t, err, message.ErrValidation)

	_, err = svc.Create(ctx, message.CreateInput{SenderID: senderID, Channel: message.ChannelEmail})
	assert.ErrorIs(t, err, message.ErrValidation)
}

func TestCreateUnknownSender(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Create(context.Background(), message.CreateInput{
		SenderID: 9999,
		Channel:  message.ChannelPhoneCall,
		Date:     time.Now(),
	})
	assert.ErrorIs(t, err, message.ErrNotFound)
}

func TestLifecycleHappyPath(t *testing.T) {
	svc, _, senderID := newService(t)
	ctx := context.Background()

	m := receivedMessage(t, svc, senderID)

	m, err := svc.ChangeState(ctx, m.ID, message.StateRead, nil)
	require.NoError(t, err)
	assert.Equal(t, message.StateRead, m.State)

	comment := "handled by operator"
	m, err = svc.ChangeState(ctx, m.ID, message.StateDone, &comment)
	require.NoError(t, err)
	assert.Equal(t, message.StateDone, m.State)

	// DONE is terminal: going back to READ must be rejected and leave the
	// history as-is.
	_, err = svc.ChangeState(ctx, m.ID, message.StateRead, nil)
	assert.ErrorIs(t, err, message.ErrWrongState)

	history, err := svc.History(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, message.StateRead, history[0].State)
	assert.Equal(t, message.StateDone, history[1].State)
	require.NotNil(t, history[1].Comment)
	assert.Equal(t, comment, *history[1].Comment)
}

func TestIllegalTransitionLeavesMessage(t *testing.T) {
	svc, _, senderID := newService(t)
	ctx := context.Background()

	m := receivedMessage(t, svc, senderID)

	_, err := svc.ChangeState(ctx, m.ID, message.StateDone, nil)
	assert.ErrorIs(t, err, message.ErrWrongState)

	got, err := svc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, message.StateReceived, got.State)

	history, err := svc.History(ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestChangeStateUnknown(t *testing.T) {
	svc, _, senderID := newService(t)

	m := receivedMessage(t, svc, senderID)
	_, err := svc.ChangeState(context.Background(), m.ID, "ARCHIVED", nil)
	assert.ErrorIs(t, err, message.ErrValidation)
}

func TestChangeStateNotFound(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.ChangeState(context.Background(), 42, message.StateRead, nil)
	assert.ErrorIs(t, err, message.ErrNotFound)
}

func TestChangePriority(t *testing.T) {
	svc, _, senderID := newService(t)
	ctx := context.Background()

	m := receivedMessage(t, svc, senderID)

	m, err := svc.ChangePriority(ctx, m.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, m.Priority)

	_, err = svc.ChangePriority(ctx, m.ID, -1)
	assert.ErrorIs(t, err, message.ErrValidation)

	// Priority is independent of the lifecycle: a terminal message can
	// still be reprioritized.
	_, err = svc.ChangeState(ctx, m.ID, message.StateRead, nil)
	require.NoError(t, err)
	_, err = svc.ChangeState(ctx, m.ID, message.StateDiscarded, nil)
	require.NoError(t, err)
	m, err = svc.ChangePriority(ctx, m.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, 9, m.Priority)
}

func TestProcessingSchedulesWatchdog(t *testing.T) {
	svc, db, senderID := newService(t)
	svc.ProcessingTimeout = 15 * time.Minute
	ctx := context.Background()

	m := receivedMessage(t, svc, senderID)
	_, err := svc.ChangeState(ctx, m.ID, message.StateRead, nil)
	require.NoError(t, err)

	_, err = svc.ChangeState(ctx, m.ID, message.StateProcessing, nil)
	require.NoError(t, err)

	require.Len(t, db.Timeouts, 1)
	assert.Equal(t, m.ID, db.Timeouts[0].MessageID)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), db.Timeouts[0].RunAt, time.Minute)
}

func TestNoWatchdogWhenDisabled(t *testing.T) {
	svc, db, senderID := newService(t)
	ctx := context.Background()

	m := receivedMessage(t, svc, senderID)
	_, err := svc.ChangeState(ctx, m.ID, message.StateRead, nil)
	require.NoError(t, err)
	_, err = svc.ChangeState(ctx, m.ID, message.StateProcessing, nil)
	require.NoError(t, err)

	assert.Empty(t, db.Timeouts)
}

func TestListFiltersByState(t *testing.T) {
	svc, _, senderID := newService(t)
	ctx := context.Background()

	first := receivedMessage(t, svc, senderID)
	second := receivedMessage(t, svc, senderID)
	_, err := svc.ChangeState(ctx, second.ID, message.StateRead, nil)
	require.NoError(t, err)

	all, total, err := svc.List(ctx, message.Query{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	received := message.StateReceived
	got, total, err := svc.List(ctx, message.Query{Limit: 10, State: &received})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, first.ID, got[0].ID)
}
