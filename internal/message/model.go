package message

import "time"

// Channel is how a message reached the agency.
type Channel string

const (
	ChannelEmail       Channel = "EMAIL"
	ChannelTextMessage Channel = "TEXT_MESSAGE"
	ChannelPhoneCall   Channel = "PHONE_CALL"
)

func ParseChannel(s string) (Channel, bool) {
	switch Channel(s) {
	case ChannelEmail, ChannelTextMessage, ChannelPhoneCall:
		return Channel(s), true
	}
	return "", false
}

// Message is an inbound message with a state-machine lifecycle. It is created
// in RECEIVED with priority 0 and is never deleted on its own; only a sender
// cascade removes it.
type Message struct {
	ID       uint64    `gorm:"primaryKey"`
	SenderID uint64    `gorm:"index;not null"`
	Date     time.Time `gorm:"not null"`
	Subject  *string
	Body     *string
	Channel  Channel `gorm:"type:text;not null"`
	Priority int     `gorm:"not null;default:0"`
	State    State   `gorm:"type:text;index;not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

// Action is the immutable record of one state transition. Rows are appended,
// never updated or deleted (short of the sender cascade).
type Action struct {
	ID        uint64    `gorm:"primaryKey"`
	MessageID uint64    `gorm:"index;not null"`
	State     State     `gorm:"type:text;not null"`
	Date      time.Time `gorm:"not null"`
	Comment   *string
}
