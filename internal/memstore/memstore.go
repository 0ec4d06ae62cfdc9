// Package memstore implements the domain Store interfaces in process memory.
// It backs the service test suites; it is not safe for concurrent use and the
// Transact implementations simply run their function against the same store
// (the whole store is one "transaction" per test).
package memstore

import (
	"sort"
	"time"

	"placement/internal/contact"
	"placement/internal/document"
	"placement/internal/message"
)

// Timeout records one EnqueueTimeout call.
type Timeout struct {
	MessageID uint64
	RunAt     time.Time
}

// DB holds every table. The three views over it (Contacts, Messages,
// Documents) share the data, so cross-aggregate behavior such as the sender
// cascade is observable in tests.
type DB struct {
	seq uint64

	contacts   map[uint64]*contact.Contact
	emails     map[uint64]*contact.Email
	addresses  map[uint64]*contact.Address
	telephones map[uint64]*contact.Telephone

	contactEmails     map[uint64]map[uint64]bool
	contactAddresses  map[uint64]map[uint64]bool
	contactTelephones map[uint64]map[uint64]bool

	messages map[uint64]*message.Message
	actions  []message.Action

	documents map[uint64]*document.Metadata
	binaries  map[uint64][]byte

	Timeouts []Timeout
}

func New() *DB {
	return &DB{
		contacts:          make(map[uint64]*contact.Contact),
		emails:            make(map[uint64]*contact.Email),
		addresses:         make(map[uint64]*contact.Address),
		telephones:        make(map[uint64]*contact.Telephone),
		contactEmails:     make(map[uint64]map[uint64]bool),
		contactAddresses:  make(map[uint64]map[uint64]bool),
		contactTelephones: make(map[uint64]map[uint64]bool),
		messages:          make(map[uint64]*message.Message),
		documents:         make(map[uint64]*document.Metadata),
		binaries:          make(map[uint64][]byte),
	}
}

func (d *DB) nextID() uint64 {
	d.seq++
	return d.seq
}

// EmailRows reports how many email rows exist (orphan-invariant assertions).
func (d *DB) EmailRows() int { return len(d.emails) }

// AddressRows reports how many address rows exist.
func (d *DB) AddressRows() int { return len(d.addresses) }

// TelephoneRows reports how many telephone rows exist.
func (d *DB) TelephoneRows() int { return len(d.telephones) }

func sortedKeys[V any](m map[uint64]V) []uint64 {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func link(sets map[uint64]map[uint64]bool, contactID, id uint64) {
	if sets[contactID] == nil {
		sets[contactID] = make(map[uint64]bool)
	}
	sets[contactID][id] = true
}

func unlink(sets map[uint64]map[uint64]bool, contactID, id uint64) {
	delete(sets[contactID], id)
}

func owners(sets map[uint64]map[uint64]bool, id uint64) int64 {
	var n int64
	for _, set := range sets {
		if set[id] {
			n++
		}
	}
	return n
}
