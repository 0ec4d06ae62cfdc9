package db

import (
	"fmt"

	"placement/internal/auth"
	"placement/internal/contact"
	"placement/internal/document"
	"placement/internal/jobs"
	"placement/internal/message"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables (join tables come from the many2many tags)
	if err := gdb.AutoMigrate(
		&contact.Contact{},
		&contact.Email{},
		&contact.Address{},
		&contact.Telephone{},
		&message.Message{},
		&message.Action{},
		&document.Metadata{},
		&document.Binary{},
		&jobs.Job{},
		&auth.User{},
	); err != nil {
		return err
	}

	// Helpful indexes
	stmts := []string{
		`create index if not exists idx_contact_emails_email on contact_emails(email_id);`,
		`create index if not exists idx_contact_addresses_address on contact_addresses(address_id);`,
		`create index if not exists idx_contact_telephones_telephone on contact_telephones(telephone_id);`,
		`create index if not exists idx_messages_sender_date on messages(sender_id, date desc);`,
		`create index if not exists idx_actions_message on actions(message_id, id);`,
		`create index if not exists idx_jobs_due on jobs(status, run_at);`,
		`create index if not exists idx_jobs_lock on jobs(status, locked_at);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
