package models

import "gorm.io/gorm"

func AutoMigrateAll(db *gorm.DB) error {
	err := db.AutoMigrate(
		&User{},
		&Department{},
		&Agent{},
		&Conversation{},
		&Message{},
		&Ticket{},
		&TicketReply{},
		&Notification{},
		&Automation{},
		&Rating{},
		&SavedReply{},
		&KBCategory{},
		&KBArticle{},
	)
	if err != nil {
		return err
	}
	return nil
}
