package entity

import "time"

// Notification is an in-app message addressed to a user, produced after a
// lifecycle event commits. Delivery is best effort; the business change it
// announces is already durable by the time one is created.
type Notification struct {
	ID               string
	NotificationCode string // external identifier, NTF-xxxxxxxx
	RecipientID      string
	Title            string
	Message          string
	IsRead           bool
	SentDate         time.Time
	ReadDate         *time.Time
}
