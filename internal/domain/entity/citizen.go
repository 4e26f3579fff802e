package entity

// NotificationPreference selects the channel a citizen wants updates on.
type NotificationPreference string

const (
	PreferEmail NotificationPreference = "Email"
	PreferSMS   NotificationPreference = "SMS"
	PreferNone  NotificationPreference = "None"
)

// Citizen is the 1:1 profile extension of a User with role Citizen.
// The counters are cumulative and only ever move forward; they are mutated
// exclusively by the request lifecycle engine under the same transaction as
// the change they count.
type Citizen struct {
	ID                     string
	CitizenCode            string // external identifier, CIT-xxxxxxxx
	UserID                 string
	NotificationPreference NotificationPreference
	TotalRequestsSubmitted int
	TotalRequestsResolved  int
}
