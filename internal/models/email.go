package models

import "time"

type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SentEmail is an entry of the outgoing mail log.
type SentEmail struct {
	Email
	SentAt time.Time `json:"sentAt"`
}
