package domain

import "time"

type Address struct {
	Name  string
	Email string
}

func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return a.Name + " <" + a.Email + ">"
}

// Message is a single mail inside a conversation thread. Only the fields
// the classification pipeline consumes are carried.
type Message struct {
	ID      string
	From    Address
	Subject string
	Body    string
	Date    time.Time
}
