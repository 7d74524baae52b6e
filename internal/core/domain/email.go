package domain

// Email is a plain-text transactional message.
type Email struct {
	To      string
	Subject string
	Body    string
}
