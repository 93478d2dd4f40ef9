package mail

import "gopkg.in/gomail.v2"

type AssignmentEmailData struct {
	AdvisorName string
	LeadName    string
	Phone       string
	Model       string
	Source      string
	CreatedAt   string
}

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	From   string
	Dialer Dialer
}
