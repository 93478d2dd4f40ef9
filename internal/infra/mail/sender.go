package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/xavierca1/dealer-leads/internal/entity"
	"gopkg.in/gomail.v2"
)

var assignmentTemplate = template.Must(template.New("assignment").Parse(`<p>Hola {{.AdvisorName}},</p>
<p>Se te asignó un nuevo lead:</p>
<ul>
  <li><strong>{{.LeadName}}</strong></li>
  <li>Teléfono: {{.Phone}}</li>
  <li>Modelo de interés: {{.Model}}</li>
  <li>Origen: {{.Source}}</li>
  <li>Registrado: {{.CreatedAt}}</li>
</ul>
<p>Contáctalo lo antes posible.</p>
`))

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		From:   from,
		Dialer: gomail.NewDialer(host, port, user, password),
	}
}

// SendAssignment emails the advisor the contact details of a lead just
// routed to them.
func (s *EmailSender) SendAssignment(ctx context.Context, advisor entity.Advisor, event entity.LeadEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data := AssignmentEmailData{
		AdvisorName: advisor.Name,
		LeadName:    event.LeadName,
		Phone:       event.Phone,
		Model:       event.Model,
		Source:      event.Source.Label(),
		CreatedAt:   event.OccurredAt.Format("02/01/2006 15:04"),
	}

	var body bytes.Buffer
	if err := assignmentTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("render assignment email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", advisor.Email)
	m.SetHeader("Subject", fmt.Sprintf("Nuevo lead asignado: %s (%s)", event.LeadName, event.Model))
	m.SetBody("text/html", body.String())

	if err := s.Dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send smtp email: %w", err)
	}
	return nil
}
