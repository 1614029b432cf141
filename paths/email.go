package paths

import (
	"context"
	"fmt"

	"github.com/pyama86/YASE/domain/entity"
	"github.com/pyama86/YASE/presentation"
	gomail "gopkg.in/gomail.v2"
)

type Email struct {
	dialer *gomail.Dialer
	sender string
}

func NewEmail(sender, password, smtpServer string, smtpPort int) *Email {
	return &Email{
		dialer: gomail.NewDialer(smtpServer, smtpPort, sender, password),
		sender: sender,
	}
}

func (p *Email) Escalate(_ context.Context, event *entity.EscalationEvent) error {
	m := gomail.NewMessage()
	m.SetHeader("From", p.sender)
	m.SetHeader("To", event.Path.Recipient)
	m.SetHeader("Subject", fmt.Sprintf("Issue Escalation: %s - %s", event.IssueKey, event.IssueSummary))
	m.SetBody("text/plain", presentation.RenderMessage(event))
	m.AddAlternative("text/html", presentation.RenderHTMLMessage(event))

	if err := p.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", event.Path.Recipient, err)
	}
	return nil
}
