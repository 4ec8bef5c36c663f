package mailer

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendEscalation(toEmail, sessionID, issue string, stepsAttempted []string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

// SendEscalation notifies the support inbox that a troubleshooting session
// has exhausted self-service steps and should be picked up by a human.
func (s *emailService) SendEscalation(toEmail, sessionID, issue string, stepsAttempted []string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Escalated session %s (%s)", sessionID, issue))

	var steps strings.Builder
	for i, step := range stepsAttempted {
		steps.WriteString(fmt.Sprintf("<li>%d. %s</li>", i+1, step))
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Troubleshooting session escalated</h2>
			<p>Session <b>%s</b> reported a <b>%s</b> issue that self-service steps did not resolve.</p>
			<p>Steps already attempted:</p>
			<ul>%s</ul>
			<p>The user has been advised to contact Apple Support.</p>
		</div>
	`, sessionID, issue, steps.String())

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send escalation for %s: %v\n", sessionID, err)
		return err
	}

	fmt.Printf("[MAILER] Escalation sent for session %s\n", sessionID)
	return nil
}
