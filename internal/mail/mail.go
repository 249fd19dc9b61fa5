// Package mail delivers feedback reports to the service account.
package mail

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/tigerfoodies/gofoodies/internal/logger"
)

const feedbackSubject = "TigerFoodies Bug"

// Sender delivers one feedback report.
type Sender interface {
	SendFeedback(ctx context.Context, netID, feedback string) error
}

// SendGridSender sends feedback through the SendGrid API.
type SendGridSender struct {
	logger logger.Interface
	client *sendgrid.Client
	from   string
	to     string
}

// NewSendGridSender creates a sender delivering from and to the configured
// addresses.
func NewSendGridSender(log logger.Interface, apiKey, from, to string) *SendGridSender {
	return &SendGridSender{
		logger: log.WithComponent("mail"),
		client: sendgrid.NewSendClient(apiKey),
		from:   from,
		to:     to,
	}
}

// LogSender records feedback in the log instead of emailing it. Used when no
// SendGrid key is configured.
type LogSender struct {
	logger logger.Interface
}

// NewLogSender creates a log-only sender.
func NewLogSender(log logger.Interface) *LogSender {
	return &LogSender{logger: log.WithComponent("mail")}
}

// SendFeedback logs the report and succeeds.
func (s *LogSender) SendFeedback(_ context.Context, netID, feedback string) error {
	s.logger.Info("Feedback received (mail disabled)", "from", netID, "feedback", feedback)
	return nil
}

// SendFeedback emails one feedback report, attributed to the submitting net
// ID.
func (s *SendGridSender) SendFeedback(ctx context.Context, netID, feedback string) error {
	body := fmt.Sprintf("Feedback received from %s:\n\n%s", netID, feedback)
	message := sgmail.NewSingleEmail(
		sgmail.NewEmail("TigerFoodies", s.from),
		feedbackSubject,
		sgmail.NewEmail("TigerFoodies", s.to),
		body,
		"",
	)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send feedback mail: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}

	s.logger.Info("Feedback mail sent", "from", netID)
	return nil
}
