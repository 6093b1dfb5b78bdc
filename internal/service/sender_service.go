package service

import (
	"fmt"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"slotswapper/internal/db"
)

// SenderService sends swap lifecycle emails. Delivery is fire-and-forget: a
// failed email is logged and never fails the request that triggered it.
type SenderService struct {
	logger *zap.Logger
}

func NewSenderService(logger *zap.Logger) *SenderService {
	return &SenderService{logger: logger}
}

func (s *SenderService) SendSwapProposedEmail(to db.User, from db.User) {
	subject := "You have a new swap request"
	body := fmt.Sprintf(
		"Hello %s,\n\n%s has proposed to swap one of their slots with yours.\n"+
			"Log in to Slot Swapper to accept or reject the request.\n",
		to.Name, from.Name,
	)
	s.send(to, subject, body)
}

func (s *SenderService) SendSwapResolvedEmail(to db.User, status db.SwapStatus) {
	verb := "rejected"
	if status == db.SwapStatusAccepted {
		verb = "accepted"
	}
	subject := fmt.Sprintf("Your swap request was %s", verb)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour swap request has been %s.\n"+
			"Log in to Slot Swapper to see your updated schedule.\n",
		to.Name, verb,
	)
	s.send(to, subject, body)
}

func (s *SenderService) send(to db.User, subject, body string) {
	go func() {
		if err := SendEmailWithSendGrid(to.Email, to.Name, subject, body); err != nil {
			s.logger.Warn("Failed to send email",
				zap.String("to", to.Email),
				zap.String("subject", subject),
				zap.Error(err),
			)
		}
	}()
}

func SendEmailWithSendGrid(toEmailAddress, toName, subject, plainTextContent string) error {
	sendgridAPIKey := os.Getenv("SENDGRID_API_KEY")
	if sendgridAPIKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY is not configured")
	}

	fromEmail := os.Getenv("SENDGRID_FROM_EMAIL")
	if fromEmail == "" {
		return fmt.Errorf("SENDGRID_FROM_EMAIL is not configured")
	}

	fromName := os.Getenv("SENDGRID_FROM_NAME")
	if fromName == "" {
		fromName = "Slot Swapper"
	}

	from := mail.NewEmail(fromName, fromEmail)
	to := mail.NewEmail(toName, toEmailAddress)
	message := mail.NewSingleEmail(from, subject, to, plainTextContent, plainTextContent)

	client := sendgrid.NewSendClient(sendgridAPIKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("send email through SendGrid: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("SendGrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}
