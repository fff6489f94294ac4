package services

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"

	"alfredoptarigan/admission-tracker/internal/logger"
)

type Email struct {
	To      string
	Subject string
	Body    string
}

// Notifier delivers outbound email. Failures are never fatal to a workflow
// step; callers turn them into warnings.
type Notifier interface {
	Send(ctx context.Context, email Email) error
}

// sesAPI is the part of the SES client the notifier uses.
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type sesNotifier struct {
	client sesAPI
	from   string
	log    logger.Logger
}

func NewSESNotifier(ctx context.Context, region, from string, log logger.Logger) (Notifier, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return newSESNotifier(ses.NewFromConfig(cfg), from, log), nil
}

func newSESNotifier(client sesAPI, from string, log logger.Logger) Notifier {
	return &sesNotifier{client: client, from: from, log: log}
}

func (n *sesNotifier) Send(ctx context.Context, email Email) error {
	if email.To == "" {
		return fmt.Errorf("email has no recipient")
	}

	input := &ses.SendEmailInput{
		Source: aws.String(n.from),
		Destination: &sestypes.Destination{
			ToAddresses: []string{email.To},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(email.Subject), Charset: aws.String("UTF-8")},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(email.Body), Charset: aws.String("UTF-8")},
			},
		},
	}

	out, err := n.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	n.log.Info("email sent", map[string]interface{}{
		"to":         email.To,
		"subject":    email.Subject,
		"message_id": aws.ToString(out.MessageId),
	})
	return nil
}

// logNotifier is used when email delivery is disabled.
type logNotifier struct {
	log logger.Logger
}

func NewLogNotifier(log logger.Logger) Notifier {
	return &logNotifier{log: log}
}

func (n *logNotifier) Send(_ context.Context, email Email) error {
	n.log.Info("email delivery disabled, skipping", map[string]interface{}{
		"to":      email.To,
		"subject": email.Subject,
	})
	return nil
}
