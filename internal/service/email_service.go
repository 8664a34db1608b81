package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailService sends room invitations via Amazon SES. When no sender
// address is configured the service is disabled and sends become no-ops.
type EmailService struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	enabled   bool
}

// NewEmailService creates a new email service. An empty fromEmail yields
// a disabled service rather than an error so local setups work without
// AWS credentials.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName string) (*EmailService, error) {
	if fromEmail == "" {
		slog.Info("email service disabled: no sender address configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	slog.Info("email service enabled", "from", fromEmail, "region", awsRegion)
	return &EmailService{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
	}, nil
}

// IsEnabled returns whether the service will actually send.
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendRoomInvite emails a match invitation carrying the shareable room
// code.
func (s *EmailService) SendRoomInvite(ctx context.Context, toEmail, inviterName, roomCode string) error {
	if !s.enabled {
		slog.Info("skipping invite email, service disabled", "to", toEmail, "code", roomCode)
		return nil
	}

	subject := fmt.Sprintf("%s challenged you to a spelling match!", inviterName)
	textBody := fmt.Sprintf(
		"%s wants to race you through ten spelling rounds.\n\nJoin with room code: %s\n\nThe code stops working once the match starts, so don't dawdle.",
		inviterName, roomCode,
	)

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(textBody)},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send invite email: %w", err)
	}
	return nil
}
