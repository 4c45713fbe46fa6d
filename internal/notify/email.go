package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"
)

const (
	errCodeMessageRejected  = "MessageRejected"
	errCodeAccountSuspended = "AccountSuspendedException"
)

var (
	ErrEmailRejected    = errors.New("email rejected by SES")
	ErrSendingSuspended = errors.New("SES account sending is suspended")
)

// Mailer sends plain-text notification emails.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SESMailer sends email through AWS SES v2.
type SESMailer struct {
	client *sesv2.Client
	from   string
}

// NewSESMailer builds an SES client using the AWS default credential chain.
func NewSESMailer(ctx context.Context, region, from string) (*SESMailer, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESMailer{
		client: sesv2.NewFromConfig(awsCfg),
		from:   from,
	}, nil
}

func (m *SESMailer) SendEmail(ctx context.Context, to, subject, body string) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	}

	_, err := m.client.SendEmail(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case errCodeMessageRejected:
				return fmt.Errorf("send to %s: %w", to, ErrEmailRejected)
			case errCodeAccountSuspended:
				return ErrSendingSuspended
			}
		}
		return fmt.Errorf("send email to %s: %w", to, err)
	}

	return nil
}
