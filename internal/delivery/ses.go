package delivery

import (
	"context"
	"errors"
	"net/mail"

	"github.com/angelmondragon/gearmarket-backend/pkg/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

const utf8Charset = "UTF-8"

type sesSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESTransport delivers through Amazon SES v2.
type SESTransport struct {
	client sesSender
}

// NewSESTransport builds an SES client from a static access key pair.
func NewSESTransport(cfg config.SESConfig) (*SESTransport, error) {
	if !cfg.Configured() {
		return nil, errors.New("ses access key and secret required")
	}
	client := sesv2.New(sesv2.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
	})
	return &SESTransport{client: client}, nil
}

func (t *SESTransport) Deliver(ctx context.Context, msg Message) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(formatAddress(msg.FromName, msg.From)),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String(utf8Charset)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.HTML), Charset: aws.String(utf8Charset)},
					Text: &types.Content{Data: aws.String(msg.Text), Charset: aws.String(utf8Charset)},
				},
			},
		},
	}
	if _, err := t.client.SendEmail(ctx, input); err != nil {
		return &TransportError{Provider: ProviderSES, Err: err}
	}
	return nil
}

func formatAddress(name, address string) string {
	if name == "" {
		return address
	}
	return (&mail.Address{Name: name, Address: address}).String()
}
