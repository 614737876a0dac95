package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

type SESSettings struct {
	Region    string
	AccessKey string
	SecretKey string
	// Endpoint overrides the service URL (e.g. LocalStack).
	Endpoint string
	Sender   string
}

// sesAPI is the subset of *sesv2.Client used here.
type sesAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

// SESNotifier sends the verification mail through Amazon SES v2.
type SESNotifier struct {
	client   sesAPI
	sender   string
	renderer *Renderer
}

// NewSESNotifier builds an SES client. Static credentials are used when both
// keys are set; otherwise the default AWS credential chain applies.
func NewSESNotifier(ctx context.Context, settings SESSettings, renderer *Renderer) (*SESNotifier, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(settings.Region),
	}
	if settings.AccessKey != "" && settings.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(settings.AccessKey, settings.SecretKey, ""),
		))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg, func(o *sesv2.Options) {
		if settings.Endpoint != "" {
			o.BaseEndpoint = aws.String(settings.Endpoint)
		}
	})

	return &SESNotifier{client: client, sender: settings.Sender, renderer: renderer}, nil
}

func (n *SESNotifier) Send(ctx context.Context, email, code, name string) error {
	rendered, err := n.renderer.Render(code, name)
	if err != nil {
		return err
	}

	_, err = n.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(n.sender),
		Destination:      &types.Destination{ToAddresses: []string{email}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(rendered.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(rendered.HTML), Charset: aws.String("UTF-8")},
					Text: &types.Content{Data: aws.String(rendered.Text), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send to %s: %w", email, err)
	}
	return nil
}
