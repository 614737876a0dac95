// Package notify delivers verification codes. Delivery is best-effort: the
// account service reports a failed send but never rolls back on it.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/verikeep/internal/logging"
	"github.com/dmitrijs2005/verikeep/internal/server/config"
)

// Notifier sends a verification code to an address.
type Notifier interface {
	Send(ctx context.Context, email, code, name string) error
}

// Closer is implemented by notifiers that hold connections.
type Closer interface {
	Close() error
}

// New picks the transport configured in cfg.Notifier.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (Notifier, error) {
	renderer, err := NewRenderer(cfg.CodeValidityDuration)
	if err != nil {
		return nil, err
	}

	switch cfg.Notifier {
	case config.NotifierLog, "":
		return NewLogNotifier(logger, cfg.CodeValidityDuration), nil
	case config.NotifierSMTP:
		return NewSMTPNotifier(SMTPSettings{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			Sender:   cfg.SMTPSender,
		}, renderer), nil
	case config.NotifierSES:
		return NewSESNotifier(ctx, SESSettings{
			Region:    cfg.SESRegion,
			AccessKey: cfg.SESAccessKey,
			SecretKey: cfg.SESSecretKey,
			Endpoint:  cfg.SESEndpoint,
			Sender:    cfg.SMTPSender,
		}, renderer)
	case config.NotifierKafka:
		return NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.CodeValidityDuration), nil
	default:
		return nil, fmt.Errorf("unknown notifier %q", cfg.Notifier)
	}
}

// LogNotifier writes the code to the log instead of sending it. Meant for
// development and tests.
type LogNotifier struct {
	logger   logging.Logger
	validity time.Duration
}

func NewLogNotifier(logger logging.Logger, validity time.Duration) *LogNotifier {
	return &LogNotifier{logger: logger.With("module", "notify"), validity: validity}
}

func (n *LogNotifier) Send(ctx context.Context, email, code, name string) error {
	n.logger.Info(ctx, "verification code issued",
		"email", email, "name", name, "code", code, "expires_in", n.validity.String())
	return nil
}
