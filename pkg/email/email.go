package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sethvargo/go-retry"

	"github.com/maldonadorepuestos/storefront/pkg/config"
	pkgerrors "github.com/maldonadorepuestos/storefront/pkg/errors"
	"github.com/maldonadorepuestos/storefront/pkg/logger"
)

const (
	maxSendRetries = 3
	retryBase      = 200 * time.Millisecond
)

// Message is a single recipient transactional email.
type Message struct {
	ToName    string
	ToAddress string
	Subject   string
	HTML      string
	Text      string
}

// Sender delivers transactional email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type sendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// Client sends through the SendGrid v3 API. 429 and 5xx responses are
// retried with exponential backoff, everything else fails immediately.
type Client struct {
	client  sendClient
	from    *mail.Email
	logg    *logger.Logger
	backoff func() retry.Backoff
}

func New(cfg config.SendgridConfig, logg *logger.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("sendgrid api key is required")
	}
	return newClient(sendgrid.NewSendClient(cfg.APIKey), cfg, logg), nil
}

func newClient(client sendClient, cfg config.SendgridConfig, logg *logger.Logger) *Client {
	return &Client{
		client: client,
		from:   mail.NewEmail(cfg.FromName, cfg.DefaultFrom),
		logg:   logg,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(maxSendRetries, retry.NewExponential(retryBase))
		},
	}
}

func (c *Client) Send(ctx context.Context, msg Message) error {
	if msg.ToAddress == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient address is required")
	}
	payload := mail.NewSingleEmail(c.from, msg.Subject, mail.NewEmail(msg.ToName, msg.ToAddress), msg.Text, msg.HTML)

	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		resp, err := c.client.SendWithContext(ctx, payload)
		if err != nil {
			return retry.RetryableError(err)
		}
		switch {
		case resp.StatusCode == 429 || resp.StatusCode >= 500:
			return retry.RetryableError(fmt.Errorf("sendgrid status %d", resp.StatusCode))
		case resp.StatusCode >= 300:
			return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body)
		}
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send email")
	}

	logCtx := c.logg.WithFields(ctx, map[string]any{"subject": msg.Subject})
	c.logg.Info(logCtx, "email sent")
	return nil
}

// LogSender only logs. Used when no SendGrid key is configured.
type LogSender struct {
	Logger *logger.Logger
}

func (s LogSender) Send(ctx context.Context, msg Message) error {
	logCtx := s.Logger.WithFields(ctx, map[string]any{
		"to":      msg.ToAddress,
		"subject": msg.Subject,
	})
	s.Logger.Info(logCtx, "email delivery disabled, message logged")
	return nil
}

// NewSender returns a SendGrid client when a key is configured, otherwise a
// LogSender.
func NewSender(cfg config.SendgridConfig, logg *logger.Logger) Sender {
	client, err := New(cfg, logg)
	if err != nil {
		return LogSender{Logger: logg}
	}
	return client
}
