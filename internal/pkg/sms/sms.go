package sms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

var ErrInvalidNumber = errors.New("invalid phone number")

// Sender delivers a text message and returns the provider message id.
type Sender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

type messageAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type twilioSender struct {
	api  messageAPI
	from string
}

// NewTwilioSender sends through the Twilio Messages API.
func NewTwilioSender(accountSID, authToken, from string) Sender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &twilioSender{api: client.Api, from: from}
}

func (s *twilioSender) Send(ctx context.Context, to, body string) (string, error) {
	number, err := NormalizeNumber(to)
	if err != nil {
		return "", err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(number)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("failed to send sms: %w", err)
	}

	if resp == nil || resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

type logSender struct {
	logger *slog.Logger
}

// NewLogSender only logs messages. Used when Twilio is not configured.
func NewLogSender(logger *slog.Logger) Sender {
	return &logSender{logger: logger}
}

func (s *logSender) Send(ctx context.Context, to, body string) (string, error) {
	number, err := NormalizeNumber(to)
	if err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "SMS not sent, twilio is not configured", "to", number, "body", body)
	return "mock", nil
}

// NormalizeNumber converts an Indian mobile number to E.164. Numbers already
// carrying a + prefix are passed through.
func NormalizeNumber(phone string) (string, error) {
	p := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(phone))
	switch {
	case p == "":
		return "", ErrInvalidNumber
	case strings.HasPrefix(p, "+"):
		return p, nil
	case len(p) == 10:
		return "+91" + p, nil
	case len(p) == 11 && strings.HasPrefix(p, "0"):
		return "+91" + p[1:], nil
	case len(p) == 12 && strings.HasPrefix(p, "91"):
		return "+" + p, nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidNumber, phone)
}
