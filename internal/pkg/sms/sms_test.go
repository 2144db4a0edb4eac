package sms

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeMessageAPI struct {
	params []*twilioApi.CreateMessageParams
	err    error
}

func (f *fakeMessageAPI) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestTwilioSender_Send(t *testing.T) {
	api := &fakeMessageAPI{}
	s := &twilioSender{api: api, from: "+15005550006"}

	sid, err := s.Send(context.Background(), "98765 43210", "hello")
	require.NoError(t, err)
	assert.Equal(t, "SM123", sid)

	require.Len(t, api.params, 1)
	assert.Equal(t, "+919876543210", *api.params[0].To)
	assert.Equal(t, "+15005550006", *api.params[0].From)
	assert.Equal(t, "hello", *api.params[0].Body)
}

func TestTwilioSender_ProviderError(t *testing.T) {
	api := &fakeMessageAPI{err: errors.New("unreachable")}
	s := &twilioSender{api: api, from: "+15005550006"}

	_, err := s.Send(context.Background(), "9876543210", "hello")
	assert.Error(t, err)
}

func TestLogSender_Send(t *testing.T) {
	s := NewLogSender(slog.New(slog.NewTextHandler(io.Discard, nil)))

	sid, err := s.Send(context.Background(), "09876543210", "hello")
	require.NoError(t, err)
	assert.Equal(t, "mock", sid)

	_, err = s.Send(context.Background(), "", "hello")
	assert.ErrorIs(t, err, ErrInvalidNumber)
}

func TestNormalizeNumber(t *testing.T) {
	cases := map[string]string{
		"9876543210":   "+919876543210",
		"09876543210":  "+919876543210",
		"919876543210": "+919876543210",
		"+14155550100": "+14155550100",
		"98765-43210":  "+919876543210",
	}
	for in, want := range cases {
		got, err := NormalizeNumber(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := NormalizeNumber("12345")
	assert.ErrorIs(t, err, ErrInvalidNumber)
}
