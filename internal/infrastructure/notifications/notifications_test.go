package notifications

import (
	"cleaning_payments/internal/domain/entities"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeEmails struct {
	got *resend.SendEmailRequest
	err error
}

func (f *fakeEmails) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.got = params
	if f.err != nil {
		return nil, f.err
	}
	return &resend.SendEmailResponse{Id: "em_1"}, nil
}

type fakeSMS struct {
	got *twilioApi.CreateMessageParams
}

func (f *fakeSMS) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.got = params
	sid := "SM1"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

type fakePublisher struct {
	exchange, key string
	msg           amqp.Publishing
}

func (f *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return nil
}

type countingSender struct{ n int }

func (c *countingSender) Send(context.Context, entities.OutboundMessage) error {
	c.n++
	return nil
}

func message(channel entities.NotificationChannel, to string) entities.OutboundMessage {
	return entities.OutboundMessage{
		ID:        "ob-1",
		BookingID: "bk-1",
		Event:     entities.EventPaymentCaptured,
		Channel:   channel,
		Recipient: to,
		Subject:   "Payment received",
		Body:      "We charged £50.00.",
		Payload:   map[string]string{"amount": "50.00"},
	}
}

func TestResendSender(t *testing.T) {
	emails := &fakeEmails{}
	s := &ResendSender{emails: emails, from: "bookings@example.com"}

	require.NoError(t, s.Send(context.Background(), message(entities.ChannelEmail, "ana@example.com")))
	assert.Equal(t, []string{"ana@example.com"}, emails.got.To)
	assert.Equal(t, "bookings@example.com", emails.got.From)
	assert.Equal(t, "ob-1", emails.got.Headers["X-Entity-Ref-ID"])

	emails.err = errors.New("rate limited")
	assert.Error(t, s.Send(context.Background(), message(entities.ChannelEmail, "ana@example.com")))
	assert.Error(t, s.Send(context.Background(), message(entities.ChannelSMS, "+44700")))

	_, err := NewResendSender("", "x")
	assert.ErrorIs(t, err, ErrMissingResendAPIKey)
}

func TestTwilioSender(t *testing.T) {
	sms := &fakeSMS{}
	s := &TwilioSender{messages: sms, from: "+15550000"}

	require.NoError(t, s.Send(context.Background(), message(entities.ChannelSMS, "+447700900000")))
	require.NotNil(t, sms.got.To)
	assert.Equal(t, "+447700900000", *sms.got.To)
	assert.Equal(t, "+15550000", *sms.got.From)

	_, err := NewTwilioSender("AC1", "", "+1")
	assert.ErrorIs(t, err, ErrMissingTwilioCredentials)
}

func TestAMQPSender(t *testing.T) {
	pub := &fakePublisher{}
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s := &AMQPSender{ch: pub, exchange: "payments.notifications", now: func() time.Time { return at }}

	require.NoError(t, s.Send(context.Background(), message(entities.ChannelEvent, "")))
	assert.Equal(t, "payments.notifications", pub.exchange)
	assert.Equal(t, "payment.payment_captured", pub.key)
	assert.Equal(t, "ob-1", pub.msg.MessageId)
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)

	var body paymentEventMessage
	require.NoError(t, json.Unmarshal(pub.msg.Body, &body))
	assert.Equal(t, "bk-1", body.BookingID)
	assert.Equal(t, "50.00", body.Payload["amount"])
}

func TestRouter(t *testing.T) {
	email := &countingSender{}
	r := NewRouter().Register(entities.ChannelEmail, email)

	require.NoError(t, r.Send(context.Background(), message(entities.ChannelEmail, "a@b.c")))
	assert.Equal(t, 1, email.n)

	err := r.Send(context.Background(), message(entities.ChannelSMS, "+44"))
	assert.ErrorIs(t, err, ErrNoSender)
	assert.NoError(t, r.Close())
}

func TestNewRouterFromSettings_LogMode(t *testing.T) {
	r, err := NewRouterFromSettings(Settings{Mode: "log", ResendAPIKey: "re_x"})
	require.NoError(t, err)
	for _, ch := range []entities.NotificationChannel{entities.ChannelEmail, entities.ChannelSMS, entities.ChannelEvent} {
		_, ok := r.senders[ch].(LogSender)
		assert.True(t, ok, ch)
	}
	require.NoError(t, r.Send(context.Background(), message(entities.ChannelSMS, "+44")))
}

func TestNewRouterFromSettings_Live(t *testing.T) {
	r, err := NewRouterFromSettings(Settings{Mode: "live", ResendAPIKey: "re_x", EmailFrom: "a@b.c"})
	require.NoError(t, err)
	_, ok := r.senders[entities.ChannelEmail].(*ResendSender)
	assert.True(t, ok)
	_, ok = r.senders[entities.ChannelSMS].(LogSender)
	assert.True(t, ok)

	_, err = NewRouterFromSettings(Settings{Mode: "live", TwilioAccountSID: "AC1"})
	assert.ErrorIs(t, err, ErrMissingTwilioCredentials)
}
