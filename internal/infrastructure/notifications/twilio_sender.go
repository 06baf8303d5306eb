package notifications

import (
	"cleaning_payments/internal/domain/entities"
	"cleaning_payments/internal/usecase/interfaces"
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

var ErrMissingTwilioCredentials = errors.New("missing TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN or TWILIO_FROM_NUMBER")

type smsAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type TwilioSender struct {
	messages smsAPI
	from     string
}

var _ interfaces.INotificationSender = (*TwilioSender)(nil)

func NewTwilioSender(accountSID, authToken, from string) (*TwilioSender, error) {
	if accountSID == "" || authToken == "" || from == "" {
		return nil, ErrMissingTwilioCredentials
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{messages: client.Api, from: from}, nil
}

// Send ignores ctx: the Twilio client has no context-aware variant.
func (s *TwilioSender) Send(_ context.Context, msg entities.OutboundMessage) error {
	if msg.Channel != entities.ChannelSMS {
		return fmt.Errorf("twilio sender cannot deliver channel %q", msg.Channel)
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(msg.Recipient)
	params.SetFrom(s.from)
	params.SetBody(msg.Body)

	resp, err := s.messages.CreateMessage(params)
	if err != nil {
		log.Printf("[notification][twilio] send failed id=%s booking_id=%s err=%v", msg.ID, msg.BookingID, err)
		return err
	}
	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	log.Printf("[notification][twilio] sent id=%s booking_id=%s sid=%s", msg.ID, msg.BookingID, sid)
	return nil
}
