package notifications

import (
	"cleaning_payments/internal/domain/entities"
	"cleaning_payments/internal/usecase/interfaces"
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"
)

var ErrMissingResendAPIKey = errors.New("missing RESEND_API_KEY")

type emailAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendSender delivers email. The outbox item ID travels as X-Entity-Ref-ID
// so mail clients thread retries of one item together.
type ResendSender struct {
	emails emailAPI
	from   string
}

var _ interfaces.INotificationSender = (*ResendSender)(nil)

func NewResendSender(apiKey, from string) (*ResendSender, error) {
	if apiKey == "" {
		return nil, ErrMissingResendAPIKey
	}
	return &ResendSender{emails: resend.NewClient(apiKey).Emails, from: from}, nil
}

func (s *ResendSender) Send(ctx context.Context, msg entities.OutboundMessage) error {
	if msg.Channel != entities.ChannelEmail {
		return fmt.Errorf("resend sender cannot deliver channel %q", msg.Channel)
	}
	resp, err := s.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.Recipient},
		Subject: msg.Subject,
		Text:    msg.Body,
		Headers: map[string]string{"X-Entity-Ref-ID": msg.ID},
		Tags: []resend.Tag{
			{Name: "event", Value: string(msg.Event)},
		},
	})
	if err != nil {
		log.Printf("[notification][resend] send failed id=%s booking_id=%s err=%v", msg.ID, msg.BookingID, err)
		return err
	}
	log.Printf("[notification][resend] sent id=%s booking_id=%s email_id=%s", msg.ID, msg.BookingID, resp.Id)
	return nil
}
