package notifications

import (
	"cleaning_payments/internal/domain/entities"
	"cleaning_payments/internal/usecase/interfaces"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
)

var ErrNoSender = errors.New("no sender configured for channel")

// Router hands each message to the sender registered for its channel.
type Router struct {
	senders map[entities.NotificationChannel]interfaces.INotificationSender
	closers []io.Closer
}

var _ interfaces.INotificationSender = (*Router)(nil)

func NewRouter() *Router {
	return &Router{senders: map[entities.NotificationChannel]interfaces.INotificationSender{}}
}

func (r *Router) Register(channel entities.NotificationChannel, sender interfaces.INotificationSender) *Router {
	r.senders[channel] = sender
	if c, ok := sender.(io.Closer); ok {
		r.closers = append(r.closers, c)
	}
	return r
}

func (r *Router) Send(ctx context.Context, msg entities.OutboundMessage) error {
	sender, ok := r.senders[msg.Channel]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSender, msg.Channel)
	}
	return sender.Send(ctx, msg)
}

func (r *Router) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Settings selects and configures the providers.
type Settings struct {
	Mode             string
	ResendAPIKey     string
	EmailFrom        string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	RabbitURL        string
	Exchange         string
}

// NewRouterFromSettings wires live providers when Mode is "live" and their
// credentials are present; every other channel falls back to LogSender.
func NewRouterFromSettings(s Settings) (*Router, error) {
	r := NewRouter().
		Register(entities.ChannelEmail, LogSender{}).
		Register(entities.ChannelSMS, LogSender{}).
		Register(entities.ChannelEvent, LogSender{})
	if s.Mode != "live" {
		log.Printf("[notification][router] mode=%s, all channels logged", s.Mode)
		return r, nil
	}

	if s.ResendAPIKey != "" {
		email, err := NewResendSender(s.ResendAPIKey, s.EmailFrom)
		if err != nil {
			return nil, err
		}
		r.Register(entities.ChannelEmail, email)
	}
	if s.TwilioAccountSID != "" {
		sms, err := NewTwilioSender(s.TwilioAccountSID, s.TwilioAuthToken, s.TwilioFromNumber)
		if err != nil {
			return nil, err
		}
		r.Register(entities.ChannelSMS, sms)
	}
	if s.RabbitURL != "" {
		events, err := NewAMQPSender(s.RabbitURL, s.Exchange)
		if err != nil {
			_ = r.Close()
			return nil, err
		}
		r.Register(entities.ChannelEvent, events)
	}
	return r, nil
}
