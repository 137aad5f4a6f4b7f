package delivery

import (
	"fmt"

	"github.com/lexhub/identity-service/internal/domain"
)

type EmailSender interface {
	SendOtpEmail(toEmail, code string) error
}

type SMSSender interface {
	SendOtpSMS(number, message string) error
}

// Dispatcher routes a passcode to the channel matching the identifier kind.
type Dispatcher struct {
	email EmailSender
	sms   SMSSender
}

func NewDispatcher(email EmailSender, sms SMSSender) *Dispatcher {
	return &Dispatcher{email: email, sms: sms}
}

func (d *Dispatcher) SendOtp(ident domain.Identifier, code string) error {
	switch ident.Kind {
	case domain.IdentifierPhone:
		return d.sms.SendOtpSMS(ident.Value, fmt.Sprintf("Your LexHub verification code is %s. It expires in 10 minutes.", code))
	case domain.IdentifierEmail:
		return d.email.SendOtpEmail(ident.Value, code)
	default:
		return fmt.Errorf("unknown identifier kind: %d", ident.Kind)
	}
}
