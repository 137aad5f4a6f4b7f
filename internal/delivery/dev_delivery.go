package delivery

import (
	"github.com/lexhub/identity-service/pkg/logger"
)

// Dev senders print the passcode to logs instead of sending.

type DevEmailSender struct{}

func NewDevEmailSender() *DevEmailSender {
	return &DevEmailSender{}
}

func (d *DevEmailSender) SendOtpEmail(toEmail, code string) error {
	logger.Info("[DEV MAIL] OTP Email",
		"to", toEmail,
		"code", code,
	)
	return nil
}

type DevSMSSender struct{}

func NewDevSMSSender() *DevSMSSender {
	return &DevSMSSender{}
}

func (d *DevSMSSender) SendOtpSMS(number, message string) error {
	logger.Info("[DEV SMS] OTP Message",
		"to", number,
		"message", message,
	)
	return nil
}
