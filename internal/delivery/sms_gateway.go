package delivery

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// SMSGatewayClient talks to the provider's HTTP API.
type SMSGatewayClient struct {
	client  *resty.Client
	sender  string
	enabled bool
}

func NewSMSGateway(gatewayURL, apiKey, sender string) *SMSGatewayClient {
	c := &SMSGatewayClient{
		sender:  sender,
		enabled: gatewayURL != "" && apiKey != "",
	}

	if c.enabled {
		c.client = resty.New().
			SetBaseURL(gatewayURL).
			SetAuthToken(apiKey).
			SetTimeout(10 * time.Second).
			SetRetryCount(0)
	}

	return c
}

func (c *SMSGatewayClient) SendOtpSMS(number, message string) error {
	if !c.enabled {
		return fmt.Errorf("SMS gateway not configured")
	}

	resp, err := c.client.R().
		SetBody(map[string]string{
			"from": c.sender,
			"to":   number,
			"text": message,
		}).
		Post("/messages")
	if err != nil {
		return fmt.Errorf("sms gateway request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("sms gateway returned %s", resp.Status())
	}

	return nil
}
