package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// SMSClient talks to the SMS gateway over HTTP.
type SMSClient struct {
	client *resty.Client
	sender string
	logger *zap.Logger
}

var _ SMSSender = (*SMSClient)(nil)

func NewSMSClient(gatewayURL, apiKey, sender string, logger *zap.Logger) *SMSClient {
	client := resty.New().
		SetBaseURL(gatewayURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetHeader("Authorization", "Bearer "+apiKey).
		SetHeader("Content-Type", "application/json")
	return &SMSClient{client: client, sender: sender, logger: logger}
}

type smsGatewayResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Send delivers one message and fails on any non-2xx or gateway-reported
// error.
func (c *SMSClient) Send(ctx context.Context, phone, message string) error {
	var result smsGatewayResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"to":     phone,
			"body":   message,
			"sender": c.sender,
		}).
		SetResult(&result).
		Post("/v1/messages")
	if err != nil {
		return fmt.Errorf("sms gateway request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("sms gateway returned %d", resp.StatusCode())
	}
	if !result.Success {
		return fmt.Errorf("sms gateway rejected message: %s", result.Error)
	}

	c.logger.Debug("sms sent", zap.String("to", phone))
	return nil
}
