// Package mailer sends transactional email through a Resend-compatible HTTP API.
package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2" // HTTP client
	"github.com/sirupsen/logrus"   // Logging
)

// Message is one outbound email
type Message struct {
	To      string
	Subject string
	HTML    string
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Client posts messages to the email API
type Client struct {
	http    *resty.Client
	from    string
	enabled bool
}

// New returns a client for baseURL. An empty apiKey yields a client that
// logs and drops every message.
func New(baseURL, apiKey, from string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		c.SetAuthToken(apiKey) // Bearer token
	}
	return &Client{http: c, from: from, enabled: apiKey != ""}
}

// Send delivers msg
func (c *Client) Send(ctx context.Context, msg Message) error {
	if !c.enabled {
		logrus.WithFields(logrus.Fields{"to": msg.To, "subject": msg.Subject}).Debug("Email disabled, message dropped")
		return nil
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(sendRequest{From: c.from, To: []string{msg.To}, Subject: msg.Subject, HTML: msg.HTML}).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	// Non-2xx means the message was not accepted
	if resp.IsError() {
		return fmt.Errorf("send email: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
