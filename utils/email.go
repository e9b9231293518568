package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
)

// email request payload for ZeptoMail API
type emailRequest struct {
	From     emailAddress  `json:"from"`
	To       []toRecipient `json:"to"`
	Subject  string        `json:"subject"`
	HtmlBody string        `json:"htmlbody"`
}

type emailAddress struct {
	Address string `json:"address"`
}

type toRecipient struct {
	Email emailWithName `json:"email_address"`
}

type emailWithName struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// SendEmail sends an HTML email using the ZeptoMail HTTP API
func SendEmail(to, toName, subject, body string) error {
	apiURL := os.Getenv("ZEPTO_API_URL") // e.g. https://api.zeptomail.com/v1.1/email
	apiKey := os.Getenv("ZEPTO_API_KEY") // e.g. Zoho-enczapikey xxxxx
	from := os.Getenv("EMAIL_FROM")      // e.g. noreply@chamacircle.co.ke

	if apiURL == "" || apiKey == "" || from == "" {
		slog.Warn("missing ZEPTO_API_URL, ZEPTO_API_KEY, or EMAIL_FROM")
		return fmt.Errorf("missing required email config")
	}

	payload := emailRequest{
		From: emailAddress{Address: from},
		To: []toRecipient{
			{
				Email: emailWithName{
					Address: to,
					Name:    toName,
				},
			},
		},
		Subject:  subject,
		HtmlBody: body,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal email payload", "error", err)
		return err
	}

	req, err := http.NewRequest("POST", apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		slog.Error("failed to create request", "error", err)
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", apiKey)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		slog.Error("failed to send email", "error", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		slog.Error("zeptomail returned non-success status", "status", resp.Status)
		return fmt.Errorf("zeptomail API error: %s", resp.Status)
	}

	slog.Info("email sent", "to", to, "subject", subject)
	return nil
}

// NotifyPaymentDecision emails a member that their payment claim was decided.
func NotifyPaymentDecision(to, toName, groupTitle, status, notes string) error {
	subject := fmt.Sprintf("Your payment for %s was %s", groupTitle, status)
	body := fmt.Sprintf("<p>Hello %s,</p><p>Your payment claim for <b>%s</b> has been <b>%s</b>.</p>", toName, groupTitle, status)
	if notes != "" {
		body += fmt.Sprintf("<p>Notes from the admin: %s</p>", notes)
	}
	return SendEmail(to, toName, subject, body)
}
