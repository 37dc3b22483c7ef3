package channel

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioSender sends WhatsApp messages through the Twilio REST API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string // e.g. "whatsapp:+14155238886"
}

// NewTwilioSender builds a TwilioSender from environment credentials
// (TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN) and the configured from number.
func NewTwilioSender(from string) (*TwilioSender, error) {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	if accountSid == "" || authToken == "" {
		return nil, fmt.Errorf("channel: missing TWILIO_ACCOUNT_SID or TWILIO_AUTH_TOKEN")
	}
	if from == "" {
		return nil, fmt.Errorf("channel: from number is required")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})
	return &TwilioSender{client: client, from: from}, nil
}

// Send delivers a WhatsApp text message to the recipient. The account
// parameter is accepted for interface parity; a TwilioSender is bound to a
// single from number at construction.
func (t *TwilioSender) Send(account, to, text string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(whatsappAddr(to))
	params.SetBody(text)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("channel: send to %s: %w", to, err)
	}
	if err := responseError(to, resp); err != nil {
		return err
	}
	if resp.Sid != nil {
		log.Printf("channel: sent message to %s [sid=%s account=%s]", to, *resp.Sid, account)
	}
	return nil
}

// responseError converts an error carried in the API response body. Both
// error fields are optional in the generated types; a code can arrive
// without a message.
func responseError(to string, resp *twilioApi.ApiV2010Message) error {
	if resp == nil || resp.ErrorCode == nil || *resp.ErrorCode == 0 {
		return nil
	}
	message := "no error message"
	if resp.ErrorMessage != nil {
		message = *resp.ErrorMessage
	}
	return fmt.Errorf("channel: send to %s: twilio error %d: %s", to, *resp.ErrorCode, message)
}

// whatsappAddr prefixes a phone number with the whatsapp: scheme Twilio
// expects, leaving already-prefixed addresses untouched.
func whatsappAddr(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
