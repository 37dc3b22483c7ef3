package channel

import (
	"strings"
	"testing"

	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

func TestWhatsAppAddr(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"+15550001111", "whatsapp:+15550001111"},
		{"whatsapp:+15550001111", "whatsapp:+15550001111"},
	}
	for _, tt := range tests {
		if got := whatsappAddr(tt.in); got != tt.want {
			t.Errorf("whatsappAddr(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResponseError(t *testing.T) {
	code := 63016
	zero := 0
	message := "failed to deliver"

	tests := []struct {
		name string
		resp *twilioApi.ApiV2010Message
		want string // "" means no error
	}{
		{"nil response", nil, ""},
		{"no error fields", &twilioApi.ApiV2010Message{}, ""},
		{"zero code", &twilioApi.ApiV2010Message{ErrorCode: &zero}, ""},
		{"code with message", &twilioApi.ApiV2010Message{ErrorCode: &code, ErrorMessage: &message}, "failed to deliver"},
		{"code without message", &twilioApi.ApiV2010Message{ErrorCode: &code}, "63016"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := responseError("+15550001111", tt.resp)
			if tt.want == "" {
				if err != nil {
					t.Fatalf("responseError = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want to contain %q", err.Error(), tt.want)
			}
		})
	}
}

func TestNewTwilioSender_MissingCredentials(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "")
	t.Setenv("TWILIO_AUTH_TOKEN", "")

	_, err := NewTwilioSender("whatsapp:+14155238886")
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
}

func TestNewTwilioSender_MissingFrom(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "token")

	_, err := NewTwilioSender("")
	if err == nil {
		t.Fatal("expected error for missing from number")
	}
}
