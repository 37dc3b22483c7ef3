// Package channel defines the messaging-channel boundary: the inbound
// message record handed to the processing engine and the outbound sender
// interface it replies through.
package channel

import "time"

// InboundMessage is a message event received from the messaging channel.
type InboundMessage struct {
	ID          string    // channel-assigned message identifier
	Sender      string    // sender phone number
	Text        string    // raw message text
	ContentType string    // "text", "image", ...
	Account     string    // channel account that received the message
	Direction   string    // Incoming or Outgoing (outbound echoes are delivered too)
	Timestamp   time.Time // when the message was sent
}

// Sender delivers outbound messages to the channel.
type Sender interface {
	// Send delivers text to the recipient through the given channel account.
	Send(account, to, text string) error
}
