package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lexhub/identity-service/pkg/logger"
	"github.com/nats-io/nats.go"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
	ID        string
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
			ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
			ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Event subjects
const (
	OtpRequested   = "identity.otp.requested"
	OtpVerified    = "identity.otp.verified"
	SessionIssued  = "identity.session.issued"
	SessionRotated = "identity.session.rotated"
	SessionRevoked = "identity.session.revoked"
	IPBanned       = "identity.ip.banned"
)

// Event payloads
type OtpRequestedEvent struct {
	Identifier   string    `json:"identifier"`
	Channel      string    `json:"channel"`
	AttemptsLeft int       `json:"attempts_left"`
	RequestedAt  time.Time `json:"requested_at"`
}

type OtpVerifiedEvent struct {
	Identifier string    `json:"identifier"`
	UserID     int64     `json:"user_id"`
	VerifiedAt time.Time `json:"verified_at"`
}

type SessionIssuedEvent struct {
	UserID   int64     `json:"user_id"`
	Role     string    `json:"role"`
	IssuedAt time.Time `json:"issued_at"`
}

type SessionRotatedEvent struct {
	UserID    int64     `json:"user_id"`
	RotatedAt time.Time `json:"rotated_at"`
}

type SessionRevokedEvent struct {
	UserID    int64     `json:"user_id"`
	RevokedAt time.Time `json:"revoked_at"`
}

type IPBannedEvent struct {
	IP          string    `json:"ip"`
	Purpose     string    `json:"purpose"`
	BannedUntil time.Time `json:"banned_until"`
	Reason      string    `json:"reason"`
}
