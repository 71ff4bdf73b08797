// Package stream publishes measurement records to NATS so downstream
// consumers (dashboards, alerting) can subscribe without polling the
// API.
package stream

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/baxter-barlow/chirp/internal/vitals"
)

// DefaultSubject is the subject measurements are published on.
const DefaultSubject = "chirp.vitals"

// Connect dials a NATS server with retry options suited to a
// long-running sensor daemon.
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(
		url,
		nats.Name("chirp-vitalsd"),
		nats.Timeout(3*time.Second),
		nats.ReconnectWait(500*time.Millisecond),
		nats.MaxReconnects(-1),
	)
}

// Measurement is the published JSON payload.
type Measurement struct {
	SessionID          string    `json:"session_id"`
	RecordedAt         time.Time `json:"recorded_at"`
	TargetID           uint16    `json:"target_id"`
	RangeBin           uint16    `json:"range_bin"`
	HeartRateBPM       float32   `json:"heart_rate_bpm"`
	BreathingRateBPM   float32   `json:"breathing_rate_bpm"`
	BreathingDeviation float32   `json:"breathing_deviation"`
	Valid              bool      `json:"valid"`
}

// Publisher emits measurements on a subject.
type Publisher struct {
	nc        *nats.Conn
	subject   string
	sessionID string
}

// NewPublisher wraps an established connection.
func NewPublisher(nc *nats.Conn, subject, sessionID string) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Publisher{nc: nc, subject: subject, sessionID: sessionID}
}

// Publish sends one result. Publishing is fire-and-forget; NATS
// buffers through reconnects.
func (p *Publisher) Publish(at time.Time, r vitals.Result) error {
	m := Measurement{
		SessionID:          p.sessionID,
		RecordedAt:         at.UTC(),
		TargetID:           r.ID,
		RangeBin:           r.RangeBin,
		HeartRateBPM:       r.HeartRate,
		BreathingRateBPM:   r.BreathingRate,
		BreathingDeviation: r.BreathingDeviation,
		Valid:              r.Valid,
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding measurement: %w", err)
	}
	if err := p.nc.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publishing to %s: %w", p.subject, err)
	}
	return nil
}
