package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "go-easyapply-automation/internal/errors"
	"go-easyapply-automation/internal/models"
	"go-easyapply-automation/internal/telemetry"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	RecordedSubject = "applications.recorded"
	connectTimeout  = 10 * time.Second
)

var tracer = telemetry.GetTracer("easyapply/events")

// ApplicationRecordedEvent is published once per ledger record.
type ApplicationRecordedEvent struct {
	JobID      string    `json:"job_id"`
	Company    string    `json:"company"`
	Title      string    `json:"title,omitempty"`
	Outcome    string    `json:"outcome"`
	RecordedAt time.Time `json:"recorded_at"`
}

type conn interface {
	Publish(subject string, data []byte) error
	Close()
}

// Publisher mirrors ledger records onto NATS. It satisfies ledger.Sink.
type Publisher struct {
	nc      conn
	subject string
	logger  *zap.Logger
}

func NewPublisher(natsURL string, logger *zap.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.Name("easyapply"),
		nats.Timeout(connectTimeout),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	}

	nc, err := nats.Connect(natsURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}
	return newPublisher(nc, logger), nil
}

func newPublisher(nc conn, logger *zap.Logger) *Publisher {
	return &Publisher{nc: nc, subject: RecordedSubject, logger: logger.Named("events")}
}

func (p *Publisher) Name() string {
	return "nats"
}

func (p *Publisher) Publish(ctx context.Context, rec models.ApplicationRecord) error {
	_, span := tracer.Start(ctx, "PublishApplicationRecorded")
	defer span.End()

	data, err := json.Marshal(ApplicationRecordedEvent{
		JobID:      rec.JobID,
		Company:    rec.Company,
		Title:      rec.Title,
		Outcome:    string(rec.Outcome),
		RecordedAt: rec.Timestamp,
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("marshaling event: %w", err)
	}

	span.SetAttributes(
		telemetry.String("nats.subject", p.subject),
		telemetry.Int("message.size", len(data)),
	)

	if err := p.nc.Publish(p.subject, data); err != nil {
		span.RecordError(err)
		return apperrors.Persistence("publishing event", err)
	}

	p.logger.Debug("published application record",
		zap.String("job_id", rec.JobID),
		zap.String("outcome", string(rec.Outcome)))
	return nil
}

func (p *Publisher) Close() error {
	if p.nc != nil {
		p.nc.Close()
	}
	return nil
}
