package audit

import (
	"context"
	"log/slog"
	"time"

	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/requestcontext"
)

// Service is the façade domain code records events through. It stamps the
// timestamp, resolves the caller's source address from the request context,
// and keeps the encrypted log behind a narrow API.
type Service struct {
	log    *Log
	logger *slog.Logger
}

func NewService(log *Log, logger *slog.Logger) *Service {
	return &Service{log: log, logger: logger}
}

// Record appends one event describing actor and action. The caller's business
// action is already committed by the time this runs; a write failure is
// surfaced as an internal error but never rolls that action back.
func (s *Service) Record(ctx context.Context, actor, action string) error {
	source := requestcontext.ClientIP(ctx)
	if source == "" {
		source = "unknown"
	}
	event := Event{
		Timestamp:  time.Now(),
		Actor:      actor,
		Action:     action,
		SourceAddr: source,
	}
	if err := s.log.Append(event); err != nil {
		s.logger.ErrorContext(ctx, "audit append failed",
			"actor", actor,
			"action", action,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return dErrors.Wrap(dErrors.CodeInternal, "failed to record audit event", err)
	}
	return nil
}

// List returns every readable event in append order.
func (s *Service) List(ctx context.Context) ([]Event, error) {
	events, err := s.log.ReadAll()
	if err != nil {
		s.logger.ErrorContext(ctx, "audit read failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to read audit log", err)
	}
	return events, nil
}
