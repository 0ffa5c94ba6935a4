package record

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"medledger/internal/events"
	"medledger/internal/platform/metrics"
	id "medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
	txpkg "medledger/pkg/platform/tx"
)

// ErrUnauthorizedViewer is returned by View when the caller is neither the
// patient nor a currently authorized grantee. It deliberately reveals nothing
// about whether a record exists.
var ErrUnauthorizedViewer = dErrors.New(dErrors.CodeForbidden, "Access denied: unauthorized viewer")

// Ledger is the authorization surface the read path needs. The access ledger
// has no dependency back on records.
type Ledger interface {
	IsAuthorized(ctx context.Context, owner, grantee id.Identity) (bool, error)
}

// Publisher is the notification surface for record writes.
type Publisher interface {
	Emit(ctx context.Context, event events.Event) error
}

// Service owns record upserts and authorization-gated reads. Upsert and its
// notification are scoped to one transaction; View is read-only and emits
// nothing.
type Service struct {
	store   Store
	ledger  Ledger
	events  Publisher
	tx      txpkg.Runner
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithClock overrides the timestamp source. Tests use it to pin updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store Store, ledger Ledger, publisher Publisher, runner txpkg.Runner, logger *slog.Logger, m *metrics.Metrics, opts ...Option) *Service {
	if runner == nil {
		runner = txpkg.NopRunner{}
	}
	s := &Service{
		store:   store,
		ledger:  ledger,
		events:  publisher,
		tx:      runner,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("medledger/record"),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upsert sets the caller's record, unconditionally replacing any prior one.
// Name and data hash are stored as given - empty values included - because
// the registry holds an opaque reference, not validated content. The call
// cannot fail for a valid caller short of storage failure.
func (s *Service) Upsert(ctx context.Context, caller id.Identity, name, dataHash string) error {
	ctx, span := s.tracer.Start(ctx, "record.Upsert",
		trace.WithAttributes(attribute.String("owner", caller.String())))
	defer span.End()

	rec := PatientRecord{
		Name:      name,
		DataHash:  dataHash,
		UpdatedAt: s.now(),
	}

	err := s.tx.Run(ctx, func(ctx context.Context) error {
		if err := s.store.Save(ctx, caller, rec); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to write record")
		}
		return s.events.Emit(ctx, events.RecordAdded(caller, dataHash, rec.UpdatedAt))
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.IncRecordsWritten()
	}
	s.logger.InfoContext(ctx, "record upserted", "owner", caller.String())
	return nil
}

// View returns patient's current record. It succeeds iff the caller is the
// patient or the ledger currently authorizes (patient, caller); the grant is
// checked at read time, so it always discloses the latest record, not the
// record as of grant time. An authorized read of a never-written record
// returns the zero-value record.
func (s *Service) View(ctx context.Context, caller, patient id.Identity) (PatientRecord, error) {
	ctx, span := s.tracer.Start(ctx, "record.View",
		trace.WithAttributes(attribute.String("patient", patient.String())))
	defer span.End()

	if caller != patient {
		authorized, err := s.ledger.IsAuthorized(ctx, patient, caller)
		if err != nil {
			return PatientRecord{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check authorization")
		}
		if !authorized {
			if s.metrics != nil {
				s.metrics.IncRecordRead(metrics.ReadOutcomeDenied)
			}
			s.logger.WarnContext(ctx, "record view denied",
				"patient", patient.String(),
				"viewer", caller.String(),
			)
			return PatientRecord{}, ErrUnauthorizedViewer
		}
	}

	rec, err := s.store.Find(ctx, patient)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			rec = PatientRecord{}
		} else {
			return PatientRecord{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read record")
		}
	}

	if s.metrics != nil {
		s.metrics.IncRecordRead(metrics.ReadOutcomeOK)
	}
	return rec, nil
}
