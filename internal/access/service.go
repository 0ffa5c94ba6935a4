package access

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"medledger/internal/events"
	"medledger/internal/platform/metrics"
	id "medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
	txpkg "medledger/pkg/platform/tx"
)

// Publisher is the notification surface the ledger needs.
type Publisher interface {
	Emit(ctx context.Context, event events.Event) error
}

// Service applies ledger mutations and answers authorization checks. Each
// mutation and its notification are scoped to one transaction, so the two
// never diverge. Grant and revoke are total: repeated calls land in the same
// state and still emit their notification.
type Service struct {
	store   Store
	events  Publisher
	tx      txpkg.Runner
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

func NewService(store Store, publisher Publisher, runner txpkg.Runner, logger *slog.Logger, m *metrics.Metrics) *Service {
	if runner == nil {
		runner = txpkg.NopRunner{}
	}
	return &Service{
		store:   store,
		events:  publisher,
		tx:      runner,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("medledger/access"),
	}
}

// Grant authorizes provider to read caller's current record. Self-grants are
// permitted; the self-access branch in the record service makes them
// harmless, and rejecting them would add validation the ledger never had.
func (s *Service) Grant(ctx context.Context, caller, provider id.Identity) error {
	ctx, span := s.tracer.Start(ctx, "access.Grant",
		trace.WithAttributes(attribute.String("owner", caller.String())))
	defer span.End()

	err := s.tx.Run(ctx, func(ctx context.Context) error {
		if err := s.store.Set(ctx, caller, provider, true); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to write grant")
		}
		return s.events.Emit(ctx, events.AccessGranted(caller, provider))
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.IncGrantChange(metrics.GrantActionGrant)
	}
	s.logger.InfoContext(ctx, "access granted",
		"owner", caller.String(),
		"provider", provider.String(),
	)
	return nil
}

// Revoke removes provider's authorization. Revoking a never-granted pair
// lands in the same denied state and still emits AccessRevoked.
func (s *Service) Revoke(ctx context.Context, caller, provider id.Identity) error {
	ctx, span := s.tracer.Start(ctx, "access.Revoke",
		trace.WithAttributes(attribute.String("owner", caller.String())))
	defer span.End()

	err := s.tx.Run(ctx, func(ctx context.Context) error {
		if err := s.store.Set(ctx, caller, provider, false); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to write revocation")
		}
		return s.events.Emit(ctx, events.AccessRevoked(caller, provider))
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.IncGrantChange(metrics.GrantActionRevoke)
	}
	s.logger.InfoContext(ctx, "access revoked",
		"owner", caller.String(),
		"provider", provider.String(),
	)
	return nil
}

// IsAuthorized is a pure lookup; pairs never written are denied. It emits no
// notification and observes the state of the most recent committed mutation.
func (s *Service) IsAuthorized(ctx context.Context, owner, grantee id.Identity) (bool, error) {
	granted, err := s.store.Get(ctx, owner, grantee)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read grant")
	}
	return granted, nil
}

// List returns the caller's currently granted providers.
func (s *Service) List(ctx context.Context, caller id.Identity) ([]Grant, error) {
	grants, err := s.store.ListByOwner(ctx, caller)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list grants")
	}
	active := grants[:0]
	for _, g := range grants {
		if g.Granted {
			active = append(active, g)
		}
	}
	return active, nil
}
