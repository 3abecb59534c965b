package ledger

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/isaiahriv1234/Freight-Project/pkg/db/models"
	pkgerrors "github.com/isaiahriv1234/Freight-Project/pkg/errors"
	"github.com/isaiahriv1234/Freight-Project/pkg/logger"
)

// TxRunner executes fn inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns the ledger snapshot and its backing rows.
type Service interface {
	Snapshot() *Snapshot
	Refresh(ctx context.Context) (*Snapshot, error)
	Ingest(ctx context.Context, raws []RawOrder) (IngestResult, error)
}

// IngestResult reports the outcome of an ingest call.
type IngestResult struct {
	Accepted int                `json:"accepted"`
	Rejected []DataQualityIssue `json:"rejected"`
	Version  uint64             `json:"version"`
	Orders   int                `json:"ledger_orders"`
}

type service struct {
	// refreshMu spans the row read and the publish, so an older read can
	// never replace a snapshot built from a newer one.
	refreshMu  sync.Mutex
	repo       Repository
	tx         TxRunner
	store      *Store
	logg       *logger.Logger
	windowDays int
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository, tx TxRunner, store *Store, logg *logger.Logger, windowDays int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if store == nil {
		return nil, fmt.Errorf("ledger store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if windowDays <= 0 {
		return nil, fmt.Errorf("consolidation window must be positive")
	}
	return &service{repo: repo, tx: tx, store: store, logg: logg, windowDays: windowDays}, nil
}

func (s *service) Snapshot() *Snapshot {
	return s.store.Snapshot()
}

// Refresh reloads every stored row and publishes a new snapshot.
func (s *service) Refresh(ctx context.Context) (*Snapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ledger rows")
	}
	raws := make([]RawOrder, 0, len(rows))
	for _, row := range rows {
		raws = append(raws, RawFromModel(row))
	}
	snap, issues := s.store.Replace(ctx, s.logg, raws, s.windowDays)

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"ledger_version": snap.Version(),
		"orders":         snap.Len(),
		"excluded":       len(issues),
	})
	s.logg.Info(logCtx, "ledger snapshot refreshed")
	return snap, nil
}

// Ingest stores the valid rows and refreshes the snapshot. Invalid rows are
// reported back but never stored.
func (s *service) Ingest(ctx context.Context, raws []RawOrder) (IngestResult, error) {
	if len(raws) == 0 {
		return IngestResult{}, pkgerrors.New(pkgerrors.CodeValidation, "at least one order is required")
	}

	orders, issues := Build(ctx, s.logg, raws)
	rows := make([]models.ProcurementOrder, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, ModelFromOrder(o))
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Upsert(ctx, rows)
	}); err != nil {
		return IngestResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store ledger rows")
	}

	snap, err := s.Refresh(ctx)
	if err != nil {
		return IngestResult{}, err
	}
	if issues == nil {
		issues = []DataQualityIssue{}
	}
	return IngestResult{
		Accepted: len(rows),
		Rejected: issues,
		Version:  snap.Version(),
		Orders:   snap.Len(),
	}, nil
}
