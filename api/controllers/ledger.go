package controllers

import (
	"context"
	"net/http"

	"github.com/isaiahriv1234/Freight-Project/api/responses"
	"github.com/isaiahriv1234/Freight-Project/api/validators"
	"github.com/isaiahriv1234/Freight-Project/internal/ledger"
	pkgerrors "github.com/isaiahriv1234/Freight-Project/pkg/errors"
	"github.com/isaiahriv1234/Freight-Project/pkg/logger"
)

type ledgerService interface {
	Refresh(ctx context.Context) (*ledger.Snapshot, error)
	Ingest(ctx context.Context, raws []ledger.RawOrder) (ledger.IngestResult, error)
}

type ingestRequest struct {
	Orders []ledger.RawOrder `json:"orders" validate:"required,min=1"`
}

type snapshotView struct {
	Version    uint64  `json:"version"`
	Orders     int     `json:"orders"`
	TotalSpend float64 `json:"total_spend"`
	Suppliers  int     `json:"suppliers"`
	Carriers   int     `json:"carriers"`
}

func toSnapshotView(s *ledger.Snapshot) snapshotView {
	return snapshotView{
		Version:    s.Version(),
		Orders:     s.Len(),
		TotalSpend: s.TotalSpend(),
		Suppliers:  len(s.Suppliers()),
		Carriers:   len(s.Carriers()),
	}
}

// LedgerIngest stores the valid rows of the payload and reports the rest.
func LedgerIngest(svc ledgerService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		var req ingestRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Ingest(r.Context(), req.Orders)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func LedgerRefresh(svc ledgerService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}
		snap, err := svc.Refresh(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toSnapshotView(snap))
	}
}
