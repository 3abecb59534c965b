package purchasing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/isaiahriv1234/Freight-Project/pkg/db/models"
	"github.com/isaiahriv1234/Freight-Project/pkg/enums"
	pkgerrors "github.com/isaiahriv1234/Freight-Project/pkg/errors"
	"github.com/isaiahriv1234/Freight-Project/pkg/logger"
	"github.com/isaiahriv1234/Freight-Project/pkg/metrics"
	"github.com/isaiahriv1234/Freight-Project/pkg/pagination"
)

const systemActor = "system"

// TxRunner executes fn inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CarrierAdvisor suggests a carrier and shipping estimate for a new request.
type CarrierAdvisor interface {
	Advise(ctx context.Context, orderValue float64, urgency enums.Urgency) (carrier string, cost float64)
}

// AdvisorFunc adapts a function to CarrierAdvisor.
type AdvisorFunc func(ctx context.Context, orderValue float64, urgency enums.Urgency) (string, float64)

func (f AdvisorFunc) Advise(ctx context.Context, orderValue float64, urgency enums.Urgency) (string, float64) {
	return f(ctx, orderValue, urgency)
}

// Service runs the purchase request approval workflow.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*Detail, error)
	Decide(ctx context.Context, id uuid.UUID, input DecisionInput) (*Detail, error)
	Get(ctx context.Context, id uuid.UUID) (*Detail, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	ConsolidationCandidates(ctx context.Context) ([]Candidate, error)
}

type ServiceParams struct {
	Repo     Repository
	Tx       TxRunner
	Policy   ApprovalPolicy
	Advisor  CarrierAdvisor
	Discount float64
	Logger   *logger.Logger
	Metrics  *metrics.AnalysisMetrics
	Now      func() time.Time
}

type service struct {
	repo     Repository
	tx       TxRunner
	policy   ApprovalPolicy
	advisor  CarrierAdvisor
	discount decimal.Decimal
	logg     *logger.Logger
	metrics  *metrics.AnalysisMetrics
	now      func() time.Time
}

func NewService(p ServiceParams) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("purchasing repository required")
	}
	if p.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if p.Advisor == nil {
		return nil, fmt.Errorf("carrier advisor required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if p.Discount < 0 || p.Discount >= 1 {
		return nil, fmt.Errorf("consolidation discount must be in [0,1)")
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     p.Repo,
		tx:       p.Tx,
		policy:   p.Policy,
		advisor:  p.Advisor,
		discount: decimal.NewFromFloat(p.Discount),
		logg:     p.Logger,
		metrics:  p.Metrics,
		now:      now,
	}, nil
}

type SubmitInput struct {
	Requester       string        `json:"requester" validate:"required"`
	Department      string        `json:"department" validate:"required"`
	SupplierName    string        `json:"supplier_name" validate:"required"`
	ItemDescription string        `json:"item_description"`
	TotalAmount     string        `json:"total_amount" validate:"required,decimal_positive"`
	Urgency         enums.Urgency `json:"urgency" validate:"omitempty,enum"`
}

type DecisionInput struct {
	Decision enums.PurchaseDecision `json:"decision" validate:"required,enum"`
	Actor    string                 `json:"actor" validate:"required"`
	Notes    string                 `json:"notes"`
}

// Detail is a request with its transition history.
type Detail struct {
	Request RequestView      `json:"request"`
	History []TransitionView `json:"history"`
}

func (in SubmitInput) normalize() (SubmitInput, decimal.Decimal, error) {
	in.Requester = strings.TrimSpace(in.Requester)
	in.Department = strings.TrimSpace(in.Department)
	in.SupplierName = strings.TrimSpace(in.SupplierName)
	in.ItemDescription = strings.TrimSpace(in.ItemDescription)
	if in.Requester == "" || in.Department == "" || in.SupplierName == "" {
		return in, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "requester, department and supplier_name are required")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(in.TotalAmount))
	if err != nil {
		return in, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "total_amount must be a decimal")
	}
	if !amount.IsPositive() {
		return in, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "total_amount must be positive")
	}
	if in.Urgency == "" {
		in.Urgency = enums.UrgencyStandard
	}
	if !in.Urgency.IsValid() {
		return in, decimal.Zero, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid urgency %q", in.Urgency)
	}
	return in, amount.Round(2), nil
}

// Submit records a new request and immediately routes it: amounts within the
// auto limit are approved and turned into a PO, everything else waits for an
// approver.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*Detail, error) {
	in, amount, err := input.normalize()
	if err != nil {
		return nil, err
	}

	value, _ := amount.Float64()
	carrier, cost := s.advisor.Advise(ctx, value, in.Urgency)
	level := s.policy.Level(amount)
	now := s.now().UTC()

	req := &models.PurchaseRequest{
		ID:                    uuid.New(),
		Requester:             in.Requester,
		Department:            in.Department,
		SupplierName:          in.SupplierName,
		ItemDescription:       in.ItemDescription,
		TotalAmount:           amount,
		Urgency:               in.Urgency,
		ApprovalLevel:         level,
		Status:                enums.PurchaseRequestStatusSubmitted,
		RecommendedCarrier:    carrier,
		EstimatedShippingCost: decimal.NewFromFloat(cost).Round(2),
		Version:               1,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	var steps []enums.PurchaseRequestStatus
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, req); err != nil {
			return err
		}
		if err := repo.AppendTransition(ctx, s.transition(req.ID, nil, enums.PurchaseRequestStatusSubmitted, in.Requester, "", 1)); err != nil {
			return err
		}

		steps = []enums.PurchaseRequestStatus{enums.PurchaseRequestStatusPendingApproval}
		if level == enums.ApprovalLevelAuto {
			steps = []enums.PurchaseRequestStatus{enums.PurchaseRequestStatusAutoApproved, enums.PurchaseRequestStatusPOCreated}
		}
		from := enums.PurchaseRequestStatusSubmitted
		for i, to := range steps {
			if err := s.advance(ctx, repo, req.ID, from, to, systemActor, "", i+2); err != nil {
				return err
			}
			from = to
		}
		return repo.RefreshEligibility(ctx, req.SupplierName, req.Department)
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submit purchase request")
	}

	s.metrics.IncTransition(string(enums.PurchaseRequestStatusSubmitted))
	for _, st := range steps {
		s.metrics.IncTransition(string(st))
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"request_id":     req.ID.String(),
		"approval_level": level,
		"status":         steps[len(steps)-1],
		"supplier":       req.SupplierName,
	}), "purchase request submitted")

	return s.Get(ctx, req.ID)
}

// Decide applies an approver's decision to a pending request. A request that
// is no longer pending is reported as already resolved and left untouched.
func (s *service) Decide(ctx context.Context, id uuid.UUID, input DecisionInput) (*Detail, error) {
	if !input.Decision.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid decision %q", input.Decision)
	}
	actor := strings.TrimSpace(input.Actor)
	if actor == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor is required")
	}

	resolved := enums.PurchaseRequestStatusApproved
	final := enums.PurchaseRequestStatusPOCreated
	if input.Decision == enums.PurchaseDecisionReject {
		resolved = enums.PurchaseRequestStatusRejected
		final = enums.PurchaseRequestStatusRequesterNotified
	}

	var current *models.PurchaseRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		req, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "purchase request not found")
			}
			return err
		}
		current = req

		now := s.now().UTC()
		ok, err := repo.Advance(ctx, id, enums.PurchaseRequestStatusPendingApproval, resolved, map[string]any{
			"resolved_by": actor,
			"resolved_at": now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return errAlreadyResolved
		}
		version := req.Version + 1
		if err := repo.AppendTransition(ctx, s.transition(id, statusPtr(enums.PurchaseRequestStatusPendingApproval), resolved, actor, input.Notes, version)); err != nil {
			return err
		}
		if err := s.advance(ctx, repo, id, resolved, final, systemActor, "", version+1); err != nil {
			return err
		}
		return repo.RefreshEligibility(ctx, req.SupplierName, req.Department)
	})
	if errors.Is(err, errAlreadyResolved) {
		latest, getErr := s.Get(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"request_id": id.String(),
			"status":     latest.Request.Status,
			"actor":      actor,
		}), "purchase request already resolved")
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "request already resolved").WithDetails(latest)
	}
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decide purchase request")
	}

	s.metrics.IncTransition(string(resolved))
	s.metrics.IncTransition(string(final))
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"request_id": id.String(),
		"decision":   input.Decision,
		"actor":      actor,
		"supplier":   current.SupplierName,
	}), "purchase request resolved")

	return s.Get(ctx, id)
}

var errAlreadyResolved = errors.New("purchase request already resolved")

// advance applies one system-driven step and records it. Reaching POCreated
// also assigns the PO number.
func (s *service) advance(ctx context.Context, repo Repository, id uuid.UUID, from, to enums.PurchaseRequestStatus, actor, notes string, version int) error {
	if !CanTransition(from, to) {
		return pkgerrors.Newf(pkgerrors.CodeInternal, "illegal transition %s -> %s", from, to)
	}
	fields := map[string]any{}
	if to == enums.PurchaseRequestStatusPOCreated {
		fields["po_number"] = poNumber(id, s.now())
	}
	ok, err := repo.Advance(ctx, id, from, to, fields)
	if err != nil {
		return err
	}
	if !ok {
		return errAlreadyResolved
	}
	return repo.AppendTransition(ctx, s.transition(id, statusPtr(from), to, actor, notes, version))
}

func (s *service) transition(id uuid.UUID, from *enums.PurchaseRequestStatus, to enums.PurchaseRequestStatus, actor, notes string, version int) *models.PurchaseRequestTransition {
	return &models.PurchaseRequestTransition{
		ID:         uuid.New(),
		RequestID:  id,
		FromStatus: from,
		ToStatus:   to,
		Actor:      actor,
		Notes:      notes,
		Version:    version,
		CreatedAt:  s.now().UTC(),
	}
}

func statusPtr(s enums.PurchaseRequestStatus) *enums.PurchaseRequestStatus { return &s }

func poNumber(id uuid.UUID, at time.Time) string {
	return fmt.Sprintf("PO-%s-%s", at.UTC().Format("20060102"), strings.ToUpper(id.String()[:8]))
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase request")
	}
	history, err := s.repo.Transitions(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase request history")
	}
	return &Detail{Request: toRequestView(*req), History: toTransitionViews(history)}, nil
}

type ListParams struct {
	Status string
	pagination.Params
}

type ListResult struct {
	Items  []RequestView `json:"items"`
	Cursor string        `json:"cursor"`
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	q := listQuery{limit: params.Limit, cursor: cursor}
	if status := strings.TrimSpace(params.Status); status != "" {
		parsed, err := enums.ParsePurchaseRequestStatus(status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		q.status = &parsed
	}

	rows, next, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchase requests")
	}
	result := &ListResult{Items: make([]RequestView, 0, len(rows))}
	for _, row := range rows {
		result.Items = append(result.Items, toRequestView(row))
	}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

// Candidate is a supplier with more than one unresolved request.
type Candidate struct {
	Supplier             string          `json:"supplier"`
	RequestIDs           []uuid.UUID     `json:"request_ids"`
	RequestCount         int             `json:"request_count"`
	TotalValue           decimal.Decimal `json:"total_value"`
	EstimatedShipping    decimal.Decimal `json:"estimated_shipping"`
	ConsolidatedShipping decimal.Decimal `json:"consolidated_shipping"`
	EstimatedSavings     decimal.Decimal `json:"estimated_savings"`
	Departments          []string        `json:"departments"`
}

// ConsolidationCandidates groups unresolved requests by supplier and prices
// shipping them together at the consolidation discount.
func (s *service) ConsolidationCandidates(ctx context.Context) ([]Candidate, error) {
	rows, err := s.repo.ListUnresolved(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list unresolved purchase requests")
	}

	groups := map[string][]models.PurchaseRequest{}
	var suppliers []string
	for _, r := range rows {
		if _, ok := groups[r.SupplierName]; !ok {
			suppliers = append(suppliers, r.SupplierName)
		}
		groups[r.SupplierName] = append(groups[r.SupplierName], r)
	}
	sort.Strings(suppliers)

	factor := decimal.NewFromInt(1).Sub(s.discount)
	out := make([]Candidate, 0)
	for _, supplier := range suppliers {
		members := groups[supplier]
		if len(members) < 2 {
			continue
		}
		c := Candidate{Supplier: supplier, RequestCount: len(members)}
		depts := map[string]struct{}{}
		for _, m := range members {
			c.RequestIDs = append(c.RequestIDs, m.ID)
			c.TotalValue = c.TotalValue.Add(m.TotalAmount)
			c.EstimatedShipping = c.EstimatedShipping.Add(m.EstimatedShippingCost)
			if _, seen := depts[m.Department]; !seen {
				depts[m.Department] = struct{}{}
				c.Departments = append(c.Departments, m.Department)
			}
		}
		sort.Strings(c.Departments)
		c.ConsolidatedShipping = c.EstimatedShipping.Mul(factor).Round(2)
		c.EstimatedSavings = c.EstimatedShipping.Sub(c.ConsolidatedShipping)
		out = append(out, c)
	}
	return out, nil
}
