package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isaiahriv1234/Freight-Project/internal/purchasing"
	"github.com/isaiahriv1234/Freight-Project/pkg/enums"
	pkgerrors "github.com/isaiahriv1234/Freight-Project/pkg/errors"
	"github.com/isaiahriv1234/Freight-Project/pkg/logger"
)

type fakePurchasingService struct {
	submitted  purchasing.SubmitInput
	decided    purchasing.DecisionInput
	decidedID  uuid.UUID
	listParams purchasing.ListParams
	detail     *purchasing.Detail
	candidates []purchasing.Candidate
	err        error
}

func (f *fakePurchasingService) Submit(ctx context.Context, input purchasing.SubmitInput) (*purchasing.Detail, error) {
	f.submitted = input
	return f.detail, f.err
}

func (f *fakePurchasingService) Decide(ctx context.Context, id uuid.UUID, input purchasing.DecisionInput) (*purchasing.Detail, error) {
	f.decidedID = id
	f.decided = input
	return f.detail, f.err
}

func (f *fakePurchasingService) Get(ctx context.Context, id uuid.UUID) (*purchasing.Detail, error) {
	return f.detail, f.err
}

func (f *fakePurchasingService) List(ctx context.Context, params purchasing.ListParams) (*purchasing.ListResult, error) {
	f.listParams = params
	if f.err != nil {
		return nil, f.err
	}
	return &purchasing.ListResult{Items: []purchasing.RequestView{f.detail.Request}}, nil
}

func (f *fakePurchasingService) ConsolidationCandidates(ctx context.Context) ([]purchasing.Candidate, error) {
	return f.candidates, f.err
}

func sampleDetail(status enums.PurchaseRequestStatus) *purchasing.Detail {
	return &purchasing.Detail{
		Request: purchasing.RequestView{
			ID:            uuid.New(),
			Requester:     "jordan",
			Department:    "Facilities",
			SupplierName:  "Acme",
			TotalAmount:   decimal.RequireFromString("2500.00"),
			Urgency:       enums.UrgencyStandard,
			ApprovalLevel: enums.ApprovalLevelManager,
			Status:        status,
			Version:       2,
		},
	}
}

func withRequestID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("requestId", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestPurchaseRequestSubmitCreates(t *testing.T) {
	svc := &fakePurchasingService{detail: sampleDetail(enums.PurchaseRequestStatusPendingApproval)}
	body := strings.NewReader(`{"requester":"jordan","department":"Facilities","supplier_name":"Acme","total_amount":"2500.00","urgency":"standard"}`)

	rec := httptest.NewRecorder()
	PurchaseRequestSubmit(svc, logger.Nop())(rec, httptest.NewRequest(http.MethodPost, "/api/v1/purchase-requests", body))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Acme", svc.submitted.SupplierName)
	assert.Equal(t, "2500.00", svc.submitted.TotalAmount)
	data := decodeEnvelope(t, rec).Data
	assert.Equal(t, string(enums.PurchaseRequestStatusPendingApproval), data["request"].(map[string]any)["status"])
}

func TestPurchaseRequestSubmitRequiresFields(t *testing.T) {
	svc := &fakePurchasingService{}
	rec := httptest.NewRecorder()
	PurchaseRequestSubmit(svc, logger.Nop())(rec, httptest.NewRequest(http.MethodPost, "/api/v1/purchase-requests", strings.NewReader(`{"requester":"jordan"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.submitted.Requester)
}

func TestPurchaseRequestListParsesQuery(t *testing.T) {
	svc := &fakePurchasingService{detail: sampleDetail(enums.PurchaseRequestStatusSubmitted)}
	rec := httptest.NewRecorder()
	PurchaseRequestList(svc, logger.Nop())(rec, httptest.NewRequest(http.MethodGet, "/api/v1/purchase-requests?limit=5&status=submitted&cursor=abc", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, svc.listParams.Limit)
	assert.Equal(t, "submitted", svc.listParams.Status)
	assert.Equal(t, "abc", svc.listParams.Cursor)

	rec = httptest.NewRecorder()
	PurchaseRequestList(svc, logger.Nop())(rec, httptest.NewRequest(http.MethodGet, "/api/v1/purchase-requests?limit=0", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPurchaseRequestDetailRejectsBadID(t *testing.T) {
	svc := &fakePurchasingService{}
	rec := httptest.NewRecorder()
	req := withRequestID(httptest.NewRequest(http.MethodGet, "/api/v1/purchase-requests/nope", nil), "nope")
	PurchaseRequestDetail(svc, logger.Nop())(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeValidation), decodeEnvelope(t, rec).Error.Code)
}

func TestPurchaseRequestDetailNotFound(t *testing.T) {
	svc := &fakePurchasingService{err: pkgerrors.New(pkgerrors.CodeNotFound, "purchase request not found")}
	id := uuid.New()
	rec := httptest.NewRecorder()
	req := withRequestID(httptest.NewRequest(http.MethodGet, "/api/v1/purchase-requests/"+id.String(), nil), id.String())
	PurchaseRequestDetail(svc, logger.Nop())(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPurchaseRequestDecisionSanitizesNotes(t *testing.T) {
	svc := &fakePurchasingService{detail: sampleDetail(enums.PurchaseRequestStatusPOCreated)}
	id := uuid.New()
	body := `{"decision":"approve","actor":"morgan","notes":"  ok to ship  "}`
	rec := httptest.NewRecorder()
	req := withRequestID(httptest.NewRequest(http.MethodPost, "/api/v1/purchase-requests/"+id.String()+"/decision", strings.NewReader(body)), id.String())
	PurchaseRequestDecision(svc, logger.Nop())(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, svc.decidedID)
	assert.Equal(t, enums.PurchaseDecisionApprove, svc.decided.Decision)
	assert.Equal(t, "ok to ship", svc.decided.Notes)
}

func TestPurchaseRequestDecisionConflictCarriesCurrentState(t *testing.T) {
	current := sampleDetail(enums.PurchaseRequestStatusRejected)
	svc := &fakePurchasingService{
		err: pkgerrors.New(pkgerrors.CodeStateConflict, "purchase request already resolved").
			WithDetails(map[string]any{"status": string(current.Request.Status), "version": current.Request.Version}),
	}
	id := uuid.New()
	rec := httptest.NewRecorder()
	req := withRequestID(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"decision":"approve","actor":"morgan"}`)), id.String())
	PurchaseRequestDecision(svc, logger.Nop())(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"rejected"`)
	assert.Contains(t, rec.Body.String(), "already resolved")
}

func TestPurchaseRequestConsolidationListsCandidates(t *testing.T) {
	svc := &fakePurchasingService{candidates: []purchasing.Candidate{{Supplier: "Acme", RequestCount: 2}}}
	rec := httptest.NewRecorder()
	PurchaseRequestConsolidation(svc, logger.Nop())(rec, httptest.NewRequest(http.MethodGet, "/api/v1/purchase-requests/consolidation", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	candidates := decodeEnvelope(t, rec).Data["candidates"].([]any)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Acme", candidates[0].(map[string]any)["supplier"])
}
