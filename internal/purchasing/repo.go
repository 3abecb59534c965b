package purchasing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/isaiahriv1234/Freight-Project/pkg/db"
	"github.com/isaiahriv1234/Freight-Project/pkg/db/models"
	"github.com/isaiahriv1234/Freight-Project/pkg/enums"
	pkgerrors "github.com/isaiahriv1234/Freight-Project/pkg/errors"
	"github.com/isaiahriv1234/Freight-Project/pkg/pagination"
)

const transitionVersionConstraint = "purchase_request_transitions_version_unique"

// Repository exposes persistence helpers for purchase requests and their
// transition history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, req *models.PurchaseRequest) error
	AppendTransition(ctx context.Context, t *models.PurchaseRequestTransition) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PurchaseRequest, error)
	Transitions(ctx context.Context, requestID uuid.UUID) ([]models.PurchaseRequestTransition, error)
	Advance(ctx context.Context, id uuid.UUID, from, to enums.PurchaseRequestStatus, fields map[string]any) (bool, error)
	List(ctx context.Context, q listQuery) ([]models.PurchaseRequest, *pagination.Cursor, error)
	ListUnresolved(ctx context.Context) ([]models.PurchaseRequest, error)
	RefreshEligibility(ctx context.Context, supplier, department string) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a purchasing repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listQuery struct {
	status *enums.PurchaseRequestStatus
	limit  int
	cursor *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, req *models.PurchaseRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// AppendTransition records one history row. A second writer claiming the same
// version surfaces as a state conflict.
func (r *repositoryImpl) AppendTransition(ctx context.Context, t *models.PurchaseRequestTransition) error {
	err := r.db.WithContext(ctx).Create(t).Error
	if dbpkg.IsUniqueViolation(err, transitionVersionConstraint) {
		return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "request changed concurrently")
	}
	return err
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.PurchaseRequest, error) {
	var req models.PurchaseRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repositoryImpl) Transitions(ctx context.Context, requestID uuid.UUID) ([]models.PurchaseRequestTransition, error) {
	var rows []models.PurchaseRequestTransition
	if err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("version ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Advance moves a request from one status to the next only if it is still in
// from. It reports false when another writer got there first.
func (r *repositoryImpl) Advance(ctx context.Context, id uuid.UUID, from, to enums.PurchaseRequestStatus, fields map[string]any) (bool, error) {
	updates := map[string]any{
		"status":  to,
		"version": gorm.Expr("version + 1"),
	}
	for k, v := range fields {
		updates[k] = v
	}
	result := r.db.WithContext(ctx).
		Model(&models.PurchaseRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) List(ctx context.Context, q listQuery) ([]models.PurchaseRequest, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.PurchaseRequest{})
	if q.status != nil {
		query = query.Where("status = ?", *q.status)
	}
	if q.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", q.cursor.CreatedAt, q.cursor.CreatedAt, q.cursor.ID)
	}

	var rows []models.PurchaseRequest
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(q.limit)).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	rows, next := pagination.Trim(rows, q.limit, func(row models.PurchaseRequest) pagination.Cursor {
		return pagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
	})
	return rows, next, nil
}

func (r *repositoryImpl) ListUnresolved(ctx context.Context) ([]models.PurchaseRequest, error) {
	var rows []models.PurchaseRequest
	if err := r.db.WithContext(ctx).
		Where("status IN ?", unresolvedStatuses).
		Order("supplier_name ASC, created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// RefreshEligibility recomputes the consolidation flag for one supplier and
// department: unresolved requests are eligible while at least two remain,
// resolved ones never are.
func (r *repositoryImpl) RefreshEligibility(ctx context.Context, supplier, department string) error {
	scope := r.db.WithContext(ctx).
		Model(&models.PurchaseRequest{}).
		Where("supplier_name = ? AND department = ?", supplier, department).
		Session(&gorm.Session{})

	var open int64
	if err := scope.Where("status IN ?", unresolvedStatuses).Count(&open).Error; err != nil {
		return err
	}
	if err := scope.
		Where("status IN ?", unresolvedStatuses).
		UpdateColumn("consolidation_eligible", open > 1).Error; err != nil {
		return err
	}
	return scope.
		Where("status NOT IN ?", unresolvedStatuses).
		UpdateColumn("consolidation_eligible", false).Error
}
