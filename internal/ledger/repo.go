package ledger

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/isaiahriv1234/Freight-Project/pkg/db/models"
)

// Repository manages persistence for procurement order rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.ProcurementOrder, error)
	Upsert(ctx context.Context, rows []models.ProcurementOrder) error
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context) ([]models.ProcurementOrder, error) {
	var rows []models.ProcurementOrder
	if err := r.db.WithContext(ctx).
		Order("order_date ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Upsert inserts rows, replacing existing rows that share an id.
func (r *repository) Upsert(ctx context.Context, rows []models.ProcurementOrder) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"order_date", "supplier_name", "total_amount", "shipping_cost", "carrier",
				"lead_time_days", "geographic_location", "diversity_category",
				"consolidation_level", "updated_at",
			}),
		}).
		CreateInBatches(rows, 200).Error
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.ProcurementOrder{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
