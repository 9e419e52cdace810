package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rohitbihal/smart-classroom-api/internal/models"
)

// ConstraintRepository persists the scheduling constraint aggregate as one
// JSONB document per institution.
type ConstraintRepository struct {
	db *sqlx.DB
}

// NewConstraintRepository constructs the repository.
func NewConstraintRepository(db *sqlx.DB) *ConstraintRepository {
	return &ConstraintRepository{db: db}
}

// Get loads the aggregate. Absence surfaces as sql.ErrNoRows so the service
// can seed defaults on first access.
func (r *ConstraintRepository) Get(ctx context.Context, institutionID string) (*models.Constraints, error) {
	const query = `SELECT document FROM scheduling_constraints WHERE institution_id = $1`
	var raw []byte
	if err := r.db.GetContext(ctx, &raw, query, institutionID); err != nil {
		return nil, err
	}

	var constraints models.Constraints
	if err := json.Unmarshal(raw, &constraints); err != nil {
		return nil, fmt.Errorf("unmarshal constraints for %s: %w", institutionID, err)
	}
	return &constraints, nil
}

// Replace upserts the whole aggregate document.
func (r *ConstraintRepository) Replace(ctx context.Context, institutionID string, constraints *models.Constraints) error {
	payload, err := json.Marshal(constraints)
	if err != nil {
		return fmt.Errorf("marshal constraints for %s: %w", institutionID, err)
	}

	const query = `INSERT INTO scheduling_constraints (institution_id, document, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (institution_id)
DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, institutionID, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("replace constraints for %s: %w", institutionID, err)
	}
	return nil
}
