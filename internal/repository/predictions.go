package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Yogeshkumarverma761/lumina-analytics/internal/model"
)

const predictionColumns = `
	id, owner_id, city, neighborhood, beds, baths, size, property_type,
	predicted_price, formatted_price, model_version, request_id,
	feature_vector, attributes, created_at`

// CreatePrediction stores one history row and fills in its ID
func (r *Repository) CreatePrediction(ctx context.Context, p *model.Prediction) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	query := r.rebind(`
		INSERT INTO predictions (
			owner_id, city, neighborhood, beds, baths, size, property_type,
			predicted_price, formatted_price, model_version, request_id,
			feature_vector, attributes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query,
		p.OwnerID, p.City, p.Neighborhood, p.Beds, p.Baths, p.Size, p.PropertyType,
		p.PredictedPrice, p.FormattedPrice, p.ModelVersion, p.RequestID,
		p.FeatureVector, p.Attributes, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to create prediction: %w", err)
	}
	return nil
}

// ListPredictionsByOwner returns a user's predictions, newest first.
// limit <= 0 returns all of them.
func (r *Repository) ListPredictionsByOwner(ctx context.Context, ownerID int64, limit int) ([]model.Prediction, error) {
	query := fmt.Sprintf(`SELECT %s FROM predictions WHERE owner_id = ? ORDER BY created_at DESC, id DESC`, predictionColumns)
	args := []interface{}{ownerID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	predictions := []model.Prediction{}
	if err := r.db.SelectContext(ctx, &predictions, r.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	return predictions, nil
}

// GetPrediction returns one prediction of ownerID, or nil, nil when it does
// not exist or belongs to someone else.
func (r *Repository) GetPrediction(ctx context.Context, ownerID, id int64) (*model.Prediction, error) {
	var p model.Prediction
	query := r.rebind(fmt.Sprintf(`SELECT %s FROM predictions WHERE id = ? AND owner_id = ?`, predictionColumns))
	if err := r.db.GetContext(ctx, &p, query, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return &p, nil
}

// CountPredictions returns the number of stored predictions
func (r *Repository) CountPredictions(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM predictions`); err != nil {
		return 0, fmt.Errorf("failed to count predictions: %w", err)
	}
	return total, nil
}
