package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/Yogeshkumarverma761/lumina-analytics/internal/events"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/logger"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/model"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/pipeline"
	"github.com/pgvector/pgvector-go"
)

// ErrNotFound is returned for history rows that do not exist for the caller
var ErrNotFound = errors.New("not found")

// PredictionStore persists prediction history
type PredictionStore interface {
	CreatePrediction(ctx context.Context, p *model.Prediction) error
	ListPredictionsByOwner(ctx context.Context, ownerID int64, limit int) ([]model.Prediction, error)
	GetPrediction(ctx context.Context, ownerID, id int64) (*model.Prediction, error)
}

// PredictionService runs predictions and manages history
type PredictionService struct {
	pipeline      *pipeline.Pipeline
	store         PredictionStore
	publisher     events.Publisher
	drift         *DriftMonitor
	neighborhoods map[string][]string
	historyLimit  int
	log           *logger.Logger
}

// PredictionServiceOptions wires the optional collaborators
type PredictionServiceOptions struct {
	Publisher       events.Publisher
	Drift           *DriftMonitor
	NeighborhoodMap map[string][]string
	HistoryLimit    int
}

// NewPredictionService creates a new prediction service. p may be nil when the
// model failed to load; Predict then returns pipeline.ErrServiceUnavailable.
func NewPredictionService(p *pipeline.Pipeline, store PredictionStore, opts PredictionServiceOptions, log *logger.Logger) *PredictionService {
	publisher := opts.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	neighborhoods := opts.NeighborhoodMap
	if neighborhoods == nil {
		neighborhoods = map[string][]string{}
	}
	return &PredictionService{
		pipeline:      p,
		store:         store,
		publisher:     publisher,
		drift:         opts.Drift,
		neighborhoods: neighborhoods,
		historyLimit:  opts.HistoryLimit,
		log:           log.With("service", "PredictionService"),
	}
}

// Ready reports whether a model is loaded
func (s *PredictionService) Ready() bool {
	return s.pipeline != nil
}

// ModelVersion returns the loaded training run id
func (s *PredictionService) ModelVersion() string {
	return s.pipeline.Version()
}

// Predict scores req. When user is non-nil the result is stored in their
// history; a storage failure is logged and does not fail the prediction.
func (s *PredictionService) Predict(ctx context.Context, user *model.User, req *model.PredictionRequest, requestID string) (*model.PredictionResponse, error) {
	res, err := s.pipeline.Predict(req.Record())
	if err != nil {
		if s.drift != nil {
			s.drift.RecordFailure()
		}
		s.log.Error("Prediction failed", "request_id", requestID, "error", err)
		return nil, err
	}
	if s.drift != nil {
		s.drift.RecordServed()
	}

	var userID *int64
	if user != nil {
		userID = &user.ID
		s.saveHistory(ctx, user, req, res, requestID)
	}

	evt := events.PredictionEvent{
		RequestID:      requestID,
		ModelVersion:   s.pipeline.Version(),
		UserID:         userID,
		City:           req.City,
		PropertyType:   req.Type,
		PredictedPrice: res.Value,
		Anomalies:      len(res.Anomalies),
		At:             time.Now().UTC(),
	}
	if err := s.publisher.PublishPrediction(evt); err != nil {
		s.log.Warn("Failed to publish prediction event", "request_id", requestID, "error", err)
	}

	return &model.PredictionResponse{
		PredictedPrice: res.Value,
		FormattedPrice: res.Formatted,
		ModelVersion:   s.pipeline.Version(),
	}, nil
}

func (s *PredictionService) saveHistory(ctx context.Context, user *model.User, req *model.PredictionRequest, res *pipeline.Result, requestID string) {
	vec := make([]float32, len(res.Vector))
	for i, v := range res.Vector {
		vec[i] = float32(v)
	}

	record := &model.Prediction{
		OwnerID:        user.ID,
		City:           req.City,
		Neighborhood:   req.Neighborhood,
		Beds:           derefInt(req.Beds),
		Baths:          derefInt(req.Baths),
		Size:           req.SizeText(),
		PropertyType:   req.Type,
		PredictedPrice: res.Value,
		FormattedPrice: res.Formatted,
		ModelVersion:   s.pipeline.Version(),
		RequestID:      requestID,
		FeatureVector:  pgvector.NewVector(vec),
		Attributes:     model.JSONMap{"url": req.URL, "date": req.Date},
	}
	if err := s.store.CreatePrediction(ctx, record); err != nil {
		s.log.Error("Failed to save prediction history", "request_id", requestID, "user_id", user.ID, "error", err)
	}
}

// History returns the caller's predictions, newest first
func (s *PredictionService) History(ctx context.Context, user *model.User) ([]model.HistoryItem, error) {
	rows, err := s.store.ListPredictionsByOwner(ctx, user.ID, s.historyLimit)
	if err != nil {
		return nil, err
	}

	items := make([]model.HistoryItem, 0, len(rows))
	for _, p := range rows {
		items = append(items, historyItem(p))
	}
	return items, nil
}

// HistoryDetail returns one of the caller's predictions with its inputs and
// the feature vector that was scored.
func (s *PredictionService) HistoryDetail(ctx context.Context, user *model.User, id int64) (*model.HistoryDetail, error) {
	p, err := s.store.GetPrediction(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return &model.HistoryDetail{
		HistoryItem:    historyItem(*p),
		Beds:           p.Beds,
		Baths:          p.Baths,
		Size:           p.Size,
		PropertyType:   p.PropertyType,
		FormattedPrice: p.FormattedPrice,
		ModelVersion:   p.ModelVersion,
		FeatureVector:  p.FeatureVector.Slice(),
	}, nil
}

// Options returns the selectable cities, property types and the city to
// neighborhood mapping. Without a model the lists are empty.
func (s *PredictionService) Options() model.OptionsResponse {
	cities := sortedCopy(s.pipeline.KnownCategories("city"))
	types := sortedCopy(s.pipeline.KnownCategories("type"))
	return model.OptionsResponse{
		Cities:              cities,
		Types:               types,
		NeighborhoodMapping: s.neighborhoods,
	}
}

func historyItem(p model.Prediction) model.HistoryItem {
	return model.HistoryItem{
		ID:             p.ID,
		City:           p.City,
		Neighborhood:   p.Neighborhood,
		PredictedPrice: p.PredictedPrice,
		Timestamp:      p.CreatedAt.UTC().Format(model.HistoryTimeLayout),
	}
}

func sortedCopy(in []string) []string {
	out := append([]string{}, in...)
	sort.Strings(out)
	return out
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
