package model

import (
	"fmt"

	"github.com/Yogeshkumarverma761/lumina-analytics/internal/features"
)

// PredictionRequest is the body of POST /predict. Every field is optional;
// absent fields default inside the feature pipeline.
type PredictionRequest struct {
	URL  string `json:"url"`
	Beds *int   `json:"beds"`
	City string `json:"city"`
	Date string `json:"date"`
	// Size is usually text such as "1200 sqft"; other JSON types are kept so
	// the size parser can report them as malformed
	Size         any    `json:"size"`
	Type         string `json:"type"`
	Baths        *int   `json:"baths"`
	Neighborhood string `json:"neighborhood"`
}

// Record converts the request into the raw feature record. Empty strings and
// nil counts are left out so they take the pipeline default.
func (r *PredictionRequest) Record() features.Record {
	rec := features.Record{}
	put := func(k, v string) {
		if v != "" {
			rec[k] = v
		}
	}
	put("url", r.URL)
	put("date", r.Date)
	put("city", r.City)
	put("neighborhood", r.Neighborhood)
	switch size := r.Size.(type) {
	case nil:
	case string:
		put("size", size)
	default:
		rec["size"] = size
	}
	put("type", r.Type)
	if r.Beds != nil {
		rec["beds"] = *r.Beds
	}
	if r.Baths != nil {
		rec["baths"] = *r.Baths
	}
	return rec
}

// SizeText renders the submitted size for history rows
func (r *PredictionRequest) SizeText() string {
	switch size := r.Size.(type) {
	case nil:
		return ""
	case string:
		return size
	default:
		return fmt.Sprint(size)
	}
}

// PredictionResponse is returned by POST /predict
type PredictionResponse struct {
	PredictedPrice float64 `json:"predicted_price"`
	FormattedPrice string  `json:"formatted_price"`
	ModelVersion   string  `json:"model_version,omitempty"`
}

// HistoryItem is one row of GET /history
type HistoryItem struct {
	ID             int64   `json:"id"`
	City           string  `json:"city"`
	Neighborhood   string  `json:"neighborhood"`
	PredictedPrice float64 `json:"predicted_price"`
	Timestamp      string  `json:"timestamp"`
}

// HistoryDetail is GET /history/:id
type HistoryDetail struct {
	HistoryItem
	Beds           int       `json:"beds"`
	Baths          int       `json:"baths"`
	Size           string    `json:"size"`
	PropertyType   string    `json:"type"`
	FormattedPrice string    `json:"formatted_price"`
	ModelVersion   string    `json:"model_version"`
	FeatureVector  []float32 `json:"feature_vector"`
}

// OptionsResponse lists valid choices for the prediction form
type OptionsResponse struct {
	Cities              []string            `json:"cities"`
	Types               []string            `json:"types"`
	NeighborhoodMapping map[string][]string `json:"neighborhood_mapping"`
}

// RegisterRequest is the body of POST /register
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries a bearer token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// GoogleLoginRequest is the body of POST /google-login
type GoogleLoginRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// MeResponse is GET /me
type MeResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}
