package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
)

// HistoryTimeLayout is how prediction timestamps are rendered in history
const HistoryTimeLayout = "2006-01-02 15:04:05"

// Prediction represents one stored prediction of a user
type Prediction struct {
	ID             int64           `json:"id" db:"id"`
	OwnerID        int64           `json:"owner_id" db:"owner_id"`
	City           string          `json:"city" db:"city"`
	Neighborhood   string          `json:"neighborhood" db:"neighborhood"`
	Beds           int             `json:"beds" db:"beds"`
	Baths          int             `json:"baths" db:"baths"`
	Size           string          `json:"size" db:"size"`
	PropertyType   string          `json:"property_type" db:"property_type"`
	PredictedPrice float64         `json:"predicted_price" db:"predicted_price"`
	FormattedPrice string          `json:"formatted_price" db:"formatted_price"`
	ModelVersion   string          `json:"model_version" db:"model_version"`
	RequestID      string          `json:"request_id" db:"request_id"`
	FeatureVector  pgvector.Vector `json:"-" db:"feature_vector"`
	Attributes     JSONMap         `json:"attributes,omitempty" db:"attributes"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// JSONMap represents a JSON object column
type JSONMap map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface
func (j *JSONMap) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("unsupported JSONMap source %T", value)
	}
}
