package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskModerate RiskLevel = "moderate"
	RiskLow      RiskLevel = "low"
)

// NormalizeGeoName canonicalizes district and state names for comparison and
// storage. Every geographic name in the system passes through here; two names
// are the same place iff their normalized forms are equal.
func NormalizeGeoName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// District is one node of the geographic hierarchy. Name and State are stored
// normalized lowercase; CensusCode is the stable external identifier used to
// dedupe imports.
type District struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	Name       string `json:"name" gorm:"not null;size:100;index:idx_districts_name_state"`
	State      string `json:"state" gorm:"not null;size:100;index:idx_districts_name_state;index"`
	CensusCode string `json:"census_code" gorm:"uniqueIndex;size:20"`

	RiskLevel RiskLevel `json:"risk_level" gorm:"default:moderate;size:20"`

	// District center, WGS84 degrees
	CenterLng float64 `json:"center_lng"`
	CenterLat float64 `json:"center_lat"`

	// Training aggregates rolled up from verified sessions
	LastTrainingDate       *time.Time `json:"last_training_date"`
	TotalVolunteersTrained int        `json:"total_volunteers_trained" gorm:"default:0"`

	ImportSource string     `json:"import_source" gorm:"size:50"`
	ImportedAt   *time.Time `json:"imported_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (District) TableName() string {
	return "districts"
}

// BeforeSave normalizes geographic names so lookups never depend on the
// caller's casing or whitespace.
func (d *District) BeforeSave(tx *gorm.DB) error {
	d.Name = NormalizeGeoName(d.Name)
	d.State = NormalizeGeoName(d.State)
	return nil
}
