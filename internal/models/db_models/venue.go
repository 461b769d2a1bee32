package db_models

import "github.com/lib/pq"

type Venue struct {
	BaseModel
	Slug          string `gorm:"uniqueIndex"`
	Name          string
	Latitude      float64
	Longitude     float64
	Categories    pq.StringArray `gorm:"type:text[]"`
	OpeningHours  string
	PriceTier     *int
	Accessibility pq.StringArray `gorm:"type:text[]"`
	ContactInfo   string
	Status        string
	Partner       bool
	Rating        *float64
	Description   string
}
