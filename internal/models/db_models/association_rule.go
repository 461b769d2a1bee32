package db_models

import "time"

// AssociationRule rows are replaced wholesale on every mining run; Version
// identifies which run produced a row.
type AssociationRule struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Seed        string `gorm:"index"`
	Recommended string
	Support     float64
	Confidence  float64
	Lift        float64
	Version     int64     `gorm:"index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}
