package db_models

import "time"

// VisitSession is one historical session-venue interaction row. The miner
// groups rows by SessionID and collapses duplicate venues within a session.
type VisitSession struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	SessionID string `gorm:"index"`
	VenueSlug string
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
