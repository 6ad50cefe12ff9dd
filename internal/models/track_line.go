package models

import "time"

// TrackLine is a named run of track owning an ordered set of sections.
type TrackLine struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	IsActive    bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Relations
	Sections []Section `gorm:"foreignKey:TrackLineID" json:"sections,omitempty"`
}

// TableName specifies the table name for TrackLine model
func (TrackLine) TableName() string {
	return "track_lines"
}
