package models

import "time"

// Section is a segment of physical track; a node in the layout graph.
type Section struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:100;not null;index" json:"name"`
	TrackLineID   uint      `gorm:"not null;index" json:"trackLineId"`
	StartPosition *float64  `json:"startPosition,omitempty"`
	EndPosition   *float64  `json:"endPosition,omitempty"`
	Length        *float64  `json:"length,omitempty"`
	PositionX     *float64  `json:"positionX,omitempty"`
	PositionY     *float64  `json:"positionY,omitempty"`
	PositionZ     *float64  `json:"positionZ,omitempty"`
	IsOccupied    bool      `gorm:"not null;default:false" json:"isOccupied"`
	IsActive      bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// Relations
	TrackLine *TrackLine `gorm:"foreignKey:TrackLineID" json:"trackLine,omitempty"`
	Switches  []Switch   `gorm:"foreignKey:SectionID" json:"switches,omitempty"`
}

// TableName specifies the table name for Section model
func (Section) TableName() string {
	return "sections"
}
