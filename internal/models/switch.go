package models

import "time"

// SwitchKind is the static construction type of a switch.
type SwitchKind string

const (
	KindTurnout   SwitchKind = "turnout"
	KindCrossover SwitchKind = "crossover"
)

// Valid reports whether the kind is one of the declared values.
func (k SwitchKind) Valid() bool {
	return k == KindTurnout || k == KindCrossover
}

// SwitchPosition is the mutable runtime route state of a switch, distinct
// from its static kind. Transitions are unconstrained.
type SwitchPosition string

const (
	PositionStraight  SwitchPosition = "straight"
	PositionDivergent SwitchPosition = "divergent"
	PositionUnknown   SwitchPosition = "unknown"
)

// Valid reports whether the position is one of the declared values.
func (p SwitchPosition) Valid() bool {
	switch p {
	case PositionStraight, PositionDivergent, PositionUnknown:
		return true
	}
	return false
}

// Switch is a turnout or crossover located on a section and actuated by an
// accessory (the motor).
type Switch struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         *string        `gorm:"size:100;index" json:"name,omitempty"`
	AccessoryID  uint           `gorm:"not null;index" json:"accessoryId"`
	SectionID    uint           `gorm:"not null;index" json:"sectionId"`
	Kind         SwitchKind     `gorm:"size:20;not null;default:turnout" json:"kind"`
	DefaultRoute string         `gorm:"size:20" json:"defaultRoute"`
	Orientation  *float64       `json:"orientation,omitempty"`
	PositionX    *float64       `json:"positionX,omitempty"`
	PositionY    *float64       `json:"positionY,omitempty"`
	PositionZ    *float64       `json:"positionZ,omitempty"`
	Position     SwitchPosition `gorm:"size:20;not null;default:unknown" json:"position"`
	IsActive     bool           `gorm:"not null;default:true" json:"isActive"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`

	// Relations
	Accessory *Accessory `gorm:"foreignKey:AccessoryID" json:"accessory,omitempty"`
	Section   *Section   `gorm:"foreignKey:SectionID" json:"section,omitempty"`
}

// TableName specifies the table name for Switch model
func (Switch) TableName() string {
	return "switches"
}
