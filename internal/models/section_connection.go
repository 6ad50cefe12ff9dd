package models

import "time"

// ConnectionType describes how two sections join.
type ConnectionType string

const (
	ConnectionDirect   ConnectionType = "direct"
	ConnectionSwitch   ConnectionType = "switch"
	ConnectionJunction ConnectionType = "junction"
)

// Valid reports whether the connection type is one of the declared values.
func (c ConnectionType) Valid() bool {
	switch c {
	case ConnectionDirect, ConnectionSwitch, ConnectionJunction:
		return true
	}
	return false
}

// SectionConnection is an edge between two sections, optionally routed
// through a switch. The full set of connections forms the layout graph.
type SectionConnection struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	FromSectionID  uint           `gorm:"not null;index" json:"fromSectionId"`
	ToSectionID    uint           `gorm:"not null;index" json:"toSectionId"`
	ConnectionType ConnectionType `gorm:"size:20;not null;default:direct" json:"connectionType"`
	SwitchID       *uint          `gorm:"index" json:"switchId,omitempty"`
	Bidirectional  bool           `gorm:"not null;default:true" json:"bidirectional"`
	IsActive       bool           `gorm:"not null;default:true" json:"isActive"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`

	// Relations
	FromSection *Section `gorm:"foreignKey:FromSectionID" json:"fromSection,omitempty"`
	ToSection   *Section `gorm:"foreignKey:ToSectionID" json:"toSection,omitempty"`
	Switch      *Switch  `gorm:"foreignKey:SwitchID" json:"switch,omitempty"`
}

// TableName specifies the table name for SectionConnection model
func (SectionConnection) TableName() string {
	return "section_connections"
}
