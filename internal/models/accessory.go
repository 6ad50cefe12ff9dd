package models

import "time"

// ControlType drives how the dispatcher actuates an accessory.
type ControlType string

const (
	ControlOnOff  ControlType = "onOff"
	ControlToggle ControlType = "toggle"
	ControlTimed  ControlType = "timed"
)

// Valid reports whether the control type is one of the declared values.
func (c ControlType) Valid() bool {
	switch c {
	case ControlOnOff, ControlToggle, ControlTimed:
		return true
	}
	return false
}

// Accessory is a controllable physical device (signal, light, turnout motor)
// addressed by an opaque hardware address string.
type Accessory struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Name        string      `gorm:"size:100;not null;index" json:"name"`
	CategoryID  uint        `gorm:"not null;index" json:"categoryId"`
	ControlType ControlType `gorm:"size:20;not null" json:"controlType"`
	Address     string      `gorm:"size:50;not null" json:"address"`
	IsActive    bool        `gorm:"not null;default:true" json:"isActive"`
	TimedMs     *int        `json:"timedMs,omitempty"`
	SectionID   *uint       `gorm:"index" json:"sectionId,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`

	// Relations
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Section  *Section  `gorm:"foreignKey:SectionID" json:"section,omitempty"`
}

// TableName specifies the table name for Accessory model
func (Accessory) TableName() string {
	return "accessories"
}
