package models

import (
	"time"

	"gorm.io/datatypes"
)

// AssetType classifies rolling stock.
type AssetType string

const (
	AssetEngine  AssetType = "Engine"
	AssetCar     AssetType = "Car"
	AssetCaboose AssetType = "Caboose"
	AssetOther   AssetType = "Other"
)

// Valid reports whether the asset type is one of the declared values.
func (t AssetType) Valid() bool {
	switch t {
	case AssetEngine, AssetCar, AssetCaboose, AssetOther:
		return true
	}
	return false
}

// TrainAsset is a piece of rolling stock tracked via an RFID tag.
type TrainAsset struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AssetID     *string   `gorm:"size:50;index" json:"assetId,omitempty"`
	RfidTagID   string    `gorm:"size:50;not null;uniqueIndex" json:"rfidTagId"`
	Type        AssetType `gorm:"size:20;not null" json:"type"`
	RoadNumber  string    `gorm:"size:50" json:"roadNumber"`
	Description string    `gorm:"size:255" json:"description"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	DateAdded   time.Time `gorm:"not null" json:"dateAdded"`

	// Relations
	LocationEvents []AssetLocationEvent `gorm:"foreignKey:AssetID;references:ID" json:"locationEvents,omitempty"`
}

// TableName specifies the table name for TrainAsset model
func (TrainAsset) TableName() string {
	return "train_assets"
}

// AssetLocationEvent is an append-only sighting of an asset by an RFID
// reader. Rows are created and occasionally deleted, never updated.
type AssetLocationEvent struct {
	EventID   uint           `gorm:"primaryKey" json:"eventId"`
	AssetID   uint           `gorm:"not null;index" json:"assetId"`
	RfidTagID string         `gorm:"size:50;not null;index" json:"rfidTagId"`
	Location  string         `gorm:"size:100" json:"location"`
	ReaderID  string         `gorm:"size:50;index" json:"readerId"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	Details   datatypes.JSON `json:"details,omitempty"`

	// Relations
	Asset *TrainAsset `gorm:"foreignKey:AssetID;references:ID" json:"asset,omitempty"`
}

// TableName specifies the table name for AssetLocationEvent model
func (AssetLocationEvent) TableName() string {
	return "asset_location_events"
}
