package model

import "time"

// Location represents a site grouping one or more laundry rooms.
type Location struct {
	LocationID   string    `gorm:"primaryKey;size:64" json:"locationId"`
	Description  string    `json:"description"`
	DryerCount   int       `json:"dryerCount"`
	Label        string    `gorm:"size:128;not null" json:"label"`
	MachineCount int       `json:"machineCount"`
	WasherCount  int       `json:"washerCount"`
	LastUpdated  time.Time `gorm:"not null" json:"lastUpdated"`

	// Associations
	Rooms []Room `gorm:"foreignKey:LocationID"`
}
