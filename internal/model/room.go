package model

import "time"

// Room represents a laundry room. Counts are the expected machine counts
// reported by the upstream directory, not a tally of tracked machines.
type Room struct {
	RoomID       string    `gorm:"primaryKey;size:64" json:"roomId"`
	Connected    bool      `json:"connected"`
	Description  string    `json:"description"`
	DryerCount   int       `json:"dryerCount"`
	FreePlay     bool      `json:"freePlay"`
	Label        string    `gorm:"size:128;not null" json:"label"`
	LocationID   string    `gorm:"index;size:64" json:"locationId"`
	MachineCount int       `json:"machineCount"`
	WasherCount  int       `json:"washerCount"`
	LastUpdated  time.Time `gorm:"not null" json:"lastUpdated"`
}
