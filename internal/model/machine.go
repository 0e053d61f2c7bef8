package model

import "time"

// UnknownUser is the attribution sentinel stored when the actor behind a
// state transition cannot be determined.
const UnknownUser = "Unknown"

// Machine holds the latest known state of one physical machine. The record
// is keyed by the upstream-assigned opaque identifier and is overwritten in
// place on every accepted state transition; there is one row per machine.
type Machine struct {
	OpaqueID string `gorm:"primaryKey;size:64" json:"opaqueId"`

	Available                   bool   `json:"available"`
	CapabilityAddTime           bool   `json:"capabilityAddTime"`
	CapabilityShowAddTimeNotice bool   `json:"capabilityShowAddTimeNotice"`
	CapabilityShowSettings      bool   `json:"capabilityShowSettings"`
	ControllerType              string `gorm:"size:64" json:"controllerType"`
	Display                     string `json:"display"`
	DoorClosed                  bool   `json:"doorClosed"`
	FreePlay                    bool   `json:"freePlay"`
	GroupID                     string `gorm:"size:64" json:"groupId"`
	InService                   bool   `json:"inService"`
	LicensePlate                string `gorm:"size:64" json:"licensePlate"`
	LocationID                  string `gorm:"index;size:64" json:"locationId"`
	Mode                        string `gorm:"size:64" json:"mode"`
	NFCID                       string `gorm:"column:nfc_id;size:64" json:"nfcId"`
	NotAvailableReason          string `json:"notAvailableReason"`
	QRCodeID                    string `gorm:"column:qr_code_id;size:64" json:"qrCodeId"`
	RoomID                      string `gorm:"index;size:64" json:"roomId"`
	SettingsCycle               string `gorm:"size:64" json:"settingsCycle"`
	SettingsDryerTemp           string `gorm:"size:64" json:"settingsDryerTemp"`
	SettingsSoil                string `gorm:"size:64" json:"settingsSoil"`
	SettingsWasherTemp          string `gorm:"size:64" json:"settingsWasherTemp"`
	StackItems                  string `json:"stackItems"`
	StickerNumber               int    `json:"stickerNumber"`
	TimeRemaining               int    `gorm:"not null" json:"timeRemaining"` // minutes, never negative
	Type                        string `gorm:"size:16;not null" json:"type"`  // "washer" or "dryer"

	LastUpdated time.Time `gorm:"not null" json:"lastUpdated"`
	LastUser    string    `gorm:"size:128" json:"lastUser"`
}
