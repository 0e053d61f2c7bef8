package reconcile

import (
	"errors"
	"fmt"

	"laundry-state-backend/internal/model"
)

// ErrInvalidTimeRemaining marks a snapshot that reports a physically
// impossible remaining time. Such snapshots are dropped by the caller and
// never reach the engine or the store.
var ErrInvalidTimeRemaining = errors.New("invalid timeRemaining")

// Snapshot is a single upstream report of one machine's current attributes.
// It arrives as a complete replacement of all mutable fields, not a patch.
// LastUser carries the upstream's own attribution, which the engine may
// override (see Reconcile).
type Snapshot struct {
	OpaqueID                    string `json:"opaqueId"`
	Available                   bool   `json:"available"`
	CapabilityAddTime           bool   `json:"capabilityAddTime"`
	CapabilityShowAddTimeNotice bool   `json:"capabilityShowAddTimeNotice"`
	CapabilityShowSettings      bool   `json:"capabilityShowSettings"`
	ControllerType              string `json:"controllerType"`
	Display                     string `json:"display"`
	DoorClosed                  bool   `json:"doorClosed"`
	FreePlay                    bool   `json:"freePlay"`
	GroupID                     string `json:"groupId"`
	InService                   bool   `json:"inService"`
	LicensePlate                string `json:"licensePlate"`
	LocationID                  string `json:"locationId"`
	Mode                        string `json:"mode"`
	NFCID                       string `json:"nfcId"`
	NotAvailableReason          string `json:"notAvailableReason"`
	QRCodeID                    string `json:"qrCodeId"`
	RoomID                      string `json:"roomId"`
	SettingsCycle               string `json:"settingsCycle"`
	SettingsDryerTemp           string `json:"settingsDryerTemp"`
	SettingsSoil                string `json:"settingsSoil"`
	SettingsWasherTemp          string `json:"settingsWasherTemp"`
	StackItems                  string `json:"stackItems"`
	StickerNumber               int    `json:"stickerNumber"`
	TimeRemaining               int    `json:"timeRemaining"`
	Type                        string `json:"type"`
	LastUser                    string `json:"lastUser"`
}

// Validate rejects physically impossible snapshots. Only the remaining time
// is checked; all other attributes are opaque pass-through values.
func (s *Snapshot) Validate() error {
	if s.TimeRemaining < 0 {
		return fmt.Errorf("machine %s: %w: %d", s.OpaqueID, ErrInvalidTimeRemaining, s.TimeRemaining)
	}
	return nil
}

// record builds a machine record carrying the snapshot's values verbatim.
// LastUpdated is left zero; the engine sets it on accepted transitions.
func (s *Snapshot) record() model.Machine {
	return model.Machine{
		OpaqueID:                    s.OpaqueID,
		Available:                   s.Available,
		CapabilityAddTime:           s.CapabilityAddTime,
		CapabilityShowAddTimeNotice: s.CapabilityShowAddTimeNotice,
		CapabilityShowSettings:      s.CapabilityShowSettings,
		ControllerType:              s.ControllerType,
		Display:                     s.Display,
		DoorClosed:                  s.DoorClosed,
		FreePlay:                    s.FreePlay,
		GroupID:                     s.GroupID,
		InService:                   s.InService,
		LicensePlate:                s.LicensePlate,
		LocationID:                  s.LocationID,
		Mode:                        s.Mode,
		NFCID:                       s.NFCID,
		NotAvailableReason:          s.NotAvailableReason,
		QRCodeID:                    s.QRCodeID,
		RoomID:                      s.RoomID,
		SettingsCycle:               s.SettingsCycle,
		SettingsDryerTemp:           s.SettingsDryerTemp,
		SettingsSoil:                s.SettingsSoil,
		SettingsWasherTemp:          s.SettingsWasherTemp,
		StackItems:                  s.StackItems,
		StickerNumber:               s.StickerNumber,
		TimeRemaining:               s.TimeRemaining,
		Type:                        s.Type,
		LastUser:                    s.LastUser,
	}
}
