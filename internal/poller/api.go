package poller

import (
	"laundry-state-backend/internal/model"
	"laundry-state-backend/internal/reconcile"
)

// MachinesResponse models the upstream machine-snapshot endpoint's response.
type MachinesResponse struct {
	Code int `json:"code"`
	Data struct {
		Page     int                  `json:"page"`
		PageSize int                  `json:"pageSize"`
		Total    int                  `json:"total"`
		Items    []reconcile.Snapshot `json:"items"`
	} `json:"data"`
}

// DirectoryResponse models the upstream room/location directory endpoint's
// response. The directory is small and unpaged.
type DirectoryResponse struct {
	Code int `json:"code"`
	Data struct {
		Locations []model.Location `json:"locations"`
		Rooms     []model.Room     `json:"rooms"`
	} `json:"data"`
}
