package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"laundry-state-backend/internal/model"
)

// machineStatusResponse is the flattened structure for the API response.
// A machine with zero remaining time is available; any positive value means
// it is in use.
type machineStatusResponse struct {
	OpaqueID      string    `json:"opaqueId"`
	Type          string    `json:"type"`
	StickerNumber int       `json:"stickerNumber"`
	Available     bool      `json:"available"`
	TimeRemaining int       `json:"timeRemaining"`
	Mode          string    `json:"mode"`
	DoorClosed    bool      `json:"doorClosed"`
	LastUpdated   time.Time `json:"lastUpdated"`
	LastUser      string    `json:"lastUser"`
}

// GetRoomMachines handles the GET /api/rooms/{room_id}/machines request.
func GetRoomMachines(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := c.Param("room_id")
		if roomID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
			return
		}

		var machines []model.Machine
		if err := db.Where("room_id = ?", roomID).
			Order("sticker_number").
			Find(&machines).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve machines"})
			return
		}

		response := make([]machineStatusResponse, 0, len(machines))
		for _, m := range machines {
			response = append(response, machineStatusResponse{
				OpaqueID:      m.OpaqueID,
				Type:          m.Type,
				StickerNumber: m.StickerNumber,
				Available:     m.TimeRemaining == 0,
				TimeRemaining: m.TimeRemaining,
				Mode:          m.Mode,
				DoorClosed:    m.DoorClosed,
				LastUpdated:   m.LastUpdated,
				LastUser:      m.LastUser,
			})
		}
		c.JSON(http.StatusOK, response)
	}
}
