package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"laundry-state-backend/internal/model"
)

// RoomResponse represents the API response for a single room. Expected
// counts come from the directory; tracked counts are tallied from the
// machine records actually seen, so clients can spot mismatches.
type RoomResponse struct {
	model.Room
	TrackedWashers int64 `json:"trackedWashers"`
	TrackedDryers  int64 `json:"trackedDryers"`
}

// LocationResponse represents the API response for a single location.
type LocationResponse struct {
	model.Location
	TrackedMachines int64 `json:"trackedMachines"`
}

type machineTally struct {
	Key   string
	Type  string
	Count int64
}

// GetRooms handles the GET /api/rooms request.
func GetRooms(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rooms []model.Room
		if err := db.Find(&rooms).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rooms"})
			return
		}

		var tallies []machineTally
		if err := db.
			Model(&model.Machine{}).
			Select("room_id as key, type, COUNT(*) as count").
			Group("room_id").Group("type").
			Scan(&tallies).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate machines"})
			return
		}

		washers := make(map[string]int64)
		dryers := make(map[string]int64)
		for _, tl := range tallies {
			if tl.Type == "dryer" {
				dryers[tl.Key] = tl.Count
			} else {
				washers[tl.Key] = tl.Count
			}
		}

		responses := make([]RoomResponse, 0, len(rooms))
		for _, r := range rooms {
			responses = append(responses, RoomResponse{
				Room:           r,
				TrackedWashers: washers[r.RoomID],
				TrackedDryers:  dryers[r.RoomID],
			})
		}
		c.JSON(http.StatusOK, responses)
	}
}

// GetLocations handles the GET /api/locations request.
func GetLocations(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var locations []model.Location
		if err := db.Find(&locations).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve locations"})
			return
		}

		var tallies []machineTally
		if err := db.
			Model(&model.Machine{}).
			Select("location_id as key, COUNT(*) as count").
			Group("location_id").
			Scan(&tallies).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate machines"})
			return
		}

		tracked := make(map[string]int64, len(tallies))
		for _, tl := range tallies {
			tracked[tl.Key] = tl.Count
		}

		responses := make([]LocationResponse, 0, len(locations))
		for _, l := range locations {
			responses = append(responses, LocationResponse{
				Location:        l,
				TrackedMachines: tracked[l.LocationID],
			})
		}
		c.JSON(http.StatusOK, responses)
	}
}
