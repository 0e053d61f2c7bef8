package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"laundry-state-backend/internal/model"
)

type putRoomDefaultRequest struct {
	RoomID string `json:"roomId" binding:"required"`
}

// PutRoomDefault handles creation or replacement of an actor's default room.
// Last write wins.
func (h *Handler) PutRoomDefault(c *gin.Context) {
	actorID := c.Param("actor_id")

	var req putRoomDefaultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var room model.Room
	if err := h.store.DB().First(&room, "room_id = ?", req.RoomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	def := model.RoomDefault{ActorID: actorID, RoomID: req.RoomID}
	if err := h.store.DB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "actor_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"room_id"}),
	}).Create(&def).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusCreated)
}

// GetRoomDefault handles retrieval of an actor's default room.
func (h *Handler) GetRoomDefault(c *gin.Context) {
	actorID := c.Param("actor_id")

	var def model.RoomDefault
	if err := h.store.DB().First(&def, "actor_id = ?", actorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no default room for actor"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, def)
}
