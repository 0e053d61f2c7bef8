package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"laundry-state-backend/config"
	"laundry-state-backend/internal/mw"
	"laundry-state-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	db := s.DB()
	handler := NewHandler(s)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Directory and machine status reads are cached; the poll interval
		// bounds their staleness anyway.
		api.GET("/locations", caching, GetLocations(db))
		api.GET("/rooms", caching, GetRooms(db))
		api.GET("/rooms/:room_id/machines", caching, GetRoomMachines(db))

		// Room defaults are never cached: a PUT must be visible on the next GET.
		api.GET("/defaults/:actor_id", handler.GetRoomDefault)
		api.PUT("/defaults/:actor_id", handler.PutRoomDefault)
	}

	return r
}
