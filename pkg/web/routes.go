package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// BotInfo describes the logged in bot user
type BotInfo struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar"`
	Guilds        int    `json:"guilds"`
	IsReady       bool   `json:"isReady"`
	Uptime        string `json:"uptime"`
}

// CommandInfo describes one registered command
type CommandInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Kind        string `json:"kind"`
}

// StatusSource supplies the data served by the API
type StatusSource interface {
	// Bot returns false while the gateway session is not ready
	Bot() (BotInfo, bool)
	Database() (status string, online bool)
	Commands() []CommandInfo
}

// Status is the body of /api/status, also used for MQTT status requests
type Status struct {
	Status   string         `json:"status"`
	Database DatabaseStatus `json:"database"`
	Bot      BotStatus      `json:"bot"`
}

// DatabaseStatus is the database part of Status
type DatabaseStatus struct {
	Status   string `json:"status"`
	IsOnline bool   `json:"isOnline"`
}

// BotStatus is the bot part of Status
type BotStatus struct {
	IsOnline bool `json:"isOnline"`
	Guilds   int  `json:"guilds"`
}

// BuildStatus collects the current status from src
func BuildStatus(src StatusSource) Status {
	dbStatus, dbOnline := src.Database()
	bot, ready := src.Bot()

	return Status{
		Status:   "ok",
		Database: DatabaseStatus{Status: dbStatus, IsOnline: dbOnline},
		Bot:      BotStatus{IsOnline: ready, Guilds: bot.Guilds},
	}
}

// SetupAPIRoutes sets up the API routes
func SetupAPIRoutes(s *Server, src StatusSource) {
	api := s.Group("/api")
	{
		api.GET("/health", healthHandler)
		api.GET("/status", statusHandler(src))
		api.GET("/bot", botInfoHandler(src))
		api.GET("/commands", commandsHandler(src))
	}
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "PancyCompanion Go is running",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func statusHandler(src StatusSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, BuildStatus(src))
	}
}

func botInfoHandler(src StatusSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ready := src.Bot()
		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   "Bot Offline",
				"message": "El bot no está disponible en este momento.",
			})
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

func commandsHandler(src StatusSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		commands := src.Commands()
		if kind := c.Query("kind"); kind != "" {
			filtered := commands[:0:0]
			for _, cmd := range commands {
				if cmd.Kind == kind {
					filtered = append(filtered, cmd)
				}
			}
			commands = filtered
		}

		c.JSON(http.StatusOK, gin.H{
			"count":    len(commands),
			"commands": commands,
		})
	}
}
