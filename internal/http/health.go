package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nawfay/bookclub/internal/database"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	db      *database.Database
	version string
}

func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{db: db, version: version}
}

// databaseCheck pings the underlying connection. A missing database is
// reported but does not mark the service unhealthy.
func (h *HealthController) databaseCheck() (result string, healthy bool) {
	if h.db == nil {
		return "not configured", true
	}
	sqlDB, err := h.db.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		return "error: " + err.Error(), false
	}
	return "ok", true
}

func (h *HealthController) Status(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK

	dbResult, dbHealthy := h.databaseCheck()
	if !dbHealthy {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	c.IndentedJSON(code, HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  map[string]string{"database": dbResult},
	})
}
