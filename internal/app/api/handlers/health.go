package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fatflowers/ispbill/internal/app/service/billing"
	"github.com/fatflowers/ispbill/internal/platform/db"
	"github.com/fatflowers/ispbill/pkg/response"
)

const (
	healthOK       = "ok"
	healthDegraded = "degraded"
)

type HealthStatus struct {
	Status        string `json:"status"`
	SchemaVersion int    `json:"schema_version"`
	// Dirty is set while billing changes wait for a successful flush.
	Dirty bool `json:"dirty"`
}

// @Summary      Health check
// @Description  Reports the schema version and whether billing changes are waiting to be persisted. Status is degraded when the database cannot be read or changes are unflushed.
// @Tags         System
// @Produce      json
// @Success      200  {object}  RespHealth
// @Router       /healthz [get]
func ApiHealthz(gdb *gorm.DB, svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := HealthStatus{Status: healthOK, Dirty: svc.Dirty()}
		version, err := db.SchemaVersion(c.Request.Context(), gdb)
		if err != nil {
			_ = c.Error(err)
			st.Status = healthDegraded
		}
		st.SchemaVersion = version
		if st.Dirty {
			st.Status = healthDegraded
		}
		c.JSON(http.StatusOK, response.OKT(st))
	}
}

func RegisterHealthRoutes(r gin.IRouter, gdb *gorm.DB, svc *billing.Service) {
	r.GET("/healthz", ApiHealthz(gdb, svc))
}
