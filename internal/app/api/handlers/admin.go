package handlers

import (
	"net/http"

	"github.com/fatflowers/ispbill/internal/app/service/billing"
	"github.com/fatflowers/ispbill/internal/app/service/billing_log"
	"github.com/fatflowers/ispbill/internal/app/service/statistics"
	"github.com/fatflowers/ispbill/pkg/response"

	"github.com/gin-gonic/gin"
)

// @Summary      Reconcile (Admin)
// @Description  Runs a reconciliation cycle without a mutation: ledger pruning, count sync, archival, repricing and period generation.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  handlers.RespCommand
// @Router       /api/v1/admin/reconcile [post]
func ApiReconcile(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.Reconcile(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

type FlushResponse struct {
	Dirty bool `json:"dirty"`
}

// @Summary      Flush (Admin)
// @Description  Retries persisting changes that a failed write left in memory.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  handlers.RespFlush
// @Router       /api/v1/admin/flush [post]
func ApiFlush(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Flush(c.Request.Context()); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&FlushResponse{Dirty: svc.Dirty()}))
	}
}

// @Summary      Deletion ledger (Admin)
// @Description  Lists deleted payments that reconciliation will not regenerate, with their expiry.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  handlers.RespLedger
// @Router       /api/v1/admin/ledger [get]
func ApiLedger(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := svc.LedgerEntries(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(entries))
	}
}

// @Summary      Get Billing Statistics (Admin)
// @Description  Revenue, outstanding amounts and status counts per billing period, plus current subscriber counts.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body statistics.BillingStatisticRequest true "Statistic request parameters"
// @Success      200  {object}  handlers.RespBillingStatistic
// @Router       /api/v1/admin/get_billing_statistic [post]
func ApiGetBillingStatistic(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.BillingStatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := svc.GetBillingStatistic(c.Request.Context(), &req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      List Billing Logs (Admin)
// @Description  Audit trail of applied commands, newest first.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body billing_log.ListRequest true "Filters and pagination"
// @Success      200  {object}  handlers.RespBillingLogs
// @Router       /api/v1/admin/list_billing_logs [post]
func ApiListBillingLogs(svc *billing_log.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req billing_log.ListRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := svc.List(c.Request.Context(), &req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminRoutes(r gin.IRouter, svc *billing.Service, stats *statistics.Service, logs *billing_log.Service) {
	r.POST("/reconcile", ApiReconcile(svc))
	r.POST("/flush", ApiFlush(svc))
	r.GET("/ledger", ApiLedger(svc))
	r.POST("/get_billing_statistic", ApiGetBillingStatistic(stats))
	r.POST("/list_billing_logs", ApiListBillingLogs(logs))
}
