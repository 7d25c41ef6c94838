package handlers

import (
	"net/http"

	"github.com/fatflowers/ispbill/internal/app/service/billing"
	"github.com/fatflowers/ispbill/pkg/response"
	"github.com/fatflowers/ispbill/pkg/types"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

var listStatuses = []types.PaymentStatus{types.PaymentStatusPending, types.PaymentStatusOverdue, types.PaymentStatusPaid}

// @Summary      List subscribers
// @Description  Lists subscribers with their payments and effective statuses.
// @Tags         Subscribers
// @Produce      json
// @Param        package_id query string false "Package ID"
// @Param        active     query bool   false "Active flag"
// @Param        q          query string false "Name, phone or email contains"
// @Param        status     query string false "Has a payment in this effective status" Enums(pending, overdue, paid)
// @Success      200  {object}  handlers.RespSubscribers
// @Router       /api/v1/subscribers [get]
func ApiListSubscribers(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req billing.ListSubscribersRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		if req.Status != "" && !lo.Contains(listStatuses, req.Status) {
			badRequest(c, "invalid status")
			return
		}
		subs, err := svc.ListSubscribers(c.Request.Context(), &req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(subs))
	}
}

// @Summary      Get subscriber
// @Tags         Subscribers
// @Produce      json
// @Param        id path string true "Subscriber ID"
// @Success      200  {object}  handlers.RespSubscriber
// @Router       /api/v1/subscribers/{id} [get]
func ApiGetSubscriber(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, err := svc.GetSubscriber(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

// @Summary      Add subscriber
// @Description  Creates a subscriber, issues its credential and bills the current period.
// @Tags         Subscribers
// @Accept       json
// @Produce      json
// @Param        request body billing.SubscriberInput true "Subscriber"
// @Success      200  {object}  handlers.RespCommand
// @Router       /api/v1/subscribers [post]
func ApiAddSubscriber(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req billing.SubscriberInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := svc.AddSubscriber(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Edit subscriber
// @Tags         Subscribers
// @Accept       json
// @Produce      json
// @Param        id path string true "Subscriber ID"
// @Param        request body billing.SubscriberInput true "Subscriber"
// @Success      200  {object}  handlers.RespCommand
// @Router       /api/v1/subscribers/{id} [put]
func ApiEditSubscriber(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req billing.SubscriberInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := svc.EditSubscriber(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Delete subscriber
// @Description  Archives the subscriber's payments and removes the subscriber.
// @Tags         Subscribers
// @Produce      json
// @Param        id path string true "Subscriber ID"
// @Success      200  {object}  handlers.RespCommand
// @Router       /api/v1/subscribers/{id} [delete]
func ApiDeleteSubscriber(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.DeleteSubscriber(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterSubscriberRoutes(r gin.IRouter, svc *billing.Service) {
	r.GET("", ApiListSubscribers(svc))
	r.POST("", ApiAddSubscriber(svc))
	r.GET("/:id", ApiGetSubscriber(svc))
	r.PUT("/:id", ApiEditSubscriber(svc))
	r.DELETE("/:id", ApiDeleteSubscriber(svc))
	RegisterPaymentRoutes(r.Group("/:id/payments"), svc)
}
