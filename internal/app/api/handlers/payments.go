package handlers

import (
	"net/http"

	"github.com/fatflowers/ispbill/internal/app/service/billing"
	"github.com/fatflowers/ispbill/pkg/response"

	"github.com/gin-gonic/gin"
)

// @Summary      Payment history
// @Description  Every stored payment of a subscriber, archived ones included. Works for deleted subscribers.
// @Tags         Payments
// @Produce      json
// @Param        id path string true "Subscriber ID"
// @Success      200  {object}  handlers.RespPayments
// @Router       /api/v1/subscribers/{id}/payments [get]
func ApiPaymentHistory(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		payments, err := svc.PaymentHistory(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(payments))
	}
}

// @Summary      Mark payment paid
// @Tags         Payments
// @Accept       json
// @Produce      json
// @Param        id         path string true "Subscriber ID"
// @Param        payment_id path string true "Payment ID"
// @Param        request body billing.MarkPaidRequest false "Paid date and confirmed amount"
// @Success      200  {object}  handlers.RespCommand
// @Router       /api/v1/subscribers/{id}/payments/{payment_id}/mark_paid [post]
func ApiMarkPaid(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req billing.MarkPaidRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err.Error())
				return
			}
		}
		req.SubscriberID = c.Param("id")
		req.PaymentID = c.Param("payment_id")
		res, err := svc.MarkPaid(c.Request.Context(), &req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Mark payment unpaid
// @Tags         Payments
// @Produce      json
// @Param        id         path string true "Subscriber ID"
// @Param        payment_id path string true "Payment ID"
// @Success      200  {object}  handlers.RespCommand
// @Router       /api/v1/subscribers/{id}/payments/{payment_id}/mark_unpaid [post]
func ApiMarkUnpaid(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.MarkUnpaid(c.Request.Context(), c.Param("id"), c.Param("payment_id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Delete payment
// @Description  Removes a payment; reconciliation will not recreate it while the deletion is retained.
// @Tags         Payments
// @Produce      json
// @Param        id         path string true "Subscriber ID"
// @Param        payment_id path string true "Payment ID"
// @Success      200  {object}  handlers.RespCommand
// @Router       /api/v1/subscribers/{id}/payments/{payment_id} [delete]
func ApiDeletePayment(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.DeletePayment(c.Request.Context(), c.Param("id"), c.Param("payment_id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterPaymentRoutes(r gin.IRouter, svc *billing.Service) {
	r.GET("", ApiPaymentHistory(svc))
	r.POST("/:payment_id/mark_paid", ApiMarkPaid(svc))
	r.POST("/:payment_id/mark_unpaid", ApiMarkUnpaid(svc))
	r.DELETE("/:payment_id", ApiDeletePayment(svc))
}
