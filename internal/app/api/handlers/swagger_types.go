package handlers

import (
	"github.com/fatflowers/ispbill/internal/app/service/billing"
	"github.com/fatflowers/ispbill/internal/app/service/billing_log"
	"github.com/fatflowers/ispbill/internal/app/service/statistics"
	"github.com/fatflowers/ispbill/internal/models"
	"github.com/fatflowers/ispbill/pkg/response"
)

// Envelopes for the swagger docs; handlers build them with response.OKT.

type RespHealth struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    HealthStatus             `json:"data"`
}

type RespCommand struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    billing.CommandResult    `json:"data"`
}

type RespPackages struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []models.Package         `json:"data"`
}

type RespSubscribers struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []billing.SubscriberView `json:"data"`
}

type RespSubscriber struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    billing.SubscriberView   `json:"data"`
}

type RespPayments struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []billing.PaymentView    `json:"data"`
}

type RespLedger struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []billing.LedgerView     `json:"data"`
}

type RespFlush struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    FlushResponse            `json:"data"`
}

// RespBillingStatistic wraps BillingStatisticResponse in the standard envelope.
type RespBillingStatistic struct {
	Code    response.APIResponseCode            `json:"code"`
	Message string                              `json:"message"`
	Data    statistics.BillingStatisticResponse `json:"data"`
}

type RespBillingLogs struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    billing_log.ListResponse `json:"data"`
}
