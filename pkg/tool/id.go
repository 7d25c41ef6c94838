package tool

import "github.com/google/uuid"

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// PeriodPaymentID derives the payment id of a subscriber for a billing period
// ("YYYY-MM"). The same inputs always give the same id.
func PeriodPaymentID(subscriberID, periodKey string) string {
	return "pay_" + subscriberID + "_" + periodKey
}
