package utils

import "time"

// AddBillingPeriod advances from by one billing period ("month" or "year").
// Unknown periods are treated as monthly.
func AddBillingPeriod(from time.Time, period string) time.Time {
	switch period {
	case "year":
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}
