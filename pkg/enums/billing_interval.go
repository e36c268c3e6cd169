package enums

import (
	"fmt"
	"strings"
)

// BillingInterval is the cadence unit configured on a subscription plan.
type BillingInterval string

const (
	BillingIntervalDay   BillingInterval = "DAY"
	BillingIntervalWeek  BillingInterval = "WEEK"
	BillingIntervalMonth BillingInterval = "MONTH"
	BillingIntervalYear  BillingInterval = "YEAR"
)

var validBillingIntervals = []BillingInterval{
	BillingIntervalDay,
	BillingIntervalWeek,
	BillingIntervalMonth,
	BillingIntervalYear,
}

var gatewayPeriods = map[BillingInterval]string{
	BillingIntervalDay:   "daily",
	BillingIntervalWeek:  "weekly",
	BillingIntervalMonth: "monthly",
	BillingIntervalYear:  "yearly",
}

// String implements fmt.Stringer.
func (b BillingInterval) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BillingInterval.
func (b BillingInterval) IsValid() bool {
	for _, candidate := range validBillingIntervals {
		if candidate == b {
			return true
		}
	}
	return false
}

// GatewayPeriod maps the interval to the payment gateway's plan period.
// Unknown intervals bill monthly.
func (b BillingInterval) GatewayPeriod() string {
	if period, ok := gatewayPeriods[b]; ok {
		return period
	}
	return gatewayPeriods[BillingIntervalMonth]
}

// ParseBillingInterval converts raw input into a BillingInterval.
func ParseBillingInterval(value string) (BillingInterval, error) {
	normalized := BillingInterval(strings.ToUpper(strings.TrimSpace(value)))
	for _, candidate := range validBillingIntervals {
		if candidate == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid billing interval %q", value)
}
