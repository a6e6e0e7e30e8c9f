package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func timePtr(t time.Time) *time.Time { return &t }
func intPtr(n int) *int              { return &n }

func TestVoucherDerivedStatus(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 1, 0)

	cases := []struct {
		name     string
		voucher  Voucher
		expected VoucherStatus
	}{
		{
			name:     "active with no window or limit",
			voucher:  Voucher{IsActive: true},
			expected: VoucherStatusActive,
		},
		{
			name:     "disabled wins over everything",
			voucher:  Voucher{IsActive: false, EndDate: timePtr(past), UsageLimit: intPtr(1), UsedCount: 5},
			expected: VoucherStatusDisabled,
		},
		{
			name:     "scheduled before start date",
			voucher:  Voucher{IsActive: true, StartDate: timePtr(future)},
			expected: VoucherStatusScheduled,
		},
		{
			name:     "scheduled wins over expired end date",
			voucher:  Voucher{IsActive: true, StartDate: timePtr(future), EndDate: timePtr(past)},
			expected: VoucherStatusScheduled,
		},
		{
			name:     "expired after end date",
			voucher:  Voucher{IsActive: true, EndDate: timePtr(past)},
			expected: VoucherStatusExpired,
		},
		{
			name:     "expired wins over fully redeemed",
			voucher:  Voucher{IsActive: true, EndDate: timePtr(past), UsageLimit: intPtr(1), UsedCount: 1},
			expected: VoucherStatusExpired,
		},
		{
			name:     "fully redeemed at limit",
			voucher:  Voucher{IsActive: true, UsageLimit: intPtr(10), UsedCount: 10},
			expected: VoucherStatusFullyRedeemed,
		},
		{
			name:     "active inside window under limit",
			voucher:  Voucher{IsActive: true, StartDate: timePtr(past), EndDate: timePtr(future), UsageLimit: intPtr(10), UsedCount: 9},
			expected: VoucherStatusActive,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.voucher.DerivedStatus(now))
		})
	}
}
