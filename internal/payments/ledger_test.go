package payments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNextDueDatePreservesLeaseAnchor(t *testing.T) {
	leaseStart := date(2024, time.January, 31)

	// First obligation: one month after lease start, clamped to leap February.
	require.Equal(t, date(2024, time.February, 29), NextDueDate(leaseStart, nil))

	// The anchor comes from the lease start, not the clamped last payment.
	lastPaid := date(2024, time.February, 29)
	require.Equal(t, date(2024, time.March, 31), NextDueDate(leaseStart, &lastPaid))
}

func TestNextDueDateMidMonthAnchor(t *testing.T) {
	leaseStart := date(2024, time.January, 15)
	require.Equal(t, date(2024, time.February, 15), NextDueDate(leaseStart, nil))

	lastPaid := date(2024, time.April, 15)
	require.Equal(t, date(2024, time.May, 15), NextDueDate(leaseStart, &lastPaid))
}

func TestUnpaidSortsOldestFirst(t *testing.T) {
	ps := []RentPayment{
		{PaymentMonth: "2024-01", DueDate: date(2024, time.January, 15), Status: StatusOverdue},
		{PaymentMonth: "2024-03", DueDate: date(2024, time.March, 15), Status: StatusPending},
		{PaymentMonth: "2024-02", DueDate: date(2024, time.February, 15), Status: StatusRejected},
		{PaymentMonth: "2023-12", DueDate: date(2023, time.December, 15), Status: StatusPaid},
	}

	unpaid := Unpaid(ps)
	require.Len(t, unpaid, 3)
	require.Equal(t, "2024-01", unpaid[0].PaymentMonth)
	require.Equal(t, "2024-02", unpaid[1].PaymentMonth)
	require.Equal(t, "2024-03", unpaid[2].PaymentMonth)
}

func TestLatestPaid(t *testing.T) {
	require.Nil(t, LatestPaid(nil))

	ps := []RentPayment{
		{PaymentMonth: "2024-01", DueDate: date(2024, time.January, 15), Status: StatusPaid},
		{PaymentMonth: "2024-02", DueDate: date(2024, time.February, 15), Status: StatusPaid},
		{PaymentMonth: "2024-03", DueDate: date(2024, time.March, 15), Status: StatusPending},
	}
	latest := LatestPaid(ps)
	require.NotNil(t, latest)
	require.Equal(t, "2024-02", latest.PaymentMonth)
}

func TestAdvanceReceipt(t *testing.T) {
	require.Equal(t, "ADVANCE-RCP-123", AdvanceReceipt("RCP-123"))
	// Already tagged receipts are left alone.
	require.Equal(t, "ADVANCE-RCP-123", AdvanceReceipt("ADVANCE-RCP-123"))
	// Empty receipts get a fresh number behind the prefix.
	require.Contains(t, AdvanceReceipt(""), AdvanceReceiptPrefix+"RCP-")
}
