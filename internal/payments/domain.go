package payments

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus enumerates rent payment states.
type PaymentStatus string

const (
	StatusPending  PaymentStatus = "pending"
	StatusPaid     PaymentStatus = "paid"
	StatusOverdue  PaymentStatus = "overdue"
	StatusRejected PaymentStatus = "rejected"
)

// MethodAdvanceDeposit marks a payment covered by advance deposit months.
const MethodAdvanceDeposit = "Advance Deposit"

// AdvanceReceiptPrefix tags receipts of advance-covered payments.
const AdvanceReceiptPrefix = "ADVANCE-"

// AdvanceNote is written on payments covered by an advance month.
const AdvanceNote = "Paid using advance deposit month"

// RentPayment is one calendar month of rent owed or settled on a booking.
type RentPayment struct {
	ID         string
	BookingID  string
	TenantID   string
	OwnerID    string
	PropertyID string

	Amount      float64
	LateFee     float64
	TotalAmount float64

	// PaymentMonth is the YYYY-MM calendar-month key. At most one payment
	// exists per (BookingID, PaymentMonth); the repository enforces it.
	PaymentMonth string
	DueDate      time.Time
	PaidDate     *time.Time

	Status        PaymentStatus
	PaymentMethod string
	ReceiptNumber string
	Notes         string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Unpaid reports whether the payment still needs covering.
func (p *RentPayment) Unpaid() bool {
	switch p.Status {
	case StatusPending, StatusOverdue, StatusRejected:
		return true
	}
	return false
}

// NewReceiptNumber generates a receipt number for a regular payment.
func NewReceiptNumber() string {
	return "RCP-" + strings.ToUpper(uuid.NewString()[:8])
}

// AdvanceReceipt rewrites a receipt number with the advance prefix. Receipts
// already tagged are returned unchanged.
func AdvanceReceipt(receipt string) string {
	if strings.HasPrefix(receipt, AdvanceReceiptPrefix) {
		return receipt
	}
	if receipt == "" {
		receipt = NewReceiptNumber()
	}
	return AdvanceReceiptPrefix + receipt
}
