package deposit

// UseAdvanceMonthsRequest asks to spend advance months on a booking.
type UseAdvanceMonthsRequest struct {
	Months int `json:"months" validate:"omitempty,gte=1,lte=24"`
}

// CoverMonthRequest asks to settle one due month with an advance month.
type CoverMonthRequest struct {
	PaymentMonth string `json:"payment_month" validate:"required,len=7"`
}
