package listings

import "time"

// Property is a rentable listing.
type Property struct {
	ID          string
	OwnerID     string
	Title       string
	Barangay    string
	City        string
	MonthlyRent float64
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
