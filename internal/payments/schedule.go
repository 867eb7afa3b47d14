package payments

import (
	"time"

	"github.com/hanapbahay/hanapbahay/internal/shared"
)

// Draft is one month of a coverage schedule awaiting materialization as a
// rent payment record.
type Draft struct {
	Month   string
	DueDate time.Time
}

// GenerateCoverageSchedule returns the next count months to cover, starting
// at start and walking one calendar month at a time with the lease's
// day-of-month anchor. Months already settled (present in paidMonths) are
// skipped without counting. The walk is total: paidMonths is finite, so at
// most len(paidMonths) steps can be skipped before every further step
// produces a draft.
func GenerateCoverageSchedule(start time.Time, anchorDay, count int, paidMonths map[string]bool) []Draft {
	if count <= 0 {
		return nil
	}
	drafts := make([]Draft, 0, count)
	for step := 0; len(drafts) < count; step++ {
		due := shared.AddMonthsAnchored(start, step, anchorDay)
		month := shared.MonthKey(due)
		if paidMonths[month] {
			continue
		}
		drafts = append(drafts, Draft{Month: month, DueDate: due})
	}
	return drafts
}
