package core

import (
	"github.com/shopspring/decimal"
)

const (
	// FinePercent is the share of a book's point value charged for an overdue return.
	FinePercent = 30

	// FineNoticeText is shown next to the acknowledgment control of an overdue return.
	FineNoticeText = "30% of book's point value will be fined"
)

var finePercentFactor = decimal.New(FinePercent, -2)

// FineAssessment describes the overdue situation of a loan on a given day.
// EstimatedFine is informational only; the backend computes the real charge.
type FineAssessment struct {
	IsOverdue     bool
	DaysOverdue   int
	FinePercent   int
	EstimatedFine decimal.Decimal
}

// IsOverdue reports whether today is strictly after the due date.
func IsOverdue(dueDate, today CalendarDate) bool {
	return !dueDate.IsZero() && today.After(dueDate)
}

// AssessFine derives the fine situation for a loan due on dueDate when returned today.
// A zero pointValue yields a zero estimate.
func AssessFine(dueDate, today CalendarDate, pointValue decimal.Decimal) FineAssessment {
	if !IsOverdue(dueDate, today) {
		return FineAssessment{FinePercent: FinePercent, EstimatedFine: decimal.Zero}
	}

	return FineAssessment{
		IsOverdue:     true,
		DaysOverdue:   dueDate.DaysUntil(today),
		FinePercent:   FinePercent,
		EstimatedFine: pointValue.Mul(finePercentFactor).Round(2),
	}
}
