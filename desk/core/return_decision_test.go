package core_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/circulation-desk/desk/core"
)

func buildRecord(dueDate string) core.BorrowRecord {
	return core.BorrowRecord{
		ID:         "77",
		UserID:     "5",
		BookID:     "42",
		BorrowDate: core.MustParseCalendarDate("2024-01-01"),
		DueDate:    core.MustParseCalendarDate(dueDate),
		Status:     core.BorrowStatusBorrowed,
	}
}

func Test_AssessFine(t *testing.T) {
	due := core.MustParseCalendarDate("2024-01-15")

	onDueDate := core.AssessFine(due, due, decimal.NewFromInt(10))
	assert.False(t, onDueDate.IsOverdue)
	assert.True(t, onDueDate.EstimatedFine.IsZero())

	late := core.AssessFine(due, core.MustParseCalendarDate("2024-01-20"), decimal.RequireFromString("12.50"))
	assert.True(t, late.IsOverdue)
	assert.Equal(t, 5, late.DaysOverdue)
	assert.Equal(t, core.FinePercent, late.FinePercent)
	assert.True(t, decimal.RequireFromString("3.75").Equal(late.EstimatedFine), late.EstimatedFine.String())
}

func Test_EnterReturnPrompt(t *testing.T) {
	blocked := core.EnterReturnPrompt(core.BorrowRelation{Status: core.BorrowStatusBorrowed})

	assert.False(t, blocked.ShouldProceed())
	assert.ErrorIs(t, blocked.HasError(), core.ErrMissingRecordID)
	assert.Equal(t, []core.Notice{core.ErrorNotice(core.MsgMissingRecordID)}, blocked.Notices)

	ok := core.EnterReturnPrompt(core.BorrowRelation{Status: core.BorrowStatusBorrowed, RecordID: "77"})
	assert.True(t, ok.ShouldProceed())
}

func Test_DecideReturnSubmit_OverdueRequiresAcknowledgment(t *testing.T) {
	// arrange
	prompt := core.NewReturnPrompt(buildRecord("2024-01-15"), core.MustParseCalendarDate("2024-01-20"), decimal.NewFromInt(10))

	// act
	unacknowledged := core.DecideReturnSubmit(prompt)
	prompt.Acknowledged = true
	acknowledged := core.DecideReturnSubmit(prompt)

	// assert
	assert.True(t, prompt.RequiresAcknowledgment())
	assert.False(t, unacknowledged.ShouldProceed())
	assert.ErrorIs(t, unacknowledged.HasError(), core.ErrFineNotAcknowledged)
	assert.Len(t, unacknowledged.Notices, 1)
	assert.Equal(t, core.NoticeWarning, unacknowledged.Notices[0].Kind)

	assert.True(t, acknowledged.ShouldProceed())
}

func Test_DecideReturnSubmit_OnTimeReturnProceedsWithoutAcknowledgment(t *testing.T) {
	prompt := core.NewReturnPrompt(buildRecord("2024-01-15"), core.MustParseCalendarDate("2024-01-15"), decimal.Zero)

	decision := core.DecideReturnSubmit(prompt)

	assert.False(t, prompt.RequiresAcknowledgment())
	assert.True(t, decision.ShouldProceed())
}

func Test_DecideReturnSubmit_BlocksWithoutRecordID(t *testing.T) {
	record := buildRecord("2024-01-15")
	record.ID = ""

	decision := core.DecideReturnSubmit(core.NewReturnPrompt(record, core.MustParseCalendarDate("2024-01-10"), decimal.Zero))

	assert.ErrorIs(t, decision.HasError(), core.ErrMissingRecordID)
}

func Test_ReturnPrompt_AsOf(t *testing.T) {
	record := buildRecord("2024-01-15")
	pointValue := decimal.NewFromInt(10)

	onTime := core.NewReturnPrompt(record, core.MustParseCalendarDate("2024-01-15"), pointValue)
	onTime.Acknowledged = true
	overdue := core.NewReturnPrompt(record, core.MustParseCalendarDate("2024-01-16"), pointValue)
	overdue.Acknowledged = true

	becameOverdue := onTime.AsOf(core.MustParseCalendarDate("2024-01-16"), pointValue)
	stillOverdue := overdue.AsOf(core.MustParseCalendarDate("2024-01-17"), pointValue)

	assert.Equal(t, core.MustParseCalendarDate("2024-01-16"), becameOverdue.Today)
	assert.True(t, becameOverdue.Fine.IsOverdue)
	assert.False(t, becameOverdue.Acknowledged)
	assert.False(t, core.DecideReturnSubmit(becameOverdue).ShouldProceed())

	assert.Equal(t, 2, stillOverdue.Fine.DaysOverdue)
	assert.True(t, stillOverdue.Acknowledged)
	assert.True(t, core.DecideReturnSubmit(stillOverdue).ShouldProceed())
}
