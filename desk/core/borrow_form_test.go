package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/circulation-desk/desk/core"
)

func Test_BorrowForm_TotalDays(t *testing.T) {
	form := core.BorrowForm{
		BorrowDate: core.MustParseCalendarDate("2024-01-01"),
		DueDate:    core.MustParseCalendarDate("2024-01-15"),
	}

	days, ok := form.TotalDays()

	assert.True(t, ok)
	assert.Equal(t, 14, days)
}

func Test_BorrowForm_TotalDays_VeryLongLoan(t *testing.T) {
	form := core.BorrowForm{
		BorrowDate: core.MustParseCalendarDate("2024-01-01"),
		DueDate:    core.MustParseCalendarDate("2400-01-01"),
	}

	days, ok := form.TotalDays()

	assert.True(t, ok)
	assert.Equal(t, 137331, days)
}

func Test_BorrowForm_TotalDays_NotShownForIncompleteOrInvalidForm(t *testing.T) {
	today := core.MustParseCalendarDate("2024-01-01")

	_, ok := core.NewBorrowForm(today).TotalDays()
	assert.False(t, ok)

	_, ok = core.BorrowForm{BorrowDate: today, DueDate: today}.TotalDays()
	assert.False(t, ok)
}

func Test_DecideBorrowSubmit_ProceedsForValidPeriod(t *testing.T) {
	form := core.BorrowForm{
		BorrowDate: core.MustParseCalendarDate("2024-01-01"),
		DueDate:    core.MustParseCalendarDate("2024-01-02"),
	}

	decision := core.DecideBorrowSubmit(form)

	assert.True(t, decision.ShouldProceed())
	assert.NoError(t, decision.HasError())
	assert.Empty(t, decision.Notices)
}

func Test_DecideBorrowSubmit_BlocksInvalidForms(t *testing.T) {
	day := core.MustParseCalendarDate("2024-01-10")

	testCases := []struct {
		name       string
		form       core.BorrowForm
		wantErr    error
		wantFields []string
	}{
		{
			name:       "both dates missing",
			form:       core.BorrowForm{},
			wantErr:    core.ErrBorrowDateRequired,
			wantFields: []string{core.FieldBorrowDate, core.FieldDueDate},
		},
		{
			name:       "due date missing",
			form:       core.NewBorrowForm(day),
			wantErr:    core.ErrDueDateRequired,
			wantFields: []string{core.FieldDueDate},
		},
		{
			name:       "due date equals borrow date",
			form:       core.BorrowForm{BorrowDate: day, DueDate: day},
			wantErr:    core.ErrDueDateNotAfterBorrowDate,
			wantFields: []string{core.FieldDueDate},
		},
		{
			name:       "due date before borrow date",
			form:       core.BorrowForm{BorrowDate: day, DueDate: day.AddDays(-1)},
			wantErr:    core.ErrDueDateNotAfterBorrowDate,
			wantFields: []string{core.FieldDueDate},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			decision := core.DecideBorrowSubmit(tc.form)

			assert.False(t, decision.ShouldProceed())
			assert.ErrorIs(t, decision.HasError(), tc.wantErr)

			fields := make([]string, 0, len(decision.Notices))
			for _, notice := range decision.Notices {
				assert.Equal(t, core.NoticeField, notice.Kind)
				fields = append(fields, notice.Field)
			}
			assert.Equal(t, tc.wantFields, fields)
		})
	}
}
