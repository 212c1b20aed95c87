package core

import (
	"github.com/shopspring/decimal"
)

// EnterReturnPrompt checks that a return can be prepared for the relation.
//
//	GIVEN: the user clicked Return
//	THEN: the record can be loaded if the relation carries its id
//	BLOCKED: an error notice if the record id is missing
func EnterReturnPrompt(relation BorrowRelation) DecisionResult {
	if !relation.HasRecord() {
		return BlockedDecision(ErrMissingRecordID, ErrorNotice(MsgMissingRecordID))
	}

	return ProceedDecision()
}

// NewReturnPrompt builds the return prompt for a loaded record as of today.
func NewReturnPrompt(record BorrowRecord, today CalendarDate, pointValue decimal.Decimal) ReturnPrompt {
	return ReturnPrompt{
		Record: record,
		Today:  today,
		Fine:   AssessFine(record.DueDate, today, pointValue),
	}
}

// AsOf reassesses the prompt for a later today.
// An acknowledgment only carries over if the loan was already overdue when it was given.
func (p ReturnPrompt) AsOf(today CalendarDate, pointValue decimal.Decimal) ReturnPrompt {
	next := NewReturnPrompt(p.Record, today, pointValue)
	next.Acknowledged = p.Acknowledged && p.RequiresAcknowledgment()

	return next
}

// DecideReturnSubmit gates the return request on the fine acknowledgment.
//
// Business Rules:
//
//	GIVEN: a return prompt for a loaded borrow record
//	WHEN: the user submits
//	THEN: the return request may be sent with today as return date
//	BLOCKED: an error notice if the record has no id
//	BLOCKED: a warning notice if the loan is overdue and the fine is not acknowledged
func DecideReturnSubmit(prompt ReturnPrompt) DecisionResult {
	return DecideReturn(prompt.Record.ID, prompt.RequiresAcknowledgment(), prompt.Acknowledged)
}

// DecideReturn applies the DecideReturnSubmit rules to plain values.
func DecideReturn(recordID ID, overdue, acknowledged bool) DecisionResult {
	if recordID.IsZero() {
		return BlockedDecision(ErrMissingRecordID, ErrorNotice(MsgMissingRecordID))
	}

	if overdue && !acknowledged {
		return BlockedDecision(ErrFineNotAcknowledged, Notice{
			Kind:    NoticeWarning,
			Message: MsgFineNotAcknowledged,
			Field:   FieldFineAcknowledgement,
		})
	}

	return ProceedDecision()
}
