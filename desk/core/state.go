package core

// State is the closed set of states a book detail view can be in.
// Exactly one state is current at any time.
type State interface {
	StateName() string
	isState()
}

const (
	StateNameIdle         = "Idle"
	StateNameResolving    = "Resolving"
	StateNameBorrowPrompt = "BorrowPrompt"
	StateNameReturnPrompt = "ReturnPrompt"
	StateNameSubmitting   = "Submitting"
	StateNameFailed       = "Failed"
)

// Idle shows the book with its primary action.
type Idle struct {
	Relation   BorrowRelation
	Affordance Affordance
}

// Resolving is entered while the borrow status, or the record for a return, is being fetched.
// RecordID is set when a record is being loaded for the return prompt.
type Resolving struct {
	RecordID ID
}

// BorrowPrompt collects the loan period.
type BorrowPrompt struct {
	Form BorrowForm
}

// ReturnPrompt shows the loaded record, the overdue situation and the acknowledgment control.
type ReturnPrompt struct {
	Record       BorrowRecord
	Today        CalendarDate
	Fine         FineAssessment
	Acknowledged bool
}

// RequiresAcknowledgment reports whether the fine must be acknowledged before submitting.
func (p ReturnPrompt) RequiresAcknowledgment() bool {
	return p.Fine.IsOverdue
}

// Submitting is entered while a borrow or return request is outstanding.
// Prompt is the state restored when the request fails.
type Submitting struct {
	Action Action
	Prompt State
}

// Failed is entered when the view cannot continue, e.g. after the borrow record could not be loaded.
type Failed struct {
	Err error
}

func (Idle) StateName() string         { return StateNameIdle }
func (Resolving) StateName() string    { return StateNameResolving }
func (BorrowPrompt) StateName() string { return StateNameBorrowPrompt }
func (ReturnPrompt) StateName() string { return StateNameReturnPrompt }
func (Submitting) StateName() string   { return StateNameSubmitting }
func (Failed) StateName() string       { return StateNameFailed }

func (Idle) isState()         {}
func (Resolving) isState()    {}
func (BorrowPrompt) isState() {}
func (ReturnPrompt) isState() {}
func (Submitting) isState()   {}
func (Failed) isState()       {}

// NewIdle derives the Idle state for a relation and the book's stock.
func NewIdle(relation BorrowRelation, availableCopies int) Idle {
	return Idle{Relation: relation, Affordance: DecideAffordance(relation, availableCopies)}
}
