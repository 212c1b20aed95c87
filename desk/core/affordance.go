package core

// Action is what a view's primary button triggers.
type Action string

const (
	ActionNone   Action = ""
	ActionBorrow Action = "borrow"
	ActionReturn Action = "return"
)

const (
	LabelReturn      = "Return"
	LabelBorrowBook  = "Borrow Book"
	LabelBorrowAgain = "Borrow Again"
	LabelOutOfStock  = "Out Of Stock"
)

// Affordance is the single primary action offered for a book.
type Affordance struct {
	Action  Action
	Label   string
	Enabled bool
}

// DecideAffordance derives the primary action from the user's relation to the book and its stock.
//
//   - borrowed: Return, enabled
//   - not borrowed and CanBorrow: "Borrow Book" (no record) or "Borrow Again" (returned), enabled
//   - otherwise: "Out Of Stock", disabled
func DecideAffordance(relation BorrowRelation, availableCopies int) Affordance {
	if relation.IsBorrowed() {
		return Affordance{Action: ActionReturn, Label: LabelReturn, Enabled: true}
	}

	if !CanBorrow(availableCopies, relation.Status) {
		return Affordance{Action: ActionNone, Label: LabelOutOfStock, Enabled: false}
	}

	if relation.Status == BorrowStatusReturned {
		return Affordance{Action: ActionBorrow, Label: LabelBorrowAgain, Enabled: true}
	}

	return Affordance{Action: ActionBorrow, Label: LabelBorrowBook, Enabled: true}
}
