package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/AntonStoeckl/circulation-desk/desk/core"
	"github.com/AntonStoeckl/circulation-desk/desk/features/borrowbook"
	"github.com/AntonStoeckl/circulation-desk/desk/features/loadborrowrecord"
	"github.com/AntonStoeckl/circulation-desk/desk/features/returnbook"
	"github.com/AntonStoeckl/circulation-desk/desk/shell"
)

const (
	logMsgStateChanged         = "book detail view state changed"
	logMsgCatalogRefreshFailed = "catalog refresh after mutation failed"
	logMsgLateResponseIgnored  = "response arrived after view was closed, ignoring"
)

// effects are collected under the lock and delivered after it is released,
// so listeners and sinks may call back into the view.
type effects struct {
	states  []core.State
	notices []core.Notice
}

// BookDetailView is the borrow/return state machine of one open book for one user.
// It is safe for concurrent use.
type BookDetailView struct {
	mu               sync.Mutex
	ports            Ports
	userID           core.ID
	bookID           core.ID
	book             core.BookSummary
	relation         core.BorrowRelation
	state            core.State
	closed           bool
	sink             NoticeSink
	listener         StateListener
	clock            func() time.Time
	logger           shell.Logger
	contextualLogger shell.ContextualLogger
}

// NewBookDetailView creates a view in Idle with no known relation. Call Open to resolve it.
func NewBookDetailView(ports Ports, userID core.ID, book core.BookSummary, opts ...Option) (*BookDetailView, error) {
	if err := ports.validate(); err != nil {
		return nil, err
	}

	if userID.IsZero() {
		return nil, ErrMissingUser
	}

	if book.ID.IsZero() {
		return nil, ErrMissingBook
	}

	v := &BookDetailView{
		ports:    ports,
		userID:   userID,
		bookID:   book.ID,
		book:     book,
		relation: core.NoRelation(),
		state:    core.NewIdle(core.NoRelation(), book.AvailableCopies),
		clock:    time.Now,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v, nil
}

// State returns the current state.
func (v *BookDetailView) State() core.State {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.state
}

// Book returns the book as last seen, with availability updated from the catalog.
func (v *BookDetailView) Book() core.BookSummary {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.book
}

// Open resolves the user's relation to the book and lands in Idle.
func (v *BookDetailView) Open(ctx context.Context) (core.State, error) {
	fx := &effects{}

	v.mu.Lock()
	if err := v.checkUsable(); err != nil {
		return v.unlockWith(fx, err)
	}
	v.setState(fx, core.Resolving{})
	v.mu.Unlock()
	v.emit(ctx, fx)

	return v.resolve(ctx, false)
}

// StartBorrow opens the borrow prompt with today as borrow date.
func (v *BookDetailView) StartBorrow() (core.State, error) {
	fx := &effects{}

	v.mu.Lock()
	if _, err := v.requireIdleWith(core.ActionBorrow); err != nil {
		return v.unlockWith(fx, err)
	}
	v.setState(fx, core.BorrowPrompt{Form: core.NewBorrowForm(v.today())})

	return v.unlockWith(fx, nil)
}

// SetBorrowDates updates the dates of the open borrow prompt.
func (v *BookDetailView) SetBorrowDates(borrowDate, dueDate core.CalendarDate) (core.State, error) {
	fx := &effects{}

	v.mu.Lock()
	if err := v.checkUsable(); err != nil {
		return v.unlockWith(fx, err)
	}

	if _, ok := v.state.(core.BorrowPrompt); !ok {
		return v.unlockWith(fx, ErrInvalidTransition)
	}
	v.setState(fx, core.BorrowPrompt{Form: core.BorrowForm{BorrowDate: borrowDate, DueDate: dueDate}})

	return v.unlockWith(fx, nil)
}

// SubmitBorrow validates the borrow prompt and, if valid, creates the borrow record.
// Invalid forms emit field notices and send nothing. On failure the prompt is kept with its dates.
func (v *BookDetailView) SubmitBorrow(ctx context.Context) (core.State, error) {
	fx := &effects{}

	v.mu.Lock()
	if err := v.checkUsable(); err != nil {
		return v.unlockWith(fx, err)
	}

	prompt, ok := v.state.(core.BorrowPrompt)
	if !ok {
		return v.unlockWith(fx, ErrInvalidTransition)
	}

	decision := core.DecideBorrowSubmit(prompt.Form)
	if err := decision.HasError(); err != nil {
		fx.notices = decision.Notices
		return v.unlockWith(fx, err)
	}

	v.setState(fx, core.Submitting{Action: core.ActionBorrow, Prompt: prompt})
	v.mu.Unlock()
	v.emit(ctx, fx)

	_, err := v.ports.Borrow.Handle(ctx, borrowbook.BuildCommand(v.userID, v.bookID, prompt.Form))

	return v.finishSubmission(ctx, prompt, core.MsgBorrowSucceeded, err)
}

// StartReturn loads the active borrow record and opens the return prompt.
// Without a record id an error notice is emitted and the view stays Idle.
// A failed load ends in Failed until Dismiss.
func (v *BookDetailView) StartReturn(ctx context.Context) (core.State, error) {
	fx := &effects{}

	v.mu.Lock()
	idle, err := v.requireIdleWith(core.ActionReturn)
	if err != nil {
		return v.unlockWith(fx, err)
	}

	decision := core.EnterReturnPrompt(idle.Relation)
	if err := decision.HasError(); err != nil {
		fx.notices = decision.Notices
		return v.unlockWith(fx, err)
	}

	recordID := idle.Relation.RecordID
	v.setState(fx, core.Resolving{RecordID: recordID})
	v.mu.Unlock()
	v.emit(ctx, fx)

	record, err := v.ports.Records.Handle(ctx, loadborrowrecord.BuildQuery(recordID))

	fx = &effects{}

	v.mu.Lock()
	if v.closed {
		v.logLateResponse(ctx)
		return v.unlockWith(fx, ErrViewClosed)
	}

	if err != nil {
		if shell.IsSessionExpiredError(err) {
			v.setState(fx, v.idle())
		} else {
			v.setState(fx, core.Failed{Err: err})
			fx.notices = core.NoticesForFailure(err)
		}

		return v.unlockWith(fx, err)
	}

	v.setState(fx, core.NewReturnPrompt(record, v.today(), v.book.PointValue))

	return v.unlockWith(fx, nil)
}

// AcknowledgeFine sets the state of the overdue fine acknowledgment.
func (v *BookDetailView) AcknowledgeFine(acknowledged bool) (core.State, error) {
	fx := &effects{}

	v.mu.Lock()
	if err := v.checkUsable(); err != nil {
		return v.unlockWith(fx, err)
	}

	prompt, ok := v.state.(core.ReturnPrompt)
	if !ok {
		return v.unlockWith(fx, ErrInvalidTransition)
	}
	prompt.Acknowledged = acknowledged
	v.setState(fx, prompt)

	return v.unlockWith(fx, nil)
}

// SubmitReturn returns the book with today as return date.
// A prompt opened on an earlier day is reassessed first.
// An overdue return without acknowledgment emits a warning notice and sends nothing.
func (v *BookDetailView) SubmitReturn(ctx context.Context) (core.State, error) {
	fx := &effects{}

	v.mu.Lock()
	if err := v.checkUsable(); err != nil {
		return v.unlockWith(fx, err)
	}

	prompt, ok := v.state.(core.ReturnPrompt)
	if !ok {
		return v.unlockWith(fx, ErrInvalidTransition)
	}

	if today := v.today(); !today.Equal(prompt.Today) {
		prompt = prompt.AsOf(today, v.book.PointValue)
		v.setState(fx, prompt)
	}

	decision := core.DecideReturnSubmit(prompt)
	if err := decision.HasError(); err != nil {
		fx.notices = decision.Notices
		return v.unlockWith(fx, err)
	}

	v.setState(fx, core.Submitting{Action: core.ActionReturn, Prompt: prompt})
	v.mu.Unlock()
	v.emit(ctx, fx)

	_, err := v.ports.Return.Handle(ctx, returnbook.BuildCommand(v.userID, v.bookID, prompt))

	return v.finishSubmission(ctx, prompt, core.MsgReturnSucceeded, err)
}

// Cancel closes an open prompt without any request. Outside a prompt it does nothing.
func (v *BookDetailView) Cancel() (core.State, error) {
	fx := &effects{}

	v.mu.Lock()
	if err := v.checkUsable(); err != nil {
		return v.unlockWith(fx, err)
	}

	switch v.state.(type) {
	case core.BorrowPrompt, core.ReturnPrompt:
		v.setState(fx, v.idle())
	}

	return v.unlockWith(fx, nil)
}

// Dismiss leaves Failed for Idle. Outside Failed it does nothing.
func (v *BookDetailView) Dismiss() (core.State, error) {
	fx := &effects{}

	v.mu.Lock()
	if v.closed {
		return v.unlockWith(fx, ErrViewClosed)
	}

	if _, ok := v.state.(core.Failed); ok {
		v.setState(fx, v.idle())
	}

	return v.unlockWith(fx, nil)
}

// Close tears the view down. Responses of requests still in flight are ignored:
// they change no state, emit no notices and trigger no refresh.
func (v *BookDetailView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.closed = true
}

// finishSubmission applies the outcome of a borrow or return request.
func (v *BookDetailView) finishSubmission(ctx context.Context, prompt core.State, successMsg string, err error) (core.State, error) {
	fx := &effects{}

	v.mu.Lock()
	if v.closed {
		v.logLateResponse(ctx)
		return v.unlockWith(fx, ErrViewClosed)
	}

	if err != nil {
		if shell.IsSessionExpiredError(err) {
			v.setState(fx, v.idle())
		} else {
			v.setState(fx, prompt)
			fx.notices = core.NoticesForFailure(err)
		}

		return v.unlockWith(fx, err)
	}

	fx.notices = []core.Notice{core.SuccessNotice(successMsg)}
	v.setState(fx, core.Resolving{})
	v.mu.Unlock()
	v.emit(ctx, fx)

	return v.resolve(ctx, true)
}

// resolve re-reads the relation (and the catalog after a mutation) and lands in Idle.
func (v *BookDetailView) resolve(ctx context.Context, refreshCatalog bool) (core.State, error) {
	relation := v.ports.Resolver.Resolve(ctx, v.userID, v.bookID)

	if refreshCatalog && v.ports.Catalog != nil && !v.isClosed() {
		if err := v.ports.Catalog.Refresh(ctx); err != nil {
			v.warn(ctx, logMsgCatalogRefreshFailed, err)
		}
	}

	fx := &effects{}

	v.mu.Lock()
	if v.closed {
		return v.unlockWith(fx, ErrViewClosed)
	}

	if v.ports.Catalog != nil {
		if available, ok := v.ports.Catalog.AvailableCopies(v.bookID); ok {
			v.book.AvailableCopies = available
		}
	}

	v.relation = relation
	v.setState(fx, v.idle())

	return v.unlockWith(fx, nil)
}

/*** helpers, all called with v.mu held unless stated otherwise ***/

func (v *BookDetailView) checkUsable() error {
	if v.closed {
		return ErrViewClosed
	}

	switch v.state.(type) {
	case core.Submitting:
		return ErrSubmissionInFlight
	case core.Resolving:
		return ErrResolutionInFlight
	}

	return nil
}

func (v *BookDetailView) requireIdleWith(action core.Action) (core.Idle, error) {
	if err := v.checkUsable(); err != nil {
		return core.Idle{}, err
	}

	idle, ok := v.state.(core.Idle)
	if !ok {
		return core.Idle{}, ErrInvalidTransition
	}

	if idle.Affordance.Action != action || !idle.Affordance.Enabled {
		return core.Idle{}, ErrActionNotAvailable
	}

	return idle, nil
}

func (v *BookDetailView) idle() core.Idle {
	return core.NewIdle(v.relation, v.book.AvailableCopies)
}

func (v *BookDetailView) today() core.CalendarDate {
	return core.Today(v.clock())
}

func (v *BookDetailView) setState(fx *effects, state core.State) {
	v.state = state
	fx.states = append(fx.states, state)
}

// unlockWith releases v.mu, delivers fx and returns the current state with err.
func (v *BookDetailView) unlockWith(fx *effects, err error) (core.State, error) {
	state := v.state
	v.mu.Unlock()
	v.emit(context.Background(), fx)

	return state, err
}

func (v *BookDetailView) isClosed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.closed
}

// emit is called without v.mu held.
func (v *BookDetailView) emit(ctx context.Context, fx *effects) {
	for _, state := range fx.states {
		v.debug(ctx, logMsgStateChanged, shell.LogAttrState, state.StateName())

		if v.listener != nil {
			v.listener(state)
		}
	}

	if v.sink == nil {
		return
	}

	for _, notice := range fx.notices {
		v.sink.Notify(notice)
	}
}

func (v *BookDetailView) logLateResponse(ctx context.Context) {
	v.debug(ctx, logMsgLateResponseIgnored)
}

func (v *BookDetailView) debug(ctx context.Context, msg string, args ...any) {
	args = append([]any{shell.LogAttrBookID, v.bookID.String()}, args...)

	if v.contextualLogger != nil {
		v.contextualLogger.DebugContext(ctx, msg, args...)
	} else if v.logger != nil {
		v.logger.Debug(msg, args...)
	}
}

func (v *BookDetailView) warn(ctx context.Context, msg string, err error) {
	args := []any{shell.LogAttrBookID, v.bookID.String(), shell.LogAttrError, err.Error()}

	if v.contextualLogger != nil {
		v.contextualLogger.WarnContext(ctx, msg, args...)
	} else if v.logger != nil {
		v.logger.Warn(msg, args...)
	}
}
