package core

import (
	"errors"

	"github.com/AntonStoeckl/circulation-desk/apiclient"
)

// NoticeKind classifies a user-visible message.
type NoticeKind string

const (
	NoticeSuccess    NoticeKind = "success"
	NoticeInfo       NoticeKind = "info"
	NoticeWarning    NoticeKind = "warning"
	NoticeError      NoticeKind = "error"
	NoticeField      NoticeKind = "field"
	NoticePermission NoticeKind = "permission"
)

const (
	MsgBorrowSucceeded       = "Book borrowed successfully"
	MsgReturnSucceeded       = "Book returned successfully"
	MsgActionFailed          = "Action failed"
	MsgPermissionDenied      = "You do not have permission to perform this action"
	MsgNoResponse            = "No response from the server, please try again"
	MsgMissingRecordID       = "No borrow record found for this book"
	MsgBorrowDateRequired    = "Please select a borrow date"
	MsgDueDateRequired       = "Please select a due date"
	MsgDueDateNotAfterBorrow = "Due date must be after the borrow date"
	MsgFineNotAcknowledged   = "Please acknowledge the overdue fine before returning the book"
	MsgSubmissionInFlight    = "A request for this book is already in progress"

	FieldBorrowDate          = "borrowDate"
	FieldDueDate             = "dueDate"
	FieldFineAcknowledgement = "fineAcknowledged"
)

// Notice is a transient user-visible message. Field is set for field-level notices.
type Notice struct {
	Kind    NoticeKind
	Message string
	Field   string
}

func SuccessNotice(msg string) Notice { return Notice{Kind: NoticeSuccess, Message: msg} }
func WarningNotice(msg string) Notice { return Notice{Kind: NoticeWarning, Message: msg} }
func ErrorNotice(msg string) Notice   { return Notice{Kind: NoticeError, Message: msg} }

// NoticesForFailure maps a failed backend request onto the notices to show.
//
//   - session expiry: none, the session-expired handler already took over
//   - validation with field errors: one field notice per message
//   - authorization: one permission notice
//   - network: one error notice asking to retry
//   - anything else: one "Action failed" error notice carrying the server message
func NoticesForFailure(err error) []Notice {
	if err == nil || errors.Is(err, apiclient.ErrSessionExpired) {
		return nil
	}

	apiErr, ok := apiclient.AsAPIError(err)
	if !ok {
		return []Notice{ErrorNotice(MsgActionFailed)}
	}

	switch apiErr.Kind {
	case apiclient.KindValidation:
		if apiErr.HasFieldErrors() {
			notices := make([]Notice, 0, len(apiErr.FieldErrors))
			for _, fieldErr := range apiErr.FieldErrors {
				notices = append(notices, Notice{Kind: NoticeField, Message: fieldErr.Msg, Field: fieldErr.Path})
			}

			return notices
		}

	case apiclient.KindAuthorization:
		return []Notice{{Kind: NoticePermission, Message: MsgPermissionDenied}}

	case apiclient.KindNetwork:
		return []Notice{ErrorNotice(MsgNoResponse)}
	}

	if apiErr.Message == "" {
		return []Notice{ErrorNotice(MsgActionFailed)}
	}

	return []Notice{ErrorNotice(MsgActionFailed + ": " + apiErr.Message)}
}
