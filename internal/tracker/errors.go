package tracker

import "errors"

var ErrProjectNotFound = errors.New("project not found")
var ErrTicketNotFound = errors.New("ticket not found")
var ErrNoProjects = errors.New("guild has no projects")

var ErrInvalidTag = errors.New("project tag must be A-Z/0-9 with no spaces")
var ErrInvalidStatus = errors.New("invalid ticket status")
var ErrInvalidTimeSpent = errors.New("time spent must be hours with at most 2 decimals")
var ErrTitleRequired = errors.New("ticket title is required")
var ErrNameRequired = errors.New("project name is required")
var ErrAssigneeRequired = errors.New("assignee is required")
var ErrConfirmationMismatch = errors.New("confirmation phrase does not match")

var ErrTagInUse = errors.New("project tag is already in use")

// Kind classifies an operation error for the adapter layer.
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindInternal   Kind = "internal"
)

// Classify maps an error returned by Service operations onto the
// caller-visible taxonomy. Unknown errors (storage failures) are internal.
func Classify(err error) Kind {
	switch {
	case errors.Is(err, ErrProjectNotFound), errors.Is(err, ErrTicketNotFound), errors.Is(err, ErrNoProjects):
		return KindNotFound
	case errors.Is(err, ErrInvalidTag),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidTimeSpent),
		errors.Is(err, ErrTitleRequired),
		errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrAssigneeRequired),
		errors.Is(err, ErrConfirmationMismatch):
		return KindValidation
	case errors.Is(err, ErrTagInUse):
		return KindConflict
	default:
		return KindInternal
	}
}
