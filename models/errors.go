package models

import (
	"fmt"
	"sort"
	"strings"
)

type ErrorBadRequest struct {
	Message string
}

func (e ErrorBadRequest) Error() string { return e.Message }

type ErrorNotFound struct {
	Message string
}

func (e ErrorNotFound) Error() string { return e.Message }

type ErrorUnauthorized struct {
	Message string
}

func (e ErrorUnauthorized) Error() string { return e.Message }

type ErrorConflict struct {
	Message string
}

func (e ErrorConflict) Error() string { return e.Message }

type ErrorInternalServer struct {
	Message string
}

func (e ErrorInternalServer) Error() string { return e.Message }

// SaveFailure is returned when a record could not be persisted, usually
// because it did not validate.
type SaveFailure struct {
	Model  string
	Errors FieldErrors
	Err    error
}

func (e *SaveFailure) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "could not save %s", e.Model)
	if len(e.Errors) > 0 {
		fields := make([]string, 0, len(e.Errors))
		for field := range e.Errors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		msgs := make([]string, 0, len(fields))
		for _, field := range fields {
			msgs = append(msgs, strings.Join(e.Errors[field], " "))
		}
		b.WriteString(": ")
		b.WriteString(strings.Join(msgs, " "))
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *SaveFailure) Unwrap() error { return e.Err }

// TransitionDenied is returned when a status change lacks its permission flag.
type TransitionDenied struct {
	From   QaStatus
	To     QaStatus
	Reason string
}

func (e *TransitionDenied) Error() string {
	return fmt.Sprintf("transition from %s to %s denied: %s", e.From, e.To, e.Reason)
}

// MissingAttribute reports a model without the expected QA tracking attribute.
// For items the attribute is "<type>_qa_state_id" with the type name in snake
// case, e.g. "media_qa_state_id".
type MissingAttribute struct {
	Model     string
	Attribute string
}

func (e *MissingAttribute) Error() string {
	return fmt.Sprintf("%s does not have an attribute '%s'", e.Model, e.Attribute)
}
