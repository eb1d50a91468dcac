package crm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind is a coarse-grained categorization for CRM call failures.
type ErrorKind string

const (
	// KindTransport covers connection failures and timeouts.
	KindTransport ErrorKind = "transport"
	// KindStatus is an HTTP error status without a GraphQL error body.
	KindStatus ErrorKind = "status"
	// KindGraphQL is a response carrying a non-empty "errors" list.
	KindGraphQL ErrorKind = "graphql"
	// KindDecode is a response that is not JSON or has no record id.
	KindDecode ErrorKind = "decode"
)

// Error wraps an underlying error with the operation and a kind.
type Error struct {
	Op     string
	Kind   ErrorKind
	Status int // HTTP status when one was received
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Status != 0 {
		base += fmt.Sprintf(" (status=%d)", e.Status)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err is a CRM error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}

// GraphQLError is one entry of a GraphQL "errors" list.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// GraphQLErrors is the "errors" list of a GraphQL response.
type GraphQLErrors []GraphQLError

func (e GraphQLErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ge := range e {
		msg := ge.Message
		if code, ok := ge.Extensions["code"].(string); ok && code != "" {
			msg = fmt.Sprintf("%s [%s]", msg, code)
		}
		msgs = append(msgs, msg)
	}
	return strings.Join(msgs, "; ")
}
