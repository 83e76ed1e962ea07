package dom

import "fmt"

// DOMError represents a DOM exception with a name and message.
type DOMError struct {
	Name    string
	Message string
}

func (e *DOMError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// Is matches DOM errors by name, so errors.Is(err, ErrNotFound("")) works.
func (e *DOMError) Is(target error) bool {
	t, ok := target.(*DOMError)
	return ok && t.Name == e.Name
}

// ErrHierarchyRequest creates a HierarchyRequestError.
func ErrHierarchyRequest(message string) *DOMError {
	return &DOMError{Name: "HierarchyRequestError", Message: message}
}

// ErrNotFound creates a NotFoundError.
func ErrNotFound(message string) *DOMError {
	return &DOMError{Name: "NotFoundError", Message: message}
}

// ErrInvalidCharacter creates an InvalidCharacterError.
func ErrInvalidCharacter(message string) *DOMError {
	return &DOMError{Name: "InvalidCharacterError", Message: message}
}

// ErrSyntax creates a SyntaxError.
func ErrSyntax(message string) *DOMError {
	return &DOMError{Name: "SyntaxError", Message: message}
}

// ErrNoModificationAllowed creates a NoModificationAllowedError.
func ErrNoModificationAllowed(message string) *DOMError {
	return &DOMError{Name: "NoModificationAllowedError", Message: message}
}

// ErrInvalidState creates an InvalidStateError.
func ErrInvalidState(message string) *DOMError {
	return &DOMError{Name: "InvalidStateError", Message: message}
}

// ListenerError reports a listener that panicked during dispatch. Dispatch
// recovers, hands the error to the document's handler and moves on.
type ListenerError struct {
	Type          string
	CurrentTarget *Node
	Value         any
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("listener for %q on %s failed: %v", e.Type, e.CurrentTarget.NodeName(), e.Value)
}

// Unwrap returns the panic value when it was an error.
func (e *ListenerError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}
