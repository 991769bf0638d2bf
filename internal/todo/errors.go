package todo

import "fmt"

// Op names a remote operation.
type Op string

const (
	OpList   Op = "list"
	OpCreate Op = "create"
	OpDelete Op = "delete"
)

// Field names a form field.
type Field string

const (
	FieldName        Field = "name"
	FieldDescription Field = "description"
	FieldID          Field = "id"
)

// ValidationError blocks a submission before any remote call is made.
type ValidationError struct {
	Field Field
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// RemoteOperationError wraps any failure of list, create or delete.
type RemoteOperationError struct {
	Op  Op
	Err error
}

func (e *RemoteOperationError) Error() string {
	return fmt.Sprintf("%s todos: %v", e.Op, e.Err)
}

func (e *RemoteOperationError) Unwrap() error {
	return e.Err
}
