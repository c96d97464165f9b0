package credstore

import (
	"errors"
	"fmt"
)

var (
	ErrStoreMissing = errors.New("credential store missing")
	ErrSchema       = errors.New("credential store schema error")
)

// StoreMissingError reports that the backing file does not exist.
type StoreMissingError struct {
	Path string
}

func (e *StoreMissingError) Error() string {
	return fmt.Sprintf("credential store not found: %s", e.Path)
}

func (e *StoreMissingError) Is(target error) bool { return target == ErrStoreMissing }

// SchemaError reports a malformed backing file. Field names the offending
// column; Line is the 1-based CSV line when the problem is row specific.
type SchemaError struct {
	Field  string
	Line   int
	Reason string
}

func (e *SchemaError) Error() string {
	switch {
	case e.Line > 0 && e.Field != "":
		return fmt.Sprintf("credential store line %d: %s: %s", e.Line, e.Field, e.Reason)
	case e.Line > 0:
		return fmt.Sprintf("credential store line %d: %s", e.Line, e.Reason)
	default:
		return fmt.Sprintf("credential store: %s: %s", e.Field, e.Reason)
	}
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }
