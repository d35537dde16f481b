package models

import (
	"errors"
	"fmt"
)

// ErrUnknownValue is wrapped by every EnumError.
var ErrUnknownValue = errors.New("unknown enum value")

// EnumError reports a value outside one of the closed vocabularies.
type EnumError struct {
	Kind  string
	Value string
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Value)
}

func (e *EnumError) Unwrap() error {
	return ErrUnknownValue
}
