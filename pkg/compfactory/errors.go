// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package compfactory

import (
	"errors"
	"fmt"
)

var ErrUnknownComponentType = errors.New("unknown component type")
var ErrInvalidConfig = errors.New("invalid component config")

// returned by Create for unregistered type tags, matches ErrUnknownComponentType with errors.Is
type UnknownComponentTypeError struct {
	Type string
}

func (e *UnknownComponentTypeError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnknownComponentType, e.Type)
}

func (e *UnknownComponentTypeError) Unwrap() error {
	return ErrUnknownComponentType
}

func IsUnknownComponentType(err error) bool {
	return errors.Is(err, ErrUnknownComponentType)
}

func invalidConfigErr(compType string, format string, args ...any) error {
	return fmt.Errorf("%w (%s): %s", ErrInvalidConfig, compType, fmt.Sprintf(format, args...))
}
