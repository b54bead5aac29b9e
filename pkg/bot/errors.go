package bot

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrParse matches every *ParseError through errors.Is.
var ErrParse = errors.New("malformed bot config")

// ParseError is returned when a serialized bot config cannot be decoded.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%v: %v", ErrParse, e.Err)
	}
	return fmt.Sprintf("%v (%s): %v", ErrParse, e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Cause() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
