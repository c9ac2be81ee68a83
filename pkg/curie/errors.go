package curie

import (
	"errors"
	"fmt"
)

// ErrUnknownPrefix is matched by errors.Is for every *UnknownPrefixError
var ErrUnknownPrefix = errors.New("unknown prefix")

// UnknownPrefixError is returned when a short name uses a prefix that is not registered
type UnknownPrefixError struct {
	Prefix string
}

func (e *UnknownPrefixError) Error() string {
	return fmt.Sprintf("unknown prefix '%s:'", e.Prefix)
}

func (e *UnknownPrefixError) Is(target error) bool {
	return target == ErrUnknownPrefix
}
