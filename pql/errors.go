package pql

import (
	"errors"
	"fmt"
)

// ErrQuery marks queries rejected at compile time: unknown properties,
// type mismatches, fields outside the searchable set, and the like.
// errors.Is(err, ErrQuery) also matches parse failures.
var ErrQuery = errors.New("invalid query")

// ErrParse marks queries rejected by the lexer or parser. It wraps
// ErrQuery, so parse failures satisfy both sentinels.
var ErrParse = fmt.Errorf("%w: syntax error", ErrQuery)

func parseErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrParse, fmt.Sprintf(format, args...))
}

func queryErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrQuery, fmt.Sprintf(format, args...))
}
