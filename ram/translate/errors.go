package translate

import (
	"errors"
	"fmt"
)

// ErrInternal marks a violated translation invariant: an ungrounded
// variable, a reference to an argument that was never indexed, or an
// argument kind the translator does not recognize. Errors wrapping it
// indicate a bug in the front end or the translator itself, never bad
// user input, so callers should surface them loudly rather than
// recover.
var ErrInternal = errors.New("internal translation error")

func internalf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInternal}, args...)...)
}
