package dict

import (
	"errors"
	"fmt"
)

// MissingKeyError reports a required key or sub-node that is absent.
type MissingKeyError struct {
	Dict    string // name of the node that was searched
	Key     string
	NotDict bool // key exists but holds a scalar where a node was required
}

func (e *MissingKeyError) Error() string {
	if e.NotDict {
		return fmt.Sprintf("dict %q: key %q is not a dictionary", e.Dict, e.Key)
	}
	return fmt.Sprintf("dict %q: missing key %q", e.Dict, e.Key)
}

// TypeError reports a key whose value has the wrong kind.
type TypeError struct {
	Dict string
	Key  string
	Want string
	Got  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("dict %q: key %q: want %s, got %s", e.Dict, e.Key, e.Want, e.Got)
}

// IsMissingKey reports whether err is, or wraps, a *MissingKeyError.
func IsMissingKey(err error) bool {
	var mk *MissingKeyError
	return errors.As(err, &mk)
}
