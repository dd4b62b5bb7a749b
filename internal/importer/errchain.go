package importer

import (
	"errors"
	"strings"
)

// chainSeparator joins the messages of an error and its causes.
const chainSeparator = " → "

// ErrorChain flattens an error and its wrapped causes into one diagnostic
// string, outer message first. An error without a cause returns its own
// message unchanged.
//
// fmt.Errorf("%w", ...) wrappers embed the cause's text in their own message,
// so a cause whose message is already the suffix of its parent is skipped
// rather than printed twice.
func ErrorChain(err error) string {
	if err == nil {
		return ""
	}

	var parts []string
	for err != nil {
		msg := err.Error()
		cause := errors.Unwrap(err)
		if cause != nil && strings.HasSuffix(msg, cause.Error()) {
			// Keep only the wrapper's own prefix, e.g. "resolve product: ".
			own := strings.TrimSuffix(msg, cause.Error())
			own = strings.TrimSuffix(strings.TrimSpace(own), ":")
			if own != "" {
				parts = append(parts, own)
			}
		} else {
			parts = append(parts, msg)
		}
		err = cause
	}

	return strings.Join(parts, chainSeparator)
}
