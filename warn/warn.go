/*
Package warn carries the non-fatal anomalies found while decoding or encoding.

The formats in this module have been observed with small variations in fields
that should be constant, so the decoders report them and carry on rather than
failing.
*/
package warn

import "fmt"

// Warning describes a single anomaly.
type Warning struct {
	// Field names the offending header field or member
	Field   string
	Message string
}

func (w Warning) String() string {
	if w.Field == "" {
		return w.Message
	}
	return fmt.Sprintf("%s: %s", w.Field, w.Message)
}

// List accumulates warnings. The zero value is ready to use.
type List []Warning

// Addf appends a warning for field.
func (l *List) Addf(field, format string, a ...interface{}) {
	*l = append(*l, Warning{
		Field:   field,
		Message: fmt.Sprintf(format, a...),
	})
}

// Mismatch appends a warning when got differs from want.
func (l *List) Mismatch(field string, got, want uint32) {
	if got != want {
		l.Addf(field, "unexpected value %d, expected %d", got, want)
	}
}
