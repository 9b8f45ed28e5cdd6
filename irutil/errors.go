package irutil

import "fmt"

// LinkError is returned by the mover when a symbol cannot be imported into the
// destination module: a name is already taken, a referenced symbol has an
// incompatible type, or two type definitions of the same name disagree
type LinkError struct {
	// Symbol is the name of the global value or type that failed to link
	Symbol string

	// Reason describes why linking failed
	Reason string
}

func (le *LinkError) Error() string {
	return fmt.Sprintf("%s: %s", le.Symbol, le.Reason)
}

// VerifyError is returned when a module does not survive a print and re-parse
// round trip: eg. it references a symbol that no longer exists
type VerifyError struct {
	Err error
}

func (ve *VerifyError) Error() string {
	return fmt.Sprintf("module failed verification: %s", ve.Err)
}

func (ve *VerifyError) Unwrap() error {
	return ve.Err
}
