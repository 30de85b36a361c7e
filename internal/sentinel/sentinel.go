package sentinel

var _ error = Error("")

// Error is an immutable error type backed by a string constant.
// Being a comparable value type, it matches through wrapped chains with the
// default == comparison that errors.Is performs.
type Error string

// Error implements the error interface.
func (e Error) Error() string {
	return string(e)
}
