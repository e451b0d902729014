package richtext

import "fmt"

// ParseError reports markup the deserializer could not read at all. It only
// escapes through Parse; Deserialize recovers from it.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("richtext: parse content: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
