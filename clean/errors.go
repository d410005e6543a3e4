package clean

import "fmt"

// ProcessingError is returned when a document cannot be loaded or
// serialised. No output is produced for the document.
type ProcessingError struct {
	Filename string
	Err      error
}

func (e *ProcessingError) Error() string {
	name := e.Filename
	if name == "" {
		name = "unnamed"
	}
	return fmt.Sprintf("processing document %s: %v", name, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}
