package wizard

import "fmt"

// ContractError is returned when an answer is submitted for a field that is not the cursor.
// It indicates a caller bug rather than a bad answer.
type ContractError struct {
	Field  string
	Cursor string // "" when the wizard was idle
}

func (e *ContractError) Error() string {
	if e.Cursor == "" {
		return fmt.Sprintf("answer submitted for %s but no field is being prompted", e.Field)
	}
	return fmt.Sprintf("answer submitted for %s but the current field is %s", e.Field, e.Cursor)
}
