package models

import "github.com/google/uuid"

// ValidateID rejects malformed entity ids before they reach the record
// store, so a bad id surfaces as InvalidArgument rather than NotFound.
func ValidateID(field, id string) error {
	if uuid.Validate(id) != nil {
		return NewValidationError(field, "must be a valid id")
	}
	return nil
}
