package services

import (
	"fmt"
	"time"

	"jogakzip/database"
	"jogakzip/utils"
)

// Change is one proposed column update. Present tells an omitted field apart
// from a field explicitly set to its zero value.
type Change struct {
	Column  string
	Value   interface{}
	Present bool
}

// Field turns an optional request field into a Change. When v is set its
// value is also copied into dst so the caller can return the merged view.
func Field[T any](column string, v *T, dst *T) Change {
	if v == nil {
		return Change{Column: column}
	}
	if dst != nil {
		*dst = *v
	}
	return Change{Column: column, Value: *v, Present: true}
}

var immutableColumns = map[string]bool{
	"id":         true,
	"password":   true,
	"group_id":   true,
	"post_id":    true,
	"created_at": true,
	"updated_at": true,
}

func newNoChangesError() error {
	return utils.NewValidationError("no fields to update")
}

// BuildMutation keeps the present changes in order and appends updated_at.
// It never yields an empty assignment list.
func BuildMutation(now time.Time, changes ...Change) ([]database.Assignment, error) {
	assignments := make([]database.Assignment, 0, len(changes)+1)
	seen := make(map[string]bool, len(changes))

	for _, change := range changes {
		if !change.Present {
			continue
		}
		if immutableColumns[change.Column] {
			return nil, utils.NewValidationError(fmt.Sprintf("%s cannot be updated", change.Column))
		}
		if seen[change.Column] {
			return nil, utils.NewValidationError(fmt.Sprintf("%s given more than once", change.Column))
		}
		seen[change.Column] = true
		assignments = append(assignments, database.Assignment{Column: change.Column, Value: change.Value})
	}

	if len(assignments) == 0 {
		return nil, newNoChangesError()
	}

	return append(assignments, database.Assignment{Column: "updated_at", Value: now}), nil
}
