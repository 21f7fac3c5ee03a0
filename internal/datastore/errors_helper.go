// Package datastore provides error handling helpers for database operations
package datastore

import (
	"fmt"

	"github.com/bkubisiak/birdr-go/internal/errors"
)

// dbError creates a properly categorized database error with context
func dbError(err error, operation string, context ...any) error {
	builder := errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", operation)

	// Add context pairs
	for i := 0; i < len(context)-1; i += 2 {
		if key, ok := context[i].(string); ok {
			builder = builder.Context(key, context[i+1])
		}
	}

	return builder.Build()
}

// validationError creates a domain validation error
func validationError(message, field string, value any) error {
	return errors.Newf("%s", message).
		Component("datastore").
		Category(errors.CategoryValidation).
		Context("field", field).
		Context("value", fmt.Sprintf("%v", value)).
		Build()
}

// stateError creates an invalid-entity-state error
func stateError(message, operation string, context ...any) error {
	builder := errors.Newf("%s", message).
		Component("datastore").
		Category(errors.CategoryState).
		Context("operation", operation)

	for i := 0; i < len(context)-1; i += 2 {
		if key, ok := context[i].(string); ok {
			builder = builder.Context(key, context[i+1])
		}
	}

	return builder.Build()
}

// notFoundError creates a missing-record error
func notFoundError(entity string, key any) error {
	return errors.Newf("%s not found: %v", entity, key).
		Component("datastore").
		Category(errors.CategoryNotFound).
		Context("entity", entity).
		Context("key", fmt.Sprintf("%v", key)).
		Build()
}
