// Package errors provides the classified error primitives used across pagegen.
//
// Every error that crosses a package boundary in the generation pipeline is either a plain
// wrapped error or a ClassifiedError carrying a category, a severity and a retry strategy.
// The category drives two decisions: whether the orchestrator treats a failure as a fatal
// precondition or as a per-item error, and which exit code the CLI returns.
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryPrecondition, "base shell not found").
//		Fatal().
//		WithContext("path", shellPath).
//		WithCause(statErr).
//		Build()
package errors
