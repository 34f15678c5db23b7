// Package errors provides structured error handling for the sheet engine.
//
// Errors carry a Code, a message, an optional wrapped cause, and optional
// metadata. Codes map onto the engine's failure taxonomy:
//
//   - CodeInvalidArgument: configuration errors (ineligible item type,
//     singleton violations, malformed advancement configuration)
//   - CodeFailedPrecondition: choice/validation errors raised in strict mode
//     (too many choices at a level, prerequisite failures)
//   - CodeNotFound: missing content references and absent documents
//   - CodeInternal: storage and infrastructure failures
//
// Creating errors:
//
//	err := errors.NotFound("character not found")
//	err := errors.InvalidArgumentf("invalid hit die: d%d", die)
//
// Wrapping:
//
//	if err := repo.Get(ctx, id); err != nil {
//	    return errors.Wrap(err, "failed to load character")
//	}
//
// Checking:
//
//	if errors.IsNotFound(err) { ... }
package errors
