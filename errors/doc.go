/*
Package errors provides semantic error types for repokit.

The package defines sentinel errors (ErrNotFound, ErrAlreadyExists,
ErrInvalidInput, ErrNilArgument, ErrConditionFailed) together with richer
typed errors that carry context about what failed. Typed errors implement
Is() so callers can match them against the sentinels with errors.Is:

	_, err := repo.GetByID(ctx, "missing")
	if errors.Is(err, repokiterrors.ErrNotFound) {
	    // handle not found
	}

Helper predicates (IsNotFound, IsValidationError, ...) are provided for
callers that prefer not to import the standard errors package alongside.
*/
package errors
