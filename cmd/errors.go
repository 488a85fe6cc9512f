package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/rolo/internal/mutation"
	"github.com/marcus/rolo/internal/output"
	"github.com/marcus/rolo/internal/storeclient"
)

// configError marks failures reading or writing the client config.
type configError struct{ err error }

func (e *configError) Error() string { return "config: " + e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// inputError marks bad command-line input that never reached the engine.
type inputError struct{ msg string }

func (e *inputError) Error() string { return e.msg }

func invalidInput(format string, args ...any) error {
	return &inputError{msg: fmt.Sprintf(format, args...)}
}

// inputArgs marks positional argument errors from fn as bad input.
func inputArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return &inputError{msg: err.Error()}
		}
		return nil
	}
}

// flagInputError marks flag parsing errors as bad input.
func flagInputError(_ *cobra.Command, err error) error {
	return &inputError{msg: err.Error()}
}

// errorCode maps an error onto the structured code used in JSON output.
// The checks run from most to least specific: a partial bulk failure wraps
// store errors, and a store 404 also matches ErrStoreUnavailable.
func errorCode(err error) string {
	var (
		verr    *mutation.ValidationError
		partial *mutation.PartialBulkFailure
		cfgErr  *configError
		inErr   *inputError
	)
	switch {
	case errors.As(err, &verr):
		return output.ErrCodeValidationFailed
	case errors.As(err, &partial):
		return output.ErrCodePartialFailure
	case errors.As(err, &inErr):
		return output.ErrCodeInvalidInput
	case errors.As(err, &cfgErr):
		return output.ErrCodeConfigError
	case errors.Is(err, mutation.ErrMutationInFlight):
		return output.ErrCodeBusy
	case errors.Is(err, mutation.ErrContactNotFound), storeclient.IsNotFound(err):
		return output.ErrCodeNotFound
	case errors.Is(err, storeclient.ErrStoreUnavailable):
		return output.ErrCodeStoreUnavailable
	default:
		return output.ErrCodeInternal
	}
}

// exitCode maps an error onto the process exit status.
func exitCode(err error) int {
	switch errorCode(err) {
	case output.ErrCodeValidationFailed, output.ErrCodeInvalidInput:
		return 2
	case output.ErrCodeStoreUnavailable:
		return 3
	case output.ErrCodePartialFailure:
		return 4
	default:
		return 1
	}
}

// errorDetails returns the structured context attached to err, if any.
func errorDetails(err error) map[string]interface{} {
	var verr *mutation.ValidationError
	if errors.As(err, &verr) {
		fields := make(map[string]interface{}, len(verr.Fields))
		for _, f := range verr.Fields {
			fields[f.Field] = f.Message
		}
		return map[string]interface{}{"fields": fields}
	}

	var partial *mutation.PartialBulkFailure
	if errors.As(err, &partial) {
		failed := make(map[string]interface{}, len(partial.Failed))
		for _, id := range partial.FailedIDs() {
			failed[id] = partial.Failed[id].Error()
		}
		return map[string]interface{}{"succeeded": partial.Succeeded, "failed": failed}
	}
	return nil
}

// reportError prints err for the user, as JSON when asJSON is set.
func reportError(err error, asJSON bool) {
	if asJSON {
		output.JSONErrorWithDetails(errorCode(err), err.Error(), errorDetails(err))
		return
	}

	var verr *mutation.ValidationError
	if errors.As(err, &verr) {
		output.Error("contact is invalid")
		for _, f := range verr.Fields {
			fmt.Printf("  %s: %s\n", f.Field, f.Message)
		}
		return
	}

	var partial *mutation.PartialBulkFailure
	if errors.As(err, &partial) {
		output.Error("deleted %d, failed %d", len(partial.Succeeded), len(partial.Failed))
		for _, id := range partial.FailedIDs() {
			fmt.Printf("  %s: %v\n", id, partial.Failed[id])
		}
		return
	}

	output.Error("%v", err)
}
