package schema

// Result is the outcome of a schema or data validation. Valid results carry
// an empty, non-nil error list; invalid results carry at least one message.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Passed returns a successful result.
func Passed() Result {
	return Result{Valid: true, Errors: []string{}}
}

// Failed returns an unsuccessful result with the given messages.
func Failed(errs ...string) Result {
	if len(errs) == 0 {
		errs = []string{"validation failed"}
	}
	return Result{Valid: false, Errors: errs}
}

func resultOf(errs []string) Result {
	if len(errs) == 0 {
		return Passed()
	}
	return Failed(errs...)
}
