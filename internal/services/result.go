package services

// Result is the outcome of a best-effort side effect (email, analytics).
// Nothing downstream depends on it; callers that ignore it say so with `_ =`.
type Result struct {
	Err     error
	Skipped bool
}

func Succeeded() Result { return Result{} }

func Failed(err error) Result { return Result{Err: err} }

func SkippedWith(err error) Result { return Result{Err: err, Skipped: true} }

func (r Result) OK() bool { return r.Err == nil }
