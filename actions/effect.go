package actions

import (
	"context"
	"fmt"
)

// EffectError reports that an action could not dispatch its effect.
type EffectError struct {
	Kind   Kind
	Target string
	Err    error
}

func (e *EffectError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Kind, e.Target, e.Err)
}

func (e *EffectError) Unwrap() error {
	return e.Err
}

// dispatch runs fn as the single effect of an action. A canceled context stops
// the dispatch before it starts; a panic in the collaborator becomes an error.
func dispatch(ctx context.Context, kind Kind, target string, fn func() error) (err error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &EffectError{Kind: kind, Target: target, Err: ctxErr}
	}

	defer func() {
		if r := recover(); r != nil {
			err = &EffectError{Kind: kind, Target: target, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if err := fn(); err != nil {
		return &EffectError{Kind: kind, Target: target, Err: err}
	}
	return nil
}
