package capture

import (
	"context"

	"democap/internal/logging"
)

// Record starts s over src, runs fn, and stops the session on every exit
// path including panics. A failure from fn takes precedence: a stop error is
// then only logged. Launch failures return before fn runs.
func Record(ctx context.Context, s *Session, src GeometrySource, fn func(context.Context) error) (result Result, err error) {
	if err := s.Start(ctx, src); err != nil {
		return Result{}, err
	}

	stopCtx := context.WithoutCancel(ctx)
	defer func() {
		if recovered := recover(); recovered != nil {
			if _, stopErr := s.Stop(stopCtx); stopErr != nil {
				s.logger.Warn("stop after panic failed", logging.Error(stopErr))
			}
			panic(recovered)
		}
	}()

	workErr := fn(ctx)
	result, stopErr := s.Stop(stopCtx)
	if workErr != nil {
		if stopErr != nil {
			s.logger.Warn("stop failed after recorded work failed",
				logging.Error(stopErr),
				logging.String("work_error", workErr.Error()),
			)
		}
		return result, workErr
	}
	return result, stopErr
}
