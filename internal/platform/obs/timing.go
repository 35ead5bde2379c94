package obs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Time logs the duration of the named operation through the request logger.
// Use it as `defer obs.Time(ctx, "op")(&err)` so failures are logged with the error.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		logger := zerolog.Ctx(ctx)
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			logger.Warn().
				Str("op", name).
				Int64("dur_ms", dur.Milliseconds()).
				Err(*errp).
				Msg("operation failed")
			return
		}
		logger.Debug().
			Str("op", name).
			Int64("dur_ms", dur.Milliseconds()).
			Msg("operation finished")
	}
}
