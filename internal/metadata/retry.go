package metadata

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tonkeeper/tonapi-go"
	"golang.org/x/time/rate"
)

const rateLimitBackoff = 500 * time.Millisecond

type Func[T any] func(ctx context.Context) (T, error)

// rateLimitRetry waits for the limiter before every call and repeats calls
// rejected with 429 until the context is done.
func rateLimitRetry[T any](ctx context.Context, limiter *rate.Limiter, fn Func[T]) (T, error) {
	var zero T
	for {
		if err := limiter.Wait(ctx); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err != nil && statusCode(err) == http.StatusTooManyRequests {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(rateLimitBackoff):
				continue
			}
		}

		return result, err
	}
}

func statusCode(err error) int {
	var e *tonapi.ErrorStatusCode
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}
