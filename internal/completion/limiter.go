package completion

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"chatconnect/internal/domain"
)

// Limited caps the rate of outbound completion calls across all requests.
type Limited struct {
	next    domain.Completer
	limiter *rate.Limiter
}

// NewLimited wraps next with a token bucket of rps calls per second.
// A non-positive rps returns next unchanged.
func NewLimited(next domain.Completer, rps float64, burst int) domain.Completer {
	if rps <= 0 {
		return next
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limited{next: next, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Name returns the wrapped provider's name.
func (l *Limited) Name() string { return l.next.Name() }

// Complete waits for a token, then delegates.
func (l *Limited) Complete(ctx context.Context, systemPrompt string, messages []domain.Message) (domain.Completion, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return domain.Completion{}, fmt.Errorf("%w: rate limit: %v", ErrUnavailable, err)
	}
	return l.next.Complete(ctx, systemPrompt, messages)
}
