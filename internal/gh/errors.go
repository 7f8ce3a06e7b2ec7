package gh

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v57/github"
)

var (
	// ErrNotFound is returned when the repository or issue does not exist or
	// is not visible with the configured token.
	ErrNotFound = errors.New("not found on GitHub")
	// ErrUnauthorized is returned for missing, invalid or under-scoped tokens.
	ErrUnauthorized = errors.New("GitHub authentication failed")
	// ErrRateLimited is returned when the primary or secondary rate limit is hit.
	ErrRateLimited = errors.New("GitHub API rate limit exceeded")
	// ErrValidation is returned when GitHub rejects the request payload.
	ErrValidation = errors.New("GitHub rejected the request")
)

// wrapError maps go-github failures onto the package sentinels. The original
// error stays in the chain so its message reaches the caller.
func wrapError(op string, resp *github.Response, err error) error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	switch {
	case errors.As(err, &rateErr):
		return fmt.Errorf("%s: %w (resets at %s): %w", op, ErrRateLimited, rateErr.Rate.Reset.Format("15:04:05"), err)
	case errors.As(err, &abuseErr):
		return fmt.Errorf("%s: %w: %w", op, ErrRateLimited, err)
	}

	if resp != nil {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%s: %w: %w", op, ErrUnauthorized, err)
		case http.StatusUnprocessableEntity:
			return fmt.Errorf("%s: %w: %w", op, ErrValidation, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%s: %w: %w", op, ErrRateLimited, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
