package fetch

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"
)

// LinkState classifies a listing URL after a check.
type LinkState int

const (
	// LinkUnknown means the check failed for a reason that says nothing about the ad.
	LinkUnknown LinkState = iota
	// LinkAlive means the URL answered with a non-gone status.
	LinkAlive
	// LinkGone means the URL answered 404 or 410.
	LinkGone
)

func (s LinkState) String() string {
	switch s {
	case LinkAlive:
		return "alive"
	case LinkGone:
		return "gone"
	default:
		return "unknown"
	}
}

// LinkResult is the outcome of checking one URL.
type LinkResult struct {
	URL        string
	State      LinkState
	StatusCode int
	Err        error
}

// CheckLink requests a URL and reports whether it is gone.
// Network failures and server errors yield LinkUnknown so that a flaky
// site never causes a listing to be retired.
func CheckLink(ctx context.Context, urlStr string, opts *Options) LinkResult {
	if opts == nil {
		opts = DefaultOptions()
	}

	req, err := opts.newRequest(ctx, http.MethodGet, urlStr)
	if err != nil {
		return LinkResult{URL: urlStr, State: LinkUnknown, Err: err}
	}

	resp, err := opts.client().Do(req)
	if err != nil {
		return LinkResult{URL: urlStr, State: LinkUnknown, Err: &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}}
	}
	_ = resp.Body.Close()

	res := LinkResult{URL: urlStr, StatusCode: resp.StatusCode}
	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		res.State = LinkGone
	case resp.StatusCode < 500:
		res.State = LinkAlive
	default:
		res.State = LinkUnknown
	}
	return res
}

// CheckLinks checks urls with at most concurrency requests in flight.
// Results are returned in input order.
func CheckLinks(ctx context.Context, urls []string, concurrency int, opts *Options) []LinkResult {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]LinkResult, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, u := range urls {
		g.Go(func() error {
			results[i] = CheckLink(gctx, u, opts)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
