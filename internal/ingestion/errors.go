package ingestion

import "fmt"

// UpstreamError reports a transport failure or a non-2xx status from an
// upstream endpoint.
type UpstreamError struct {
	URL        string
	StatusCode int // 0 when the request never completed
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("upstream %s: unexpected status code: %d", e.URL, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// PayloadError reports a response body that could not be decoded into the
// expected shape, or that lacks a required field.
type PayloadError struct {
	URL string
	Err error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("payload from %s: %v", e.URL, e.Err)
}

func (e *PayloadError) Unwrap() error { return e.Err }
