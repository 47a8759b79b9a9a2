// Package http provides the HTTP client used to talk to the vinylvault REST
// API and the artwork search service.
//
// The Client in this package handles:
//   - User-Agent, Accept and X-Request-ID headers
//   - JSON request bodies
//   - Bearer token authentication, only when a request carries a token
//   - Optional timeouts (none by default)
//
// It never retries: every call is exactly one round trip.
//
// # Basic Usage
//
//	client := http.NewClient(http.WithUserAgent("vinylvault"))
//
//	resp, err := client.Do(ctx, http.Request{
//	    Method: "POST",
//	    URL:    baseURL + "/albums",
//	    Body:   input,
//	    Token:  token,
//	})
//	if err == nil && resp.OK() {
//	    // decode resp.Body
//	}
//
//	// Fetch raw bytes, e.g. a cover image
//	data, err := client.DownloadBytes(ctx, coverURL)
package http
