// Package drm implements the license request plumbing shared by the local engine and the remote renderer.
//
// The package holds no DRM session state: key negotiation lives inside the
// playback engines. What it owns is the transport of license bytes to the
// configured server and the user-visible filter hooks that can rewrite a
// request or response in flight (auth headers, token query parameters,
// payload unwrapping).
package drm

// Request describes an outbound license request before it is sent.
// Filters may mutate any field.
type Request struct {
	URL     string
	Headers map[string]string
	Body    []byte
}

// Response describes a license server response before it is handed back to a playback engine.
// Filters may mutate the body.
type Response struct {
	Status  int
	Headers map[string][]string
	Body    []byte
}

// RequestFilter rewrites a license request before transmission.
type RequestFilter func(req *Request) error

// ResponseFilter rewrites a license response before it reaches the engine.
type ResponseFilter func(resp *Response) error

// Config carries the license server mapping handed to engines that negotiate DRM themselves.
type Config struct {
	LicenseServer  string
	RequestFilter  RequestFilter
	ResponseFilter ResponseFilter
}
