package drm

import (
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestExchange(t *testing.T) {
	Convey("Exchange", t, func() {
		licenseRequest := []byte{0x08, 0x01, 0x12, 0x03, 0xAA, 0xBB, 0xCC}
		payload := base64.StdEncoding.EncodeToString(licenseRequest)

		Convey("Performs exactly one octet-stream POST with decoded bytes", func() {
			var calls int
			var gotBody []byte
			var gotContentType string

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				gotContentType = r.Header.Get("Content-Type")
				gotBody, _ = io.ReadAll(r.Body)
				_, _ = w.Write([]byte("license-data"))
			}))
			defer server.Close()

			ex := NewExchange(server.URL, nil, nil)
			status, body, err := ex.Post(payload)

			So(err, ShouldBeNil)
			So(calls, ShouldEqual, 1)
			So(gotContentType, ShouldEqual, "application/octet-stream")
			So(gotBody, ShouldResemble, licenseRequest)
			So(status, ShouldEqual, http.StatusOK)
			So(string(body), ShouldEqual, "license-data")
		})

		Convey("Non-200 responses still return status and body", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte("denied"))
			}))
			defer server.Close()

			ex := NewExchange(server.URL, nil, nil)
			status, body, err := ex.Post(payload)

			So(err, ShouldBeNil)
			So(status, ShouldEqual, http.StatusForbidden)
			So(string(body), ShouldEqual, "denied")
		})

		Convey("Request filter can rewrite headers and target", func() {
			var gotAuth string

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
			}))
			defer server.Close()

			filter := func(req *Request) error {
				req.Headers["Authorization"] = "Bearer token123"
				return nil
			}

			ex := NewExchange(server.URL, filter, nil)
			_, _, err := ex.Post(payload)

			So(err, ShouldBeNil)
			So(gotAuth, ShouldEqual, "Bearer token123")
		})

		Convey("Response filter can rewrite the body", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("wrapped:license"))
			}))
			defer server.Close()

			filter := func(resp *Response) error {
				resp.Body = resp.Body[len("wrapped:"):]
				return nil
			}

			ex := NewExchange(server.URL, nil, filter)
			_, body, err := ex.Post(payload)

			So(err, ShouldBeNil)
			So(string(body), ShouldEqual, "license")
		})

		Convey("Invalid base64 payload fails before any request", func() {
			var calls int
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
			}))
			defer server.Close()

			ex := NewExchange(server.URL, nil, nil)
			_, _, err := ex.Post("not base64!!!")

			So(err, ShouldNotBeNil)
			So(calls, ShouldEqual, 0)
		})

		Convey("Unreachable server returns an error", func() {
			ex := NewExchange("http://127.0.0.1:1", nil, nil)
			_, _, err := ex.Post(payload)
			So(err, ShouldNotBeNil)
		})
	})
}
