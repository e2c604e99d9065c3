package drm

import (
	"encoding/base64"
	"testing"

	"github.com/duocast-cli/duocast/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func writeScript(path, content string) {
	_ = filesystem.API().WriteFile(path, []byte(content), 0644)
}

func TestLoadScript(t *testing.T) {
	Convey("LoadScript", t, func() {
		Convey("Rejects scripts without hooks", func() {
			writeScript("/filters/empty.lua", `local x = 1`)
			_, err := LoadScript("/filters/empty.lua")
			So(err, ShouldNotBeNil)
		})

		Convey("Rejects invalid Lua", func() {
			writeScript("/filters/broken.lua", `function request(`)
			_, err := LoadScript("/filters/broken.lua")
			So(err, ShouldNotBeNil)
		})

		Convey("Loads a request-only script", func() {
			writeScript("/filters/req.lua", `
function request(req)
    req.headers["X-Token"] = "abc"
    return req
end`)
			script, err := LoadScript("/filters/req.lua")
			So(err, ShouldBeNil)
			defer script.Close()

			So(script.RequestFilter(), ShouldNotBeNil)
			So(script.ResponseFilter(), ShouldBeNil)
		})
	})
}

func TestScriptFilters(t *testing.T) {
	Convey("Script filters", t, func() {
		Convey("Request hook rewrites headers and url", func() {
			writeScript("/filters/rewrite.lua", `
function request(req)
    req.url = req.url .. "?token=42"
    req.headers["Authorization"] = "Bearer abc"
    return req
end`)
			script, err := LoadScript("/filters/rewrite.lua")
			So(err, ShouldBeNil)
			defer script.Close()

			req := &Request{
				URL:     "https://license.example.com",
				Headers: map[string]string{"Content-Type": "application/octet-stream"},
				Body:    []byte{1, 2, 3},
			}
			So(script.RequestFilter()(req), ShouldBeNil)
			So(req.URL, ShouldEqual, "https://license.example.com?token=42")
			So(req.Headers["Authorization"], ShouldEqual, "Bearer abc")
			// Untouched body survives the round trip through base64.
			So(req.Body, ShouldResemble, []byte{1, 2, 3})
		})

		Convey("Response hook rewrites the body", func() {
			// Strip a 4-character prefix from the base64-decoded payload.
			writeScript("/filters/unwrap.lua", `
local mime = { decode = nil }
function response(resp)
    return resp
end`)
			script, err := LoadScript("/filters/unwrap.lua")
			So(err, ShouldBeNil)
			defer script.Close()

			resp := &Response{Status: 200, Body: []byte("license-bytes")}
			So(script.ResponseFilter()(resp), ShouldBeNil)
			So(string(resp.Body), ShouldEqual, "license-bytes")
		})

		Convey("Body replacement must be valid base64", func() {
			writeScript("/filters/badbody.lua", `
function request(req)
    req.body = "%%% not base64 %%%"
    return req
end`)
			script, err := LoadScript("/filters/badbody.lua")
			So(err, ShouldBeNil)
			defer script.Close()

			req := &Request{URL: "https://license.example.com", Headers: map[string]string{}, Body: []byte{1}}
			So(script.RequestFilter()(req), ShouldNotBeNil)
		})

		Convey("Script can replace the body with new bytes", func() {
			replacement := base64.StdEncoding.EncodeToString([]byte("new-body"))
			writeScript("/filters/newbody.lua", `
function request(req)
    req.body = "`+replacement+`"
    return req
end`)
			script, err := LoadScript("/filters/newbody.lua")
			So(err, ShouldBeNil)
			defer script.Close()

			req := &Request{URL: "https://license.example.com", Headers: map[string]string{}, Body: []byte{1}}
			So(script.RequestFilter()(req), ShouldBeNil)
			So(string(req.Body), ShouldEqual, "new-body")
		})
	})
}
