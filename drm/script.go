package drm

import (
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/duocast-cli/duocast/filesystem"
	lua "github.com/yuin/gopher-lua"
)

// Lua function identifiers a filter script may define. Both are optional,
// but a script defining neither is rejected as a no-op.
const (
	requestFn  = "request"
	responseFn = "response"
)

// Script is a user-supplied Lua filter that rewrites license requests and responses.
//
// The script runs in a plain Lua 5.1 state with no scraping or IO libraries.
// request(req) receives a table {url, headers, body} where body is base64 of the
// raw license bytes; the returned table (or the mutated argument) replaces the
// request. response(resp) receives {status, body} the same way.
type Script struct {
	name  string
	state *lua.LState
	mu    sync.Mutex // the Lua state is single-threaded
}

// LoadScript executes and validates a Lua filter script from the given path.
func LoadScript(path string) (*Script, error) {
	src, err := filesystem.API().ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read filter script: %w", err)
	}

	state := lua.NewState()
	if err := state.DoString(string(src)); err != nil {
		state.Close()
		return nil, fmt.Errorf("execute filter script: %w", err)
	}

	hasRequest := state.GetGlobal(requestFn).Type() == lua.LTFunction
	hasResponse := state.GetGlobal(responseFn).Type() == lua.LTFunction
	if !hasRequest && !hasResponse {
		state.Close()
		return nil, fmt.Errorf("filter script defines neither %s nor %s", requestFn, responseFn)
	}

	return &Script{name: path, state: state}, nil
}

// Close releases the underlying Lua state.
func (s *Script) Close() {
	s.state.Close()
}

// RequestFilter returns the script's request hook, or nil when it defines none.
func (s *Script) RequestFilter() RequestFilter {
	if s.state.GetGlobal(requestFn).Type() != lua.LTFunction {
		return nil
	}

	return func(req *Request) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		tbl := s.state.NewTable()
		s.state.SetField(tbl, "url", lua.LString(req.URL))
		headers := s.state.NewTable()
		for k, v := range req.Headers {
			s.state.SetField(headers, k, lua.LString(v))
		}
		s.state.SetField(tbl, "headers", headers)
		s.state.SetField(tbl, "body", lua.LString(base64.StdEncoding.EncodeToString(req.Body)))

		if err := s.state.CallByParam(lua.P{
			Fn:      s.state.GetGlobal(requestFn),
			NRet:    1,
			Protect: true,
		}, tbl); err != nil {
			return fmt.Errorf("filter %s: %w", s.name, err)
		}

		ret := s.state.Get(-1)
		s.state.Pop(1)

		out, ok := ret.(*lua.LTable)
		if !ok {
			// The script mutated the argument in place.
			out = tbl
		}

		if v := out.RawGetString("url"); v != lua.LNil {
			req.URL = v.String()
		}
		if v, ok := out.RawGetString("headers").(*lua.LTable); ok {
			req.Headers = make(map[string]string)
			v.ForEach(func(k, val lua.LValue) {
				req.Headers[k.String()] = val.String()
			})
		}
		if v := out.RawGetString("body"); v != lua.LNil {
			decoded, err := base64.StdEncoding.DecodeString(v.String())
			if err != nil {
				return fmt.Errorf("filter %s returned invalid body encoding: %w", s.name, err)
			}
			req.Body = decoded
		}

		return nil
	}
}

// ResponseFilter returns the script's response hook, or nil when it defines none.
func (s *Script) ResponseFilter() ResponseFilter {
	if s.state.GetGlobal(responseFn).Type() != lua.LTFunction {
		return nil
	}

	return func(resp *Response) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		tbl := s.state.NewTable()
		s.state.SetField(tbl, "status", lua.LNumber(resp.Status))
		s.state.SetField(tbl, "body", lua.LString(base64.StdEncoding.EncodeToString(resp.Body)))

		if err := s.state.CallByParam(lua.P{
			Fn:      s.state.GetGlobal(responseFn),
			NRet:    1,
			Protect: true,
		}, tbl); err != nil {
			return fmt.Errorf("filter %s: %w", s.name, err)
		}

		ret := s.state.Get(-1)
		s.state.Pop(1)

		out, ok := ret.(*lua.LTable)
		if !ok {
			out = tbl
		}

		if v := out.RawGetString("body"); v != lua.LNil {
			decoded, err := base64.StdEncoding.DecodeString(v.String())
			if err != nil {
				return fmt.Errorf("filter %s returned invalid body encoding: %w", s.name, err)
			}
			resp.Body = decoded
		}

		return nil
	}
}
