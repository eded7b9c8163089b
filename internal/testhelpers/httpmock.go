package testhelpers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// Expectation is one canned exchange: a request shape to match and the
// response to hand back. Each expectation answers a single request.
type Expectation struct {
	method  string
	url     *url.URL
	headers http.Header
	form    url.Values

	status      int
	body        []byte
	respHeaders http.Header

	matched  bool
	mismatch string
}

// MockTransport is an http.RoundTripper that serves registered
// expectations in registration order.
type MockTransport struct {
	mu           sync.Mutex
	expectations []*Expectation
}

func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

var (
	DefaultTransport                    = NewMockTransport()
	previousTransport http.RoundTripper = http.DefaultTransport
)

// New registers an expectation against baseURL on the default transport.
func New(baseURL string) *Expectation {
	u, err := url.Parse(baseURL)
	if err != nil {
		panic(fmt.Sprintf("httpmock: bad base URL %q: %v", baseURL, err))
	}
	if u.Scheme == "" || u.Host == "" {
		panic(fmt.Sprintf("httpmock: base URL %q needs a scheme and a host", baseURL))
	}

	exp := &Expectation{
		url:         u,
		headers:     make(http.Header),
		form:        make(url.Values),
		respHeaders: make(http.Header),
	}
	DefaultTransport.add(exp)
	return exp
}

// Get expects a GET on path. Query parameters in path must all be present
// on the request; extra request parameters are ignored.
func (e *Expectation) Get(path string) *Expectation {
	return e.on(http.MethodGet, path)
}

func (e *Expectation) Post(path string) *Expectation {
	return e.on(http.MethodPost, path)
}

func (e *Expectation) on(method, path string) *Expectation {
	u, err := url.Parse(path)
	if err != nil {
		panic(fmt.Sprintf("httpmock: bad path %q: %v", path, err))
	}

	e.method = method
	e.url.Path = u.Path
	e.url.RawQuery = u.RawQuery
	return e
}

// MatchHeader requires the request to carry header key with value.
func (e *Expectation) MatchHeader(key, value string) *Expectation {
	e.headers.Set(key, value)
	return e
}

// MatchForm requires an urlencoded request body field key with value.
func (e *Expectation) MatchForm(key, value string) *Expectation {
	e.form.Set(key, value)
	return e
}

func (e *Expectation) Reply(status int) *Expectation {
	e.status = status
	return e
}

func (e *Expectation) BodyString(body string) *Expectation {
	e.body = []byte(body)
	return e
}

func (e *Expectation) JSON(v any) *Expectation {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("httpmock: cannot marshal reply: %v", err))
	}
	e.body = data
	e.respHeaders.Set("Content-Type", "application/json")
	return e
}

func (e *Expectation) Header(key, value string) *Expectation {
	e.respHeaders.Set(key, value)
	return e
}

func (e *Expectation) String() string {
	return e.method + " " + e.url.String()
}

func (t *MockTransport) add(exp *Expectation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expectations = append(t.expectations, exp)
}

func (t *MockTransport) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expectations = nil
}

// Pending lists the expectations that have not answered a request yet.
func (t *MockTransport) Pending() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var pending []string
	for _, exp := range t.expectations {
		if !exp.matched {
			pending = append(pending, exp.String())
		}
	}
	return pending
}

func IsDone() bool {
	return len(DefaultTransport.Pending()) == 0
}

// Activate routes http.DefaultClient through DefaultTransport.
func Activate() {
	if http.DefaultClient.Transport == DefaultTransport {
		return
	}

	previousTransport = http.DefaultClient.Transport
	if previousTransport == nil {
		previousTransport = http.DefaultTransport
	}
	http.DefaultClient.Transport = DefaultTransport
}

// Deactivate restores the previous transport and forgets every expectation.
func Deactivate() {
	http.DefaultClient.Transport = previousTransport
	DefaultTransport.reset()
}

func (t *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	body, err := readBody(req)
	if err != nil {
		return nil, fmt.Errorf("httpmock: %w", err)
	}

	var reasons []string
	for _, exp := range t.expectations {
		if exp.matched {
			continue
		}
		if err := exp.check(req, body); err != nil {
			exp.mismatch = err.Error()
			reasons = append(reasons, exp.String()+": "+exp.mismatch)
			continue
		}

		exp.matched = true
		exp.mismatch = ""
		return exp.response(req), nil
	}

	if len(reasons) == 0 {
		return nil, fmt.Errorf("httpmock: unexpected request %s %s", req.Method, req.URL)
	}
	return nil, fmt.Errorf("httpmock: unexpected request %s %s (%s)", req.Method, req.URL, strings.Join(reasons, "; "))
}

// readBody drains req.Body and puts a fresh reader back so the request can
// still be inspected by the caller.
func readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil {
		return nil, nil
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("unreadable request body: %w", err)
	}
	req.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

func (e *Expectation) check(req *http.Request, body []byte) error {
	for _, match := range []func(*http.Request, []byte) error{
		e.checkTarget,
		e.checkQuery,
		e.checkHeaders,
		e.checkForm,
	} {
		if err := match(req, body); err != nil {
			return err
		}
	}
	return nil
}

func (e *Expectation) checkTarget(req *http.Request, _ []byte) error {
	switch {
	case e.method != "" && e.method != req.Method:
		return fmt.Errorf("method %s, want %s", req.Method, e.method)
	case e.url.Scheme != req.URL.Scheme:
		return fmt.Errorf("scheme %s, want %s", req.URL.Scheme, e.url.Scheme)
	case e.url.Host != req.URL.Host:
		return fmt.Errorf("host %s, want %s", req.URL.Host, e.url.Host)
	case e.url.Path != req.URL.Path:
		return fmt.Errorf("path %s, want %s", req.URL.Path, e.url.Path)
	}
	return nil
}

func (e *Expectation) checkQuery(req *http.Request, _ []byte) error {
	got := req.URL.Query()
	for key, want := range e.url.Query() {
		values, ok := got[key]
		if !ok {
			return fmt.Errorf("query %s missing", key)
		}
		if strings.Join(values, ",") != strings.Join(want, ",") {
			return fmt.Errorf("query %s=%v, want %v", key, values, want)
		}
	}
	return nil
}

func (e *Expectation) checkHeaders(req *http.Request, _ []byte) error {
	for key := range e.headers {
		if got, want := req.Header.Get(key), e.headers.Get(key); got != want {
			return fmt.Errorf("header %s=%q, want %q", key, got, want)
		}
	}
	return nil
}

func (e *Expectation) checkForm(_ *http.Request, body []byte) error {
	if len(e.form) == 0 {
		return nil
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		return fmt.Errorf("body is not a form: %w", err)
	}
	for key := range e.form {
		if got, want := form.Get(key), e.form.Get(key); got != want {
			return fmt.Errorf("form %s=%q, want %q", key, got, want)
		}
	}
	return nil
}

func (e *Expectation) response(req *http.Request) *http.Response {
	status := e.status
	if status == 0 {
		status = http.StatusOK
	}

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        e.respHeaders.Clone(),
		Body:          io.NopCloser(bytes.NewReader(e.body)),
		ContentLength: int64(len(e.body)),
		Request:       req,
	}
}
