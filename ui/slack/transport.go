package slack

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// maxLoggedBody bounds how much of a response body is written to the log; users.list pages can be large.
const maxLoggedBody = 4096

// exchange is one raw HTTP round trip with Slack.
type exchange struct {
	Method string
	URL    string
	Params url.Values
	Status int
	Header http.Header
	Body   []byte
	Err    error
}

func (e *exchange) String() string {
	if e == nil {
		return "exchange{nil}"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Err)
	}
	body := e.Body
	suffix := ""
	if len(body) > maxLoggedBody {
		body, suffix = body[:maxLoggedBody], fmt.Sprintf("... (%d bytes)", len(e.Body))
	}
	return fmt.Sprintf("%s %s -> %d %s%s", e.Method, e.URL, e.Status, body, suffix)
}

// recorder is an http.RoundTripper that logs every request and raw response and keeps the last exchange so
// a failed call can be classified from what Slack actually sent.
type recorder struct {
	next http.RoundTripper
	mu   sync.Mutex
	last *exchange
}

func (r *recorder) Last() *exchange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *recorder) RoundTrip(req *http.Request) (*http.Response, error) {
	ex := &exchange{Method: req.Method, URL: redactURL(req.URL)}

	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading request body: %s", err)
		}
		req = req.Clone(req.Context())
		req.Body = io.NopCloser(bytes.NewReader(body))
		req.ContentLength = int64(len(body))
		if strings.HasPrefix(req.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
			if params, err := url.ParseQuery(string(body)); err == nil {
				ex.Params = redact(params)
			}
		}
	}
	log.Infof("slack request: %s %s %v", ex.Method, ex.URL, ex.Params)

	res, err := r.next.RoundTrip(req)
	if err != nil {
		ex.Err = err
		r.record(ex)
		log.Infof("slack client failed: %s", ex)
		return nil, err
	}

	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	ex.Status, ex.Header, ex.Body = res.StatusCode, res.Header, body
	if err != nil {
		ex.Err = fmt.Errorf("reading response body: %s", err)
		r.record(ex)
		log.Infof("slack client failed: %s", ex)
		return nil, ex.Err
	}
	res.Body = io.NopCloser(bytes.NewReader(body))
	r.record(ex)

	log.Infof("slack client received: %s", ex)
	return res, nil
}

func (r *recorder) record(ex *exchange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = ex
}

var _ http.RoundTripper = (*recorder)(nil)

func redact(params url.Values) url.Values {
	if _, ok := params["token"]; !ok {
		return params
	}
	ret := url.Values{}
	for k, v := range params {
		ret[k] = v
	}
	ret["token"] = []string{"REDACTED"}
	return ret
}

func redactURL(u *url.URL) string {
	c := *u
	c.RawQuery = redact(c.Query()).Encode()
	return c.String()
}
