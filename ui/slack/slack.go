package slack

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	mbLog "github.com/pdbogen/slackin/common/log"
	"github.com/pdbogen/slackin/hub"
	"github.com/slack-go/slack"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

var log = mbLog.Log

const tracerName = "github.com/pdbogen/slackin/ui/slack"

type Config struct {
	Token     string
	Subdomain string
	// Timeout bounds each HTTP round trip to Slack.
	Timeout time.Duration
	// APIURL overrides slack-go's default Web API base; it must end in "/".
	APIURL string
	// Transport is the base transport; nil means http.DefaultTransport.
	Transport http.RoundTripper
}

// Client is the only code that talks to Slack. It hands back domain values and *Error, never raw responses.
type Client struct {
	cfg        Config
	events     hub.Publisher
	classifier *Classifier
	token      oauth2.TokenSource
	tracer     trace.Tracer
}

func New(cfg Config, events hub.Publisher) (*Client, error) {
	if cfg.Token == "" {
		return nil, errors.New("token must not be blank")
	}
	if cfg.Subdomain == "" {
		return nil, errors.New("subdomain must not be blank")
	}
	if events == nil {
		return nil, errors.New("event publisher must be non-nil")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Transport == nil {
		cfg.Transport = http.DefaultTransport
	}

	return &Client{
		cfg:        cfg,
		events:     events,
		classifier: &Classifier{Events: events},
		token:      oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"}),
		tracer:     otel.Tracer(tracerName),
	}, nil
}

// api builds a slack-go client whose transport records only this call's exchanges.
func (c *Client) api() (*slack.Client, *recorder) {
	rec := &recorder{next: &oauth2.Transport{Source: c.token, Base: c.cfg.Transport}}
	opts := []slack.Option{
		slack.OptionHTTPClient(&http.Client{Transport: rec, Timeout: c.cfg.Timeout}),
	}
	if c.cfg.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(c.cfg.APIURL))
	}
	return slack.New(c.cfg.Token, opts...), rec
}

// call runs do against a fresh slack-go client and turns any failure into a classified *Error, logged with
// the raw response before it is returned.
func (c *Client) call(ctx context.Context, method string, params url.Values, do func(context.Context, *slack.Client) error) error {
	ctx, span := c.tracer.Start(ctx, "slack."+method, trace.WithAttributes(attribute.String("slack.method", method)))
	defer span.End()

	api, rec := c.api()
	err := do(ctx, api)
	if err == nil {
		return nil
	}

	ex := rec.Last()
	classified := c.classify(err, params, ex)
	log.Errorf("slack %s failed: %s (cause: %s; raw response: %s)", method, classified, err, ex)

	span.RecordError(classified)
	if e, ok := classified.(*Error); ok {
		span.SetAttributes(attribute.String("slack.error", e.Code))
		span.SetStatus(codes.Error, e.Code)
	}
	return classified
}

func (c *Client) classify(err error, params url.Values, ex *exchange) error {
	var limited *slack.RateLimitedError
	if errors.As(err, &limited) {
		header := http.Header{}
		if ex != nil && ex.Header != nil {
			header = ex.Header
		}
		if header.Get("Retry-After") == "" && limited.RetryAfter > 0 {
			header = header.Clone()
			header.Set("Retry-After", fmt.Sprintf("%d", int(limited.RetryAfter/time.Second)))
		}
		return c.classifier.Classify("ratelimited", params, header)
	}

	if ex == nil || ex.Err != nil {
		code := transportCode(err)
		if ex != nil && isTimeout(ex.Err) {
			code = "timeout"
		}
		return &Error{Kind: Unknown, Code: code, Err: err}
	}

	bodyCode := gjson.GetBytes(ex.Body, "error").String()
	code := bodyCode
	switch {
	case code != "":
	case ex.Status == http.StatusTooManyRequests:
		code = "ratelimited"
	case ex.Status >= 400:
		code = fmt.Sprintf("http_%d", ex.Status)
	default:
		code = "invalid_response"
	}

	classified := c.classifier.Classify(code, params, ex.Header)
	if e, ok := classified.(*Error); ok && bodyCode == "" {
		e.Err = err
	}
	return classified
}

func transportCode(err error) string {
	if isTimeout(err) {
		return "timeout"
	}
	return "request_failed"
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout())
}
