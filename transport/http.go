package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MrEthical07/authsession"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

var (
	// ErrResponseTooLarge is returned when a response body exceeds MaxResponseSize.
	ErrResponseTooLarge = errors.New("response body too large")
	// ErrMalformedResponse is returned when a 2xx body is not the expected JSON shape.
	ErrMalformedResponse = errors.New("malformed response body")
)

// StatusError reports a non-2xx response that is not a credential rejection.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// HTTPTransport posts credentials to a JSON backend.
type HTTPTransport struct {
	client    *http.Client
	cfg       authsession.BackendConfig
	logger    *zap.Logger
	requestID func() string
}

// Option configures an HTTPTransport.
type Option func(*HTTPTransport)

// WithHTTPClient replaces the default client. The client's own Timeout is left alone;
// BackendConfig.Timeout is applied per request through the context.
func WithHTTPClient(c *http.Client) Option {
	return func(t *HTTPTransport) {
		if c != nil {
			t.client = c
		}
	}
}

// WithLogger sets the logger. Defaults to zap.NewNop.
func WithLogger(l *zap.Logger) Option {
	return func(t *HTTPTransport) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithRequestID overrides request id generation.
func WithRequestID(fn func() string) Option {
	return func(t *HTTPTransport) {
		if fn != nil {
			t.requestID = fn
		}
	}
}

// New returns an HTTPTransport for cfg.
func New(cfg authsession.BackendConfig, opts ...Option) (*HTTPTransport, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("backend base URL required")
	}
	if cfg.MaxResponseSize <= 0 {
		cfg.MaxResponseSize = 1 << 20
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	t := &HTTPTransport{
		client:    http.DefaultClient,
		cfg:       cfg,
		logger:    zap.NewNop(),
		requestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// SignUp posts creds to the signup endpoint.
func (t *HTTPTransport) SignUp(ctx context.Context, creds authsession.Credentials) (*authsession.SignupResult, error) {
	var out authsession.SignupResult
	if err := t.post(ctx, t.cfg.SignupPath, creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login posts creds to the login endpoint. A 2xx body missing token or expiresIn is
// returned as decoded; the Manager decides whether it is usable.
func (t *HTTPTransport) Login(ctx context.Context, creds authsession.Credentials) (*authsession.LoginResult, error) {
	var out authsession.LoginResult
	if err := t.post(ctx, t.cfg.LoginPath, creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

const maxErrorMessage = 256

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (t *HTTPTransport) post(ctx context.Context, path string, body any, out any) error {
	if t.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.Timeout)
		defer cancel()
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	url := t.cfg.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	reqID := t.requestID()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)
	if t.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", t.cfg.UserAgent)
	}

	log := t.logger.With(zap.String("request_id", reqID), zap.String("path", path))
	start := time.Now()

	resp, err := t.client.Do(req)
	if err != nil {
		log.Warn("backend request failed", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, t.cfg.MaxResponseSize+1))
	if err != nil {
		log.Warn("reading backend response failed", zap.Error(err))
		return err
	}
	if int64(len(raw)) > t.cfg.MaxResponseSize {
		return ErrResponseTooLarge
	}

	log.Debug("backend responded",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(raw)
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			if msg == "" {
				return authsession.ErrInvalidCredentials
			}
			return fmt.Errorf("%w: %s", authsession.ErrInvalidCredentials, msg)
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: msg}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func errorMessage(raw []byte) string {
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if eb.Error != "" {
			return eb.Error
		}
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > maxErrorMessage {
		msg = msg[:maxErrorMessage]
	}
	return msg
}
