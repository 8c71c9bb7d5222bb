package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	kerrors "github.com/env-store/envcli/internal/errors"
	logger "github.com/env-store/envcli/internal/logging"

	"github.com/hashicorp/go-retryablehttp"
)

// TokenSource returns a fresh bearer value for one authenticated request.
type TokenSource func() (string, error)

// Client talks to the envcli project/variable server. Sealed variables pass
// through it as opaque strings.
type Client struct {
	Base  string
	HTTP  *retryablehttp.Client
	Token TokenSource
}

// NewClient returns a client for base with retries on connection errors and
// 5xx responses. Retry attempts are logged at debug level.
func NewClient(base string, token TokenSource, log logger.Logger) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 3
	httpClient.RetryWaitMin = 200 * time.Millisecond
	httpClient.RetryWaitMax = 2 * time.Second
	httpClient.Logger = leveledLogger{log}
	// Hand the last response back so callers can report its status.
	httpClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		Base:  strings.TrimRight(base, "/"),
		HTTP:  httpClient,
		Token: token,
	}
}

// NewUser registers a public key with the server.
func (c *Client) NewUser(ctx context.Context, user NewUserRequest) error {
	return c.do(ctx, http.MethodPost, "/user/new", false, user, nil)
}

// GetProjectInfo returns a project and the public keys of its members.
func (c *Client) GetProjectInfo(ctx context.Context, projectID string) (*ProjectInfo, error) {
	var info ProjectInfo
	if err := c.do(ctx, http.MethodGet, "/project/"+url.PathEscape(projectID), true, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SetVariable stores one sealed variable and returns its id.
func (c *Client) SetVariable(ctx context.Context, projectID, sealed string) (string, error) {
	var out variableID
	body := setVariableRequest{ProjectID: projectID, Value: sealed}
	if err := c.do(ctx, http.MethodPost, "/variable/new", true, body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// SetMany stores several sealed variables and returns their ids in order.
func (c *Client) SetMany(ctx context.Context, projectID string, sealed []string) ([]string, error) {
	var out []variableID
	body := setManyRequest{ProjectID: projectID, Variables: sealed}
	if err := c.do(ctx, http.MethodPost, "/variables/set-many", true, body, &out); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(out))
	for _, v := range out {
		ids = append(ids, v.ID)
	}
	return ids, nil
}

// GetVariables returns every sealed variable of a project.
func (c *Client) GetVariables(ctx context.Context, projectID string) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "/project/"+url.PathEscape(projectID)+"/variables", true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TestAuth sends an authenticated no-op and returns the server's reply.
func (c *Client) TestAuth(ctx context.Context) (string, error) {
	var out string
	if err := c.do(ctx, http.MethodPost, "/test-auth", true, nil, &out); err != nil {
		return "", err
	}
	return out, nil
}

// do sends a request and decodes a JSON response into out. A *string out
// receives the raw body instead.
func (c *Client) do(ctx context.Context, method, path string, authenticated bool, in any, out any) error {
	var body any
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = encoded
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.Base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if authenticated && c.Token != nil {
		token, err := c.Token()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return fmt.Errorf("%w: %s %s: %w", kerrors.ErrRequestFailed, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s: %s %s", kerrors.ErrRequestFailed, method, path, resp.Status, strings.TrimSpace(string(msg)))
	}

	switch out := out.(type) {
	case nil:
		return nil
	case *string:
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		*out = string(raw)
		return nil
	default:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
		return nil
	}
}

// leveledLogger routes retryablehttp's request and retry logs to the debug
// output.
type leveledLogger struct {
	log logger.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...any) { l.write(msg, keysAndValues) }
func (l leveledLogger) Info(msg string, keysAndValues ...any)  { l.write(msg, keysAndValues) }
func (l leveledLogger) Debug(msg string, keysAndValues ...any) { l.write(msg, keysAndValues) }
func (l leveledLogger) Warn(msg string, keysAndValues ...any)  { l.write(msg, keysAndValues) }

func (l leveledLogger) write(msg string, keysAndValues []any) {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	l.log.Debugf("%s", b.String())
}
