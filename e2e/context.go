package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"mobileauth/internal/auth/client"
	"mobileauth/internal/auth/flow"
	"mobileauth/internal/auth/state"
	"mobileauth/internal/devserver"
	"mobileauth/internal/navigation"
)

// ServiceLimits bounds the in-process verification service for a scenario.
type ServiceLimits struct {
	MaxVerifyAttempts int
	MaxSends          int
}

var defaultLimits = ServiceLimits{MaxVerifyAttempts: 5, MaxSends: 5}

// TestContext holds state between test steps. Each scenario gets its own
// in-process verification service and client-side sign-in stack.
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastStatus       int
	LastResponseBody []byte

	LastNotice flow.Notice
	LastErr    error

	server  *httptest.Server
	mailer  *devserver.CaptureMailer
	machine *state.Machine
	flow    *flow.Flow
}

// NewTestContext creates a new test context
func NewTestContext() *TestContext {
	return &TestContext{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// StartService (re)starts the verification service with the given limits and
// rebuilds the client stack against it.
func (tc *TestContext) StartService(limits ServiceLimits) {
	tc.Close()
	tc.mailer = devserver.NewCaptureMailer()
	h := devserver.New(devserver.Config{
		Store: devserver.StoreConfig{
			CodeTTL:           10 * time.Minute,
			MaxVerifyAttempts: limits.MaxVerifyAttempts,
			MaxSends:          limits.MaxSends,
			SendWindow:        10 * time.Minute,
			HashCost:          bcrypt.MinCost,
		},
		SigningKey:  "e2e-signing-key",
		TokenTTL:    time.Hour,
		Environment: "test",
	}, devserver.WithMailer(tc.mailer))
	tc.server = httptest.NewServer(h.Router())
	tc.BaseURL = tc.server.URL

	tc.machine = state.New()
	c := client.New(client.Config{BaseURL: tc.BaseURL, Timeout: 5 * time.Second})
	tc.flow = flow.New(c, tc.machine)
}

func (tc *TestContext) Close() {
	if tc.server != nil {
		tc.server.Close()
		tc.server = nil
	}
}

// POST makes a POST request and stores the response
func (tc *TestContext) POST(path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	return tc.POSTRaw(path, "application/json", data)
}

// POSTRaw sends body verbatim with the given content type.
func (tc *TestContext) POSTRaw(path, contentType string, body []byte) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, tc.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return tc.do(req)
}

// GET makes a GET request and stores the response
func (tc *TestContext) GET(path string) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, tc.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	tc.LastStatus = resp.StatusCode
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GetResponseField extracts a dot-separated field, such as "error.code",
// from the JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	for _, part := range strings.Split(field, ".") {
		obj, ok := data.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %s not found in response", field)
		}
		if data, ok = obj[part]; !ok {
			return nil, fmt.Errorf("field %s not found in response", field)
		}
	}
	return data, nil
}

// ResponseContains checks if the response body contains a field or text
func (tc *TestContext) ResponseContains(text string) bool {
	if strings.Contains(string(tc.LastResponseBody), text) {
		return true
	}
	_, err := tc.GetResponseField(text)
	return err == nil
}

// Getter methods for step package interfaces

func (tc *TestContext) GetLastResponseStatus() int {
	return tc.LastStatus
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}

func (tc *TestContext) GetBaseURL() string {
	return tc.BaseURL
}

func (tc *TestContext) GetHTTPClient() *http.Client {
	return tc.HTTPClient
}

func (tc *TestContext) Flow() *flow.Flow {
	return tc.flow
}

func (tc *TestContext) Machine() *state.Machine {
	return tc.machine
}

func (tc *TestContext) View() navigation.View {
	return navigation.ViewFor(tc.machine.Snapshot())
}

// LastCode returns the most recent code mailed to address.
func (tc *TestContext) LastCode(address string) (string, bool) {
	return tc.mailer.LastCode(address)
}

func (tc *TestContext) CodesSent() int {
	return tc.mailer.Sent()
}

func (tc *TestContext) SetOutcome(n flow.Notice, err error) {
	tc.LastNotice = n
	tc.LastErr = err
}

func (tc *TestContext) GetOutcome() (flow.Notice, error) {
	return tc.LastNotice, tc.LastErr
}

func (tc *TestContext) RestartService(maxAttempts, maxSends int) {
	tc.StartService(ServiceLimits{MaxVerifyAttempts: maxAttempts, MaxSends: maxSends})
}

func (tc *TestContext) StartDefaultService() {
	tc.StartService(defaultLimits)
}
