package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/cucumber/godog"

	"mobileauth/internal/auth/flow"
	"mobileauth/internal/auth/state"
	"mobileauth/internal/devserver"
	"mobileauth/internal/navigation"
	dErrors "mobileauth/pkg/domain-errors"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Flow() *flow.Flow
	Machine() *state.Machine
	View() navigation.View
	LastCode(address string) (string, bool)
	CodesSent() int
	SetOutcome(n flow.Notice, err error)
	GetOutcome() (flow.Notice, error)
	GetBaseURL() string
	GetHTTPClient() *http.Client
}

// concurrentResult holds the result of a concurrent HTTP request
type concurrentResult struct {
	status int
	body   []byte
	err    error
}

// RegisterSteps registers sign-in step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &authSteps{tc: tc}

	// App steps
	ctx.Step(`^I request a sign-in code for "([^"]*)"$`, steps.requestCode)
	ctx.Step(`^I enter the emailed code$`, steps.enterEmailedCode)
	ctx.Step(`^I enter the code "([^"]*)"$`, steps.enterCode)
	ctx.Step(`^I enter a wrong code (\d+) times?$`, steps.enterWrongCodeTimes)
	ctx.Step(`^I choose to use a different email$`, steps.useDifferentEmail)
	ctx.Step(`^I sign out$`, steps.signOut)

	// App assertion steps
	ctx.Step(`^I should see the "([^"]*)" notice "([^"]*)"$`, steps.shouldSeeNotice)
	ctx.Step(`^I should see the error "([^"]*)"$`, steps.shouldSeeError)
	ctx.Step(`^the error should be classified as "([^"]*)"$`, steps.errorShouldBeClassifiedAs)
	ctx.Step(`^the app should show the "([^"]*)" screen$`, steps.appShouldShowScreen)
	ctx.Step(`^the verify screen should be prefilled with "([^"]*)"$`, steps.verifyScreenPrefilled)
	ctx.Step(`^the app should show the tabs "([^"]*)"$`, steps.appShouldShowTabs)
	ctx.Step(`^I should be signed in as "([^"]*)"$`, steps.shouldBeSignedInAs)
	ctx.Step(`^I should not be signed in$`, steps.shouldNotBeSignedIn)
	ctx.Step(`^(\d+) codes? should have been emailed$`, steps.codesShouldHaveBeenEmailed)

	// Concurrent verification steps
	ctx.Step(`^I submit two concurrent verifications of the emailed code for "([^"]*)"$`, steps.submitConcurrentVerifications)
	ctx.Step(`^exactly one verification should succeed$`, steps.exactlyOneVerificationShouldSucceed)
	ctx.Step(`^the other verification should fail with code "([^"]*)"$`, steps.otherVerificationShouldFailWith)
}

type authSteps struct {
	tc                TestContext
	concurrentResults []concurrentResult
}

func (s *authSteps) requestCode(ctx context.Context, address string) error {
	s.tc.SetOutcome(s.tc.Flow().SendCode(ctx, address))
	return nil
}

func (s *authSteps) enterEmailedCode(ctx context.Context) error {
	pending, ok := s.tc.Flow().PendingEmail()
	if !ok {
		return fmt.Errorf("no pending verification")
	}
	code, ok := s.tc.LastCode(pending)
	if !ok {
		return fmt.Errorf("no code was emailed to %s", pending)
	}
	return s.enterCode(ctx, code)
}

func (s *authSteps) enterCode(ctx context.Context, code string) error {
	pending, _ := s.tc.Flow().PendingEmail()
	s.tc.SetOutcome(s.tc.Flow().VerifyCode(ctx, pending, code))
	return nil
}

func (s *authSteps) enterWrongCodeTimes(ctx context.Context, times int) error {
	pending, ok := s.tc.Flow().PendingEmail()
	if !ok {
		return fmt.Errorf("no pending verification")
	}
	code, ok := s.tc.LastCode(pending)
	if !ok {
		return fmt.Errorf("no code was emailed to %s", pending)
	}
	wrong := wrongCode(code)
	for range times {
		if err := s.enterCode(ctx, wrong); err != nil {
			return err
		}
	}
	return nil
}

// wrongCode returns a six digit code that differs from code.
func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}

func (s *authSteps) useDifferentEmail(ctx context.Context) error {
	s.tc.Flow().UseDifferentEmail()
	return nil
}

func (s *authSteps) signOut(ctx context.Context) error {
	s.tc.Flow().SignOut()
	return nil
}

func (s *authSteps) shouldSeeNotice(ctx context.Context, variant, text string) error {
	n, err := s.tc.GetOutcome()
	if err != nil {
		return fmt.Errorf("expected notice %q but got error: %v", text, err)
	}
	if string(n.Variant) != variant || n.Text != text {
		return fmt.Errorf("expected %s notice %q but got %s notice %q", variant, text, n.Variant, n.Text)
	}
	return nil
}

func (s *authSteps) shouldSeeError(ctx context.Context, message string) error {
	_, err := s.tc.GetOutcome()
	if err == nil {
		return fmt.Errorf("expected error %q but the step succeeded", message)
	}
	if err.Error() != message {
		return fmt.Errorf("expected error %q but got %q", message, err.Error())
	}
	return nil
}

func (s *authSteps) errorShouldBeClassifiedAs(ctx context.Context, code string) error {
	_, err := s.tc.GetOutcome()
	if !dErrors.HasCode(err, dErrors.Code(code)) {
		return fmt.Errorf("expected error code %s but got %v", code, err)
	}
	return nil
}

func (s *authSteps) appShouldShowScreen(ctx context.Context, screen string) error {
	view := s.tc.View()
	if view.Root != navigation.RootAuth || string(view.Screen) != screen {
		return fmt.Errorf("expected screen %s but got root %s screen %q", screen, view.Root, view.Screen)
	}
	return nil
}

func (s *authSteps) verifyScreenPrefilled(ctx context.Context, address string) error {
	if got := s.tc.View().PrefillEmail; got != address {
		return fmt.Errorf("expected verify screen prefilled with %q but got %q", address, got)
	}
	return nil
}

func (s *authSteps) appShouldShowTabs(ctx context.Context, names string) error {
	view := s.tc.View()
	if view.Root != navigation.RootMainTabs {
		return fmt.Errorf("expected main tabs but got root %s", view.Root)
	}
	got := make([]string, len(view.Tabs))
	for i, tab := range view.Tabs {
		got[i] = tab.String()
	}
	if strings.Join(got, ", ") != names {
		return fmt.Errorf("expected tabs %q but got %q", names, strings.Join(got, ", "))
	}
	return nil
}

func (s *authSteps) shouldBeSignedInAs(ctx context.Context, address string) error {
	session, ok := s.tc.Machine().Session()
	if !ok {
		return fmt.Errorf("expected a session but status is %s", s.tc.Machine().Status())
	}
	if session.Email() != address {
		return fmt.Errorf("expected session for %s but got %s", address, session.Email())
	}
	if session.Token.Token == "" {
		return errors.New("session token is empty")
	}
	return nil
}

func (s *authSteps) shouldNotBeSignedIn(ctx context.Context) error {
	if s.tc.Machine().IsAuthenticated() {
		return errors.New("expected to be signed out")
	}
	return nil
}

func (s *authSteps) codesShouldHaveBeenEmailed(ctx context.Context, n int) error {
	if got := s.tc.CodesSent(); got != n {
		return fmt.Errorf("expected %d emailed codes but got %d", n, got)
	}
	return nil
}

// submitConcurrentVerifications races two verify-code requests with the same
// emailed code.
func (s *authSteps) submitConcurrentVerifications(ctx context.Context, address string) error {
	code, ok := s.tc.LastCode(address)
	if !ok {
		return fmt.Errorf("no code was emailed to %s", address)
	}
	data, err := json.Marshal(map[string]string{"email": address, "code": code})
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	var wg sync.WaitGroup
	results := make([]concurrentResult, 2)
	for i := range results {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			req, err := http.NewRequestWithContext(ctx, http.MethodPost,
				s.tc.GetBaseURL()+devserver.PathVerifyCode, bytes.NewReader(data))
			if err != nil {
				results[idx] = concurrentResult{err: err}
				return
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := s.tc.GetHTTPClient().Do(req)
			if err != nil {
				results[idx] = concurrentResult{err: err}
				return
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			results[idx] = concurrentResult{status: resp.StatusCode, body: body, err: err}
		}(i)
	}
	wg.Wait()
	s.concurrentResults = results
	return nil
}

type envelope struct {
	OK    bool `json:"ok"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func (s *authSteps) exactlyOneVerificationShouldSucceed(ctx context.Context) error {
	successCount := 0
	for _, r := range s.concurrentResults {
		if r.err != nil {
			return r.err
		}
		var env envelope
		if err := json.Unmarshal(r.body, &env); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		if env.OK {
			successCount++
		}
	}
	if successCount != 1 {
		return fmt.Errorf("expected exactly 1 verification to succeed, got %d", successCount)
	}
	return nil
}

func (s *authSteps) otherVerificationShouldFailWith(ctx context.Context, code string) error {
	for _, r := range s.concurrentResults {
		var env envelope
		if err := json.Unmarshal(r.body, &env); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		if env.OK {
			continue
		}
		if env.Error == nil || env.Error.Code != code {
			return fmt.Errorf("expected failure code %s, got %s", code, string(r.body))
		}
		return nil
	}
	return errors.New("no verification failed")
}
