// Package navigation decides which screen tree is shown for the current auth
// state: the sign-in stack or the main tabs.
package navigation

import (
	"fmt"
	"strings"

	"mobileauth/internal/auth/state"
)

// Root is the top-level branch of the screen tree.
type Root string

const (
	RootAuth     Root = "auth"
	RootMainTabs Root = "main_tabs"
)

// Screen is a screen of the sign-in stack.
type Screen string

const (
	ScreenNone       Screen = ""
	ScreenSendCode   Screen = "send_code"
	ScreenVerifyCode Screen = "verify_code"
)

// Tab is one of the main tabs shown once signed in.
type Tab string

const (
	TabHome    Tab = "home"
	TabLive    Tab = "live"
	TabHistory Tab = "history"
	TabProfile Tab = "profile"
)

// Tabs lists the main tabs in display order.
var Tabs = []Tab{TabHome, TabLive, TabHistory, TabProfile}

// Header is the title block rendered above a tab.
type Header struct {
	Title    string
	Subtitle string
}

var headers = map[Tab]Header{
	TabHome:    {Title: "Home", Subtitle: "E2E Experience overview"},
	TabLive:    {Title: "Live Sessions", Subtitle: "Coming soon"},
	TabHistory: {Title: "History", Subtitle: "Recent sessions & recaps"},
	TabProfile: {Title: "Profile", Subtitle: "Account & preferences"},
}

func (t Tab) Header() Header {
	return headers[t]
}

func (t Tab) String() string {
	return string(t)
}

// ParseTab resolves a tab by name, ignoring case and surrounding space.
func ParseTab(name string) (Tab, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, tab := range Tabs {
		if string(tab) == want {
			return tab, nil
		}
	}
	return "", fmt.Errorf("unknown tab %q", name)
}

// View is what the app shows for one auth snapshot.
type View struct {
	Root   Root
	Screen Screen
	Tabs   []Tab
	// PrefillEmail is the pending address for the verify-code screen.
	PrefillEmail string
}

// StateReader exposes the auth state the navigator branches on.
type StateReader interface {
	Snapshot() state.Snapshot
}

type Navigator struct {
	reader StateReader
}

func New(reader StateReader) *Navigator {
	return &Navigator{reader: reader}
}

// Current returns the view for the present auth state.
func (n *Navigator) Current() View {
	return ViewFor(n.reader.Snapshot())
}

// ViewFor maps a snapshot to a view.
func ViewFor(snap state.Snapshot) View {
	if snap.IsAuthenticated() {
		tabs := make([]Tab, len(Tabs))
		copy(tabs, Tabs)
		return View{Root: RootMainTabs, Tabs: tabs}
	}
	if snap.Status == state.AwaitingVerification && snap.Pending != nil {
		return View{Root: RootAuth, Screen: ScreenVerifyCode, PrefillEmail: snap.Pending.Email}
	}
	return View{Root: RootAuth, Screen: ScreenSendCode}
}
