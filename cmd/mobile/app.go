package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"mobileauth/internal/assistant"
	"mobileauth/internal/auth/flow"
	"mobileauth/internal/auth/state"
	"mobileauth/internal/navigation"
)

const helpText = `commands:
  send <email>        request a sign-in code
  verify <code>       verify the code sent to the pending email
  different           use a different email
  tab <name>          show home, live, history or profile
  chat <message>      talk to the assistant (home or profile tab)
  signout             sign out
  help                show this help
  quit                exit`

// app renders the current screen to out and routes typed commands to the
// sign-in flow, the navigator and the assistant.
type app struct {
	flow      *flow.Flow
	navigator *navigation.Navigator
	chat      *assistant.Conversation
	out       io.Writer
	tab       navigation.Tab

	unsubscribe func()
}

func newApp(f *flow.Flow, m *state.Machine, out io.Writer) *app {
	a := &app{
		flow:      f,
		navigator: navigation.New(m),
		chat:      assistant.NewConversation(),
		out:       out,
		tab:       navigation.TabHome,
	}
	last := navigation.ViewFor(m.Snapshot())
	a.unsubscribe = m.Subscribe(func(snap state.Snapshot) {
		view := navigation.ViewFor(snap)
		if view.Root != last.Root || view.Screen != last.Screen {
			last = view
			if view.Root == navigation.RootMainTabs {
				a.tab = navigation.TabHome
			}
			a.render(view)
		}
	})
	return a
}

func (a *app) Close() {
	a.unsubscribe()
}

// Run reads commands until EOF, "quit" or ctx is done. A cancelled ctx ends
// Run even while in is blocked.
func (a *app) Run(ctx context.Context, in io.Reader) error {
	a.render(a.navigator.Current())

	lines, scanErr := scanLines(ctx, in)
	for {
		fmt.Fprint(a.out, "> ")
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if ctx.Err() != nil {
				return nil
			}
			cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
			if done := a.handle(ctx, strings.ToLower(cmd), strings.TrimSpace(arg)); done {
				return nil
			}
		}
	}
}

// scanLines feeds lines from in until EOF or ctx is done. The scanner error,
// if any, is sent before lines is closed.
func scanLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errs <- scanner.Err()
	}()
	return lines, errs
}

func (a *app) handle(ctx context.Context, cmd, arg string) bool {
	view := a.navigator.Current()
	switch cmd {
	case "":
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(a.out, helpText)
	case "send":
		if view.Root != navigation.RootAuth {
			a.println("Already signed in.")
			return false
		}
		a.printResult(a.flow.SendCode(ctx, arg))
	case "verify":
		pending, ok := a.flow.PendingEmail()
		if !ok {
			a.println("Request a code first.")
			return false
		}
		a.printResult(a.flow.VerifyCode(ctx, pending, arg))
	case "different":
		a.flow.UseDifferentEmail()
	case "signout":
		a.flow.SignOut()
	case "tab":
		a.selectTab(view, arg)
	case "chat":
		a.sendChat(view, arg)
	default:
		a.println(fmt.Sprintf("Unknown command %q. Type help.", cmd))
	}
	return false
}

func (a *app) selectTab(view navigation.View, name string) {
	if view.Root != navigation.RootMainTabs {
		a.println("Sign in to see the tabs.")
		return
	}
	tab, err := navigation.ParseTab(name)
	if err != nil {
		a.println(err.Error())
		return
	}
	a.tab = tab
	a.renderTab()
}

func (a *app) sendChat(view navigation.View, text string) {
	if view.Root != navigation.RootMainTabs || !hasAssistant(a.tab) {
		a.println("The assistant lives on the home and profile tabs.")
		return
	}
	sent, err := a.chat.Send(text)
	if err != nil {
		a.println(err.Error())
		return
	}
	if !sent {
		return
	}
	msgs := a.chat.Messages()
	a.println("assistant: " + msgs[len(msgs)-1].Text)
}

func (a *app) printResult(n flow.Notice, err error) {
	if err != nil {
		a.println("error: " + err.Error())
		return
	}
	a.println(string(n.Variant) + ": " + n.Text)
}

func (a *app) render(view navigation.View) {
	switch {
	case view.Root == navigation.RootMainTabs:
		a.renderTab()
	case view.Screen == navigation.ScreenVerifyCode:
		a.println("== Verify code ==")
		a.println("Enter the 6-digit code sent to " + view.PrefillEmail + ".")
	default:
		a.println("== Sign in ==")
		a.println("Enter your email to receive a sign-in code.")
	}
}

func (a *app) renderTab() {
	h := a.tab.Header()
	a.println("== " + h.Title + " ==")
	a.println(h.Subtitle)
	if hasAssistant(a.tab) {
		for _, msg := range a.chat.Messages() {
			a.println(string(msg.Role) + ": " + msg.Text)
		}
	}
}

func hasAssistant(tab navigation.Tab) bool {
	return tab == navigation.TabHome || tab == navigation.TabProfile
}

func (a *app) println(s string) {
	fmt.Fprintln(a.out, s)
}
