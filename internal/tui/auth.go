package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/vinyl-vault/internal/model"
	"github.com/handiism/vinyl-vault/internal/session"
)

// authForm is the sign-in and sign-up screen.
type authForm struct {
	signUp     bool
	inputs     []textinput.Model
	focus      int
	err        string
	submitting bool
}

func newAuthForm(signUp bool) authForm {
	username := textinput.New()
	username.Placeholder = "Username"
	username.CharLimit = 64
	username.Width = 30
	username.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.CharLimit = 128
	password.Width = 30
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return authForm{signUp: signUp, inputs: []textinput.Model{username, password}}
}

func (f authForm) title() string {
	if f.signUp {
		return "Sign Up"
	}
	return "Sign In"
}

func (f authForm) credentials() model.Credentials {
	return model.Credentials{
		Username: strings.TrimSpace(f.inputs[0].Value()),
		Password: f.inputs[1].Value(),
	}
}

func (f authForm) setFocus(i int) authForm {
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	for j := range f.inputs {
		if j == f.focus {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	return f
}

func (f authForm) update(ctx context.Context, msg tea.KeyMsg, sess *session.Store) (authForm, tea.Cmd) {
	if f.submitting {
		return f, nil
	}

	switch msg.String() {
	case "tab", "down":
		return f.setFocus(f.focus + 1), nil
	case "shift+tab", "up":
		return f.setFocus(f.focus - 1), nil
	case "enter":
		if f.focus < len(f.inputs)-1 {
			return f.setFocus(f.focus + 1), nil
		}
		creds := f.credentials()
		if err := model.Validate(creds); err != nil {
			f.err = err.Error()
			return f, nil
		}
		f.err = ""
		f.submitting = true
		signUp := f.signUp
		return f, func() tea.Msg {
			if signUp {
				return authDoneMsg{Err: sess.SignUp(ctx, creds)}
			}
			return authDoneMsg{Err: sess.SignIn(ctx, creds)}
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f authForm) view(spin string) string {
	var s strings.Builder
	s.WriteString(subtitleStyle.Render(f.title()) + "\n\n")
	for _, in := range f.inputs {
		s.WriteString(in.View() + "\n")
	}
	s.WriteString("\n")
	if f.submitting {
		s.WriteString(spin + " " + infoStyle.Render("Submitting...") + "\n")
	}
	if f.err != "" {
		s.WriteString(errorStyle.Render("✗ "+f.err) + "\n")
	}
	return boxStyle.Render(strings.TrimRight(s.String(), "\n"))
}
