package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/vinyl-vault/internal/collection"
	"github.com/handiism/vinyl-vault/internal/route"
	"github.com/handiism/vinyl-vault/internal/session"
)

const maxNotices = 5

// modal is a blocking dialog. Without OnConfirm it is a plain alert.
type modal struct {
	title     string
	body      string
	confirm   bool
	onConfirm tea.Cmd
	onCancel  func()
}

// handleKey returns the dialog that stays open (nil when it closed) and the
// command to run.
func (d *modal) handleKey(msg tea.KeyMsg) (*modal, tea.Cmd) {
	if !d.confirm {
		switch msg.String() {
		case "enter", "esc", "o", "q", " ":
			return nil, nil
		}
		return d, nil
	}

	switch msg.String() {
	case "y", "Y", "enter":
		return nil, d.onConfirm
	case "n", "N", "esc", "q":
		if d.onCancel != nil {
			d.onCancel()
		}
		return nil, nil
	}
	return d, nil
}

func (d *modal) view() string {
	var s strings.Builder
	s.WriteString(warningStyle.Bold(true).Render(d.title))
	s.WriteString("\n\n")
	s.WriteString(d.body)
	s.WriteString("\n\n")
	if d.confirm {
		s.WriteString(dimStyle.Render("y: confirm • n: cancel"))
	} else {
		s.WriteString(dimStyle.Render("enter: OK"))
	}
	return modalStyle.Render(s.String())
}

func pushNotice(notices []collection.ProgressEvent, ev collection.ProgressEvent) []collection.ProgressEvent {
	notices = append(notices, ev)
	if len(notices) > maxNotices {
		notices = notices[len(notices)-maxNotices:]
	}
	return notices
}

func renderNotices(notices []collection.ProgressEvent) string {
	var lines []string
	for _, ev := range notices {
		var styled string
		switch ev.Level {
		case collection.LevelError:
			styled = errorStyle.Render("✗ " + ev.Message)
		case collection.LevelWarning:
			styled = warningStyle.Render("! " + ev.Message)
		case collection.LevelSuccess:
			styled = successStyle.Render("✓ " + ev.Message)
		case collection.LevelVerbose:
			styled = dimStyle.Render("› " + ev.Message)
		default:
			styled = infoStyle.Render("• " + ev.Message)
		}
		lines = append(lines, styled)
	}
	return strings.Join(lines, "\n")
}

type navLink struct {
	key   string
	label string
	view  route.View
}

// renderHeader draws the navigation bar. The links depend on the session the
// same way the web header does.
func renderHeader(snap session.Snapshot, current route.View) string {
	links := []navLink{{"c", "Community", route.ViewCommunity}}
	switch {
	case snap.Loading:
	case snap.Authenticated():
		links = append(links, navLink{"a", "My Collection", route.ViewAlbums})
	default:
		links = append(links,
			navLink{"i", "Sign In", route.ViewSignIn},
			navLink{"u", "Sign Up", route.ViewSignUp},
		)
	}

	parts := []string{brandStyle.Render("🎵 VinylVault")}
	for _, l := range links {
		label := fmt.Sprintf("[%s] %s", l.key, l.label)
		if l.view == current {
			parts = append(parts, navActiveStyle.Render(label))
		} else {
			parts = append(parts, navStyle.Render(label))
		}
	}
	if snap.Authenticated() {
		parts = append(parts,
			albumStyle.Render(fmt.Sprintf("Hello, %s!", snap.User.Username)),
			navStyle.Render("[o] Sign Out"),
		)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(parts, "  "))
}
