package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/vinyl-vault/internal/collection"
	"github.com/handiism/vinyl-vault/internal/community"
	"github.com/handiism/vinyl-vault/internal/model"
)

// communityScreen lists every public album grouped by owner.
type communityScreen struct {
	ctl       *community.Controller
	filter    textinput.Model
	filtering bool
	cursor    int
	pane      reviewPane
}

func newCommunityScreen(ctl *community.Controller) communityScreen {
	ti := textinput.New()
	ti.Placeholder = "Filter by user, title or artist"
	ti.Prompt = "/ "
	ti.Width = 40
	return communityScreen{ctl: ctl, filter: ti, pane: newReviewPane(ctl.Reviews())}
}

func (s communityScreen) capturing() bool {
	return s.filtering || s.pane.capturing()
}

func (s communityScreen) enter(ctx context.Context) (communityScreen, tea.Cmd) {
	if loaded, loading, _ := s.ctl.Status(); loaded || loading {
		return s, nil
	}
	ctl := s.ctl
	return s, func() tea.Msg {
		return communityLoadedMsg{Err: ctl.Load(ctx)}
	}
}

// visible returns the filtered albums in display order.
func (s communityScreen) visible() []model.Album {
	var out []model.Album
	for _, g := range s.ctl.Groups() {
		out = append(out, g.Albums...)
	}
	return out
}

func (s communityScreen) clamp() communityScreen {
	n := len(s.visible())
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
	return s
}

func (s communityScreen) update(ctx context.Context, msg tea.KeyMsg, signedIn bool) (communityScreen, tea.Cmd) {
	if s.filtering {
		switch msg.String() {
		case "esc", "enter":
			s.filtering = false
			s.filter.Blur()
			return s, nil
		}
		var cmd tea.Cmd
		s.filter, cmd = s.filter.Update(msg)
		s.ctl.SetQuery(s.filter.Value())
		return s.clamp(), cmd
	}

	pane, cmd, handled := s.pane.handleKey(ctx, msg, signedIn)
	s.pane = pane
	if handled {
		return s, cmd
	}

	switch msg.String() {
	case "/":
		s.filtering = true
		s.filter.Focus()
		return s, textinput.Blink
	case "esc":
		if s.filter.Value() != "" {
			s.filter.SetValue("")
			s.ctl.SetQuery("")
			return s.clamp(), nil
		}
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.visible())-1 {
			s.cursor++
		}
	case "enter":
		albums := s.visible()
		if s.cursor < len(albums) {
			s.pane, cmd = s.pane.toggle(ctx, albums[s.cursor].ID)
			return s, cmd
		}
	case "r":
		ctl := s.ctl
		return s, func() tea.Msg {
			return communityLoadedMsg{Err: ctl.Reload(ctx)}
		}
	}
	return s, nil
}

func (s communityScreen) handleResult(msg communityLoadedMsg) (communityScreen, tea.Cmd) {
	s = s.clamp()
	if msg.Err != nil {
		return s, notify(collection.LevelError, "Failed to load community albums: "+msg.Err.Error())
	}
	return s, nil
}

func (s communityScreen) view(spin string, signedIn bool) string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render("Community Albums") + "\n\n")

	loaded, loading, err := s.ctl.Status()
	switch {
	case loading && !loaded:
		b.WriteString(spin + " " + infoStyle.Render("Loading albums..."))
		return b.String()
	case err != nil && !loaded:
		b.WriteString(errorStyle.Render("✗ "+err.Error()) + "\n")
		b.WriteString(dimStyle.Render("r: retry"))
		return b.String()
	}

	if s.filtering || s.filter.Value() != "" {
		b.WriteString(s.filter.View() + "\n\n")
	}

	groups := s.ctl.Groups()
	if len(groups) == 0 {
		if s.ctl.Query() != "" {
			b.WriteString(dimStyle.Render("No albums match your filter."))
		} else {
			b.WriteString(dimStyle.Render("No albums have been shared yet."))
		}
		return b.String()
	}

	i := 0
	for _, g := range groups {
		b.WriteString(infoStyle.Bold(true).Render(fmt.Sprintf("%s's albums", g.Owner)) + "\n")
		for _, a := range g.Albums {
			line := fmt.Sprintf("%s - %s", a.Title, a.Artist)
			if a.Year > 0 {
				line += fmt.Sprintf(" (%d)", a.Year)
			}
			if i == s.cursor {
				b.WriteString(selectedStyle.Render("› "+line) + "\n")
			} else {
				b.WriteString("  " + albumStyle.Render(line) + "\n")
			}
			b.WriteString(s.pane.view(a.ID, signedIn))
			i++
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
