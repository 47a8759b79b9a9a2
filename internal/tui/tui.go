package tui

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/vinyl-vault/internal/app"
	"github.com/handiism/vinyl-vault/internal/collection"
	"github.com/handiism/vinyl-vault/internal/config"
	"github.com/handiism/vinyl-vault/internal/route"
)

const prefetchConcurrency = 4

// prefetchRun counts finished albums while reviews are prefetched.
type prefetchRun struct {
	total    int
	finished atomic.Int32
	failed   atomic.Int32
}

func (r *prefetchRun) percent() float64 {
	if r.total == 0 {
		return 1
	}
	return float64(r.finished.Load()) / float64(r.total)
}

type (
	// tickMsg drives the prefetch progress bar.
	tickMsg struct{}

	// prefetchDoneMsg is sent when every album's reviews have been fetched.
	prefetchDoneMsg struct {
		Total  int
		Failed int
		Err    error
	}
)

// Model is the TUI state.
type Model struct {
	app    *app.App
	guard  *route.Guard
	ctx    context.Context
	cancel context.CancelFunc

	view      route.View
	spinner   spinner.Model
	progress  progress.Model
	prefetch  *prefetchRun
	pathInput textinput.Model
	pathOpen  bool

	auth      authForm
	albums    albumsScreen
	community communityScreen

	modal   *modal
	notices []collection.ProgressEvent

	width  int
	height int
}

// NewModel creates a Model on the home page. The session is hydrated by Init.
func NewModel(ctx context.Context, a *app.App) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	path := textinput.New()
	path.Prompt = ": "
	path.Placeholder = "/community"
	path.CharLimit = 200
	path.Width = 40

	ctx, cancel := context.WithCancel(ctx)
	guard := route.NewGuard(a.Session, route.PathHome)

	return Model{
		app:       a,
		guard:     guard,
		ctx:       ctx,
		cancel:    cancel,
		view:      guard.Current().View,
		spinner:   sp,
		progress:  prog,
		pathInput: path,
		auth:      newAuthForm(false),
		albums:    newAlbumsScreen(a.Collection, a.Previews),
		community: newCommunityScreen(a.Community),
	}
}

// Init restores the stored session.
func (m Model) Init() tea.Cmd {
	a, ctx := m.app, m.ctx
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return hydratedMsg{Err: a.Hydrate(ctx)}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 10), 60)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd

	case tickMsg:
		if m.prefetch == nil {
			return m, nil
		}
		return m, tea.Batch(m.progress.SetPercent(m.prefetch.percent()), tickPrefetch())

	case prefetchDoneMsg:
		m.prefetch = nil
		switch {
		case msg.Err != nil:
			m.notices = pushNotice(m.notices, collection.ProgressEvent{Message: "Prefetch stopped: " + msg.Err.Error(), Level: collection.LevelError})
		case msg.Failed > 0:
			m.notices = pushNotice(m.notices, collection.ProgressEvent{Message: fmt.Sprintf("Reviews loaded for %d/%d albums", msg.Total-msg.Failed, msg.Total), Level: collection.LevelWarning})
		default:
			m.notices = pushNotice(m.notices, collection.ProgressEvent{Message: fmt.Sprintf("Reviews loaded for %d albums", msg.Total), Level: collection.LevelSuccess})
		}
		return m, m.progress.SetPercent(0)

	case hydratedMsg:
		if msg.Err != nil {
			m.notices = pushNotice(m.notices, collection.ProgressEvent{Message: "Could not restore session: " + msg.Err.Error(), Level: collection.LevelError})
		}
		return m.syncRoute()

	case authDoneMsg:
		m.auth.submitting = false
		if msg.Err != nil {
			m.auth.err = msg.Err.Error()
			return m, nil
		}
		if user, ok := m.app.Session.CurrentUser(); ok {
			m.notices = pushNotice(m.notices, collection.ProgressEvent{Message: "Signed in as " + user.Username, Level: collection.LevelSuccess})
		}
		return m.navigate(route.PathAlbums)

	case signedOutMsg:
		m.albums = newAlbumsScreen(m.app.Collection, m.app.Previews)
		m.community.pane = newReviewPane(m.app.Community.Reviews())
		m.notices = pushNotice(m.notices, collection.ProgressEvent{Message: "Signed out", Level: collection.LevelInfo})
		return m.navigate(route.PathHome)

	case albumsLoadedMsg, albumSavedMsg, albumDeletedMsg, artworkMsg, previewMsg:
		m.albums, cmd = m.albums.handleResult(msg)
		return m, cmd

	case communityLoadedMsg:
		m.community, cmd = m.community.handleResult(msg)
		return m, cmd

	case reviewsLoadedMsg:
		if msg.Err != nil {
			m.notices = pushNotice(m.notices, collection.ProgressEvent{Message: "Failed to load reviews: " + msg.Err.Error(), Level: collection.LevelError})
		}
		return m, nil

	case reviewSavedMsg:
		var cmd2 tea.Cmd
		m.albums.pane, cmd = m.albums.pane.saved(msg)
		m.community.pane, cmd2 = m.community.pane.saved(msg)
		return m, tea.Batch(cmd, cmd2)

	case reviewDeletedMsg:
		if msg.Err != nil {
			m.modal = &modal{title: "Error", body: "Error deleting review: " + msg.Err.Error()}
			return m, nil
		}
		m.notices = pushNotice(m.notices, collection.ProgressEvent{Message: "Review deleted", Level: collection.LevelSuccess})
		return m, nil

	case noticeMsg:
		m.notices = pushNotice(m.notices, msg.Event)
		return m, nil

	case confirmMsg:
		m.modal = &modal{title: msg.Title, body: msg.Body, confirm: true, onConfirm: msg.OnConfirm, onCancel: msg.OnCancel}
		return m, nil

	case alertMsg:
		m.modal = &modal{title: msg.Title, body: msg.Body}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.cancel()
		return m, tea.Quit
	}

	if m.modal != nil {
		var cmd tea.Cmd
		m.modal, cmd = m.modal.handleKey(msg)
		return m, cmd
	}

	if m.pathOpen {
		switch msg.String() {
		case "esc":
			m.pathOpen = false
			m.pathInput.Blur()
			return m, nil
		case "enter":
			m.pathOpen = false
			m.pathInput.Blur()
			path := m.pathInput.Value()
			m.pathInput.SetValue("")
			return m.navigate(path)
		}
		var cmd tea.Cmd
		m.pathInput, cmd = m.pathInput.Update(msg)
		return m, cmd
	}

	if m.capturing() {
		if msg.String() == "esc" && (m.view == route.ViewSignIn || m.view == route.ViewSignUp) {
			return m.navigate(route.PathHome)
		}
		return m.updateScreen(msg)
	}

	snap := m.app.Session.Snapshot()
	switch msg.String() {
	case "q":
		m.cancel()
		return m, tea.Quit
	case "h":
		return m.navigate(route.PathHome)
	case "c":
		return m.navigate(route.PathCommunity)
	case "a":
		return m.navigate(route.PathAlbums)
	case "i":
		return m.navigate(route.PathSignIn)
	case "u":
		return m.navigate(route.PathSignUp)
	case "o":
		if !snap.Authenticated() {
			return m, nil
		}
		a, ctx := m.app, m.ctx
		return m, func() tea.Msg {
			a.SignOut(ctx)
			return signedOutMsg{}
		}
	case ":":
		m.pathOpen = true
		m.pathInput.Focus()
		return m, textinput.Blink
	case "R":
		if m.view == route.ViewAlbums {
			return m.startPrefetch()
		}
	}

	return m.updateScreen(msg)
}

// capturing reports whether the current screen has a focused text field.
func (m Model) capturing() bool {
	switch m.view {
	case route.ViewSignIn, route.ViewSignUp:
		return true
	case route.ViewAlbums:
		return m.albums.capturing()
	case route.ViewCommunity:
		return m.community.capturing()
	}
	return false
}

func (m Model) updateScreen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case route.ViewSignIn, route.ViewSignUp:
		m.auth, cmd = m.auth.update(m.ctx, msg, m.app.Session)
	case route.ViewAlbums:
		m.albums, cmd = m.albums.update(m.ctx, msg)
	case route.ViewCommunity:
		m.community, cmd = m.community.update(m.ctx, msg, m.app.Session.Snapshot().Authenticated())
	}
	return m, cmd
}

// navigate moves to path through the route guard.
func (m Model) navigate(path string) (Model, tea.Cmd) {
	return m.show(m.guard.Navigate(path))
}

// syncRoute re-reads the guard's decision after the session changed.
func (m Model) syncRoute() (Model, tea.Cmd) {
	return m.show(m.guard.Current())
}

func (m Model) show(d route.Decision) (Model, tea.Cmd) {
	if d.Redirect != "" && d.View == route.ViewSignIn && m.view != route.ViewSignIn {
		m.notices = pushNotice(m.notices, collection.ProgressEvent{Message: "Sign in to see your collection", Level: collection.LevelInfo})
	}
	if d.View == m.view {
		return m, nil
	}
	m.view = d.View

	var cmd tea.Cmd
	switch d.View {
	case route.ViewSignIn:
		m.auth = newAuthForm(false)
		cmd = textinput.Blink
	case route.ViewSignUp:
		m.auth = newAuthForm(true)
		cmd = textinput.Blink
	case route.ViewAlbums:
		m.albums, cmd = m.albums.enter(m.ctx)
	case route.ViewCommunity:
		m.community, cmd = m.community.enter(m.ctx)
	}
	return m, cmd
}

func (m Model) startPrefetch() (tea.Model, tea.Cmd) {
	if m.prefetch != nil {
		return m, nil
	}
	albums := m.app.Collection.Albums()
	if len(albums) == 0 {
		return m, notify(collection.LevelInfo, "No albums to fetch reviews for")
	}

	run := &prefetchRun{total: len(albums)}
	m.prefetch = run
	ctl, ctx := m.app.Collection, m.ctx
	return m, tea.Batch(tickPrefetch(), func() tea.Msg {
		err := ctl.PrefetchReviews(ctx, prefetchConcurrency, func(ev collection.ProgressEvent) {
			switch ev.Level {
			case collection.LevelWarning:
				run.failed.Add(1)
				run.finished.Add(1)
			case collection.LevelSuccess:
				run.finished.Add(1)
			}
		})
		return prefetchDoneMsg{Total: run.total, Failed: int(run.failed.Load()), Err: err}
	})
}

func tickPrefetch() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return tickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder
	snap := m.app.Session.Snapshot()

	// Header
	b.WriteString(renderHeader(snap, m.view))
	b.WriteString("\n\n")

	if m.modal != nil {
		b.WriteString(m.modal.view())
	} else {
		b.WriteString(m.viewBody(snap.Authenticated()))
	}
	b.WriteString("\n")

	if m.prefetch != nil {
		b.WriteString("\n" + infoStyle.Render(fmt.Sprintf("Fetching reviews %d/%d", m.prefetch.finished.Load(), m.prefetch.total)) + "\n")
		b.WriteString(m.progress.View() + "\n")
	}

	if len(m.notices) > 0 {
		b.WriteString("\n" + renderNotices(m.notices) + "\n")
	}

	// Footer
	b.WriteString("\n")
	if m.pathOpen {
		b.WriteString(m.pathInput.View())
	} else {
		b.WriteString(dimStyle.Render(m.getHelpText()))
	}

	return b.String()
}

func (m Model) viewBody(signedIn bool) string {
	spin := m.spinner.View()
	switch m.view {
	case route.ViewHome:
		return titleStyle.Render("Welcome to Vinyl Vault!") + "\n" +
			"Please use the navigation bar to Sign In or Sign Up or view your album collection."
	case route.ViewLoading:
		return spin + " " + infoStyle.Render("Loading user session...")
	case route.ViewSignIn, route.ViewSignUp:
		return m.auth.view(spin)
	case route.ViewAlbums:
		return m.albums.view(spin)
	case route.ViewCommunity:
		return m.community.view(spin, signedIn)
	default:
		return errorStyle.Render("404 - Page not found") + "\n" +
			dimStyle.Render(fmt.Sprintf("Nothing lives at %s.", m.guard.Path()))
	}
}

func (m Model) getHelpText() string {
	if m.modal != nil {
		return ""
	}
	switch m.view {
	case route.ViewSignIn, route.ViewSignUp:
		return "tab: next field • enter: submit • esc: back"
	case route.ViewAlbums:
		switch {
		case m.albums.form != nil:
			return "tab: next field • ctrl+s: save • ctrl+f: find artwork • ctrl+n/ctrl+p: pick • ctrl+o: use cover • esc: cancel"
		case m.albums.pane.capturing():
			return "enter: post review • -/+: rating • esc: cancel"
		}
		return "n: new • e: edit • d: delete • enter: reviews • w: review • p: cover • r: reload • R: fetch all reviews • q: quit"
	case route.ViewCommunity:
		switch {
		case m.community.filtering:
			return "enter: done • esc: done"
		case m.community.pane.capturing():
			return "enter: post review • -/+: rating • esc: cancel"
		}
		return "/: filter • enter: reviews • w: review • J/K: select review • x: delete review • r: reload • q: quit"
	}
	return "h: home • c: community • a: my collection • i: sign in • u: sign up • o: sign out • :: go to path • q: quit"
}

// Run starts the TUI application with the settings at configPath.
func Run(ctx context.Context, configPath string) error {
	settings, err := config.Load(config.ResolvePath(configPath))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a, err := app.New(ctx, settings, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	m := NewModel(ctx, a)
	defer m.guard.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
