package tui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/vinyl-vault/internal/artwork"
	"github.com/handiism/vinyl-vault/internal/collection"
	"github.com/handiism/vinyl-vault/internal/model"
)

const (
	fieldTitle = iota
	fieldArtist
	fieldYear
	fieldGenre
	fieldCover
)

var fieldLabels = []string{"Title", "Artist", "Year", "Genre", "Cover URL"}

// albumForm mirrors collection.Form with one text input per field.
type albumForm struct {
	inputs    []textinput.Model
	focus     int
	pick      int
	saving    bool
	searching bool
	err       string
}

func newAlbumForm(in model.AlbumInput) albumForm {
	values := []string{in.Title, in.Artist, "", in.Genre, in.CoverImage}
	if in.Year > 0 {
		values[fieldYear] = strconv.Itoa(in.Year)
	}

	inputs := make([]textinput.Model, len(fieldLabels))
	for i, label := range fieldLabels {
		ti := textinput.New()
		ti.Placeholder = label
		ti.Prompt = fmt.Sprintf("%-10s ", label+":")
		ti.Width = 50
		ti.CharLimit = 512
		ti.SetValue(values[i])
		inputs[i] = ti
	}
	inputs[fieldYear].CharLimit = 4
	inputs[fieldTitle].Focus()

	return albumForm{inputs: inputs}
}

// input reads the fields back. A year that is not a number becomes 0 and
// fails validation.
func (f albumForm) input() model.AlbumInput {
	year, _ := strconv.Atoi(strings.TrimSpace(f.inputs[fieldYear].Value()))
	return model.AlbumInput{
		Title:      f.inputs[fieldTitle].Value(),
		Artist:     f.inputs[fieldArtist].Value(),
		Year:       year,
		Genre:      f.inputs[fieldGenre].Value(),
		CoverImage: f.inputs[fieldCover].Value(),
	}
}

func (f albumForm) setFocus(i int) albumForm {
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

// coverPreview is the cover art of the selected album.
type coverPreview struct {
	url     string
	loading bool
	image   image.Image
	err     error
}

// albumsScreen is the "My Collection" view.
type albumsScreen struct {
	ctl      *collection.Controller
	previews *artwork.Previewer

	cursor  int
	form    *albumForm
	pane    reviewPane
	preview coverPreview
}

func newAlbumsScreen(ctl *collection.Controller, previews *artwork.Previewer) albumsScreen {
	return albumsScreen{ctl: ctl, previews: previews, pane: newReviewPane(ctl.Reviews())}
}

func (s albumsScreen) capturing() bool {
	return s.form != nil || s.pane.capturing()
}

// enter loads the collection the first time the view is shown.
func (s albumsScreen) enter(ctx context.Context) (albumsScreen, tea.Cmd) {
	if state, _ := s.ctl.State(); state != collection.NotFetched {
		return s, nil
	}
	return s, s.load(ctx)
}

func (s albumsScreen) load(ctx context.Context) tea.Cmd {
	ctl := s.ctl
	return func() tea.Msg {
		return albumsLoadedMsg{Err: ctl.Load(ctx)}
	}
}

func (s albumsScreen) selected() (model.Album, bool) {
	albums := s.ctl.Albums()
	if s.cursor < 0 || s.cursor >= len(albums) {
		return model.Album{}, false
	}
	return albums[s.cursor], true
}

func (s albumsScreen) clamp() albumsScreen {
	n := len(s.ctl.Albums())
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
	return s
}

func (s albumsScreen) update(ctx context.Context, msg tea.KeyMsg) (albumsScreen, tea.Cmd) {
	if s.form != nil {
		return s.updateForm(ctx, msg)
	}

	pane, cmd, handled := s.pane.handleKey(ctx, msg, true)
	s.pane = pane
	if handled {
		return s, cmd
	}

	switch msg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.ctl.Albums())-1 {
			s.cursor++
		}
	case "r":
		return s, s.load(ctx)
	case "enter":
		if album, ok := s.selected(); ok {
			s.pane, cmd = s.pane.toggle(ctx, album.ID)
			return s, cmd
		}
	case "n":
		s.ctl.OpenCreate()
		f := newAlbumForm(model.AlbumInput{})
		s.form = &f
		return s, textinput.Blink
	case "e":
		album, ok := s.selected()
		if !ok {
			return s, nil
		}
		if err := s.ctl.OpenEdit(album.ID); err != nil {
			return s, notify(collection.LevelWarning, err.Error())
		}
		form, _ := s.ctl.Form()
		f := newAlbumForm(form.Input)
		s.form = &f
		return s, textinput.Blink
	case "d":
		album, ok := s.selected()
		if !ok {
			return s, nil
		}
		if _, err := s.ctl.RequestDelete(album.ID); err != nil {
			return s, notify(collection.LevelWarning, err.Error())
		}
		ctl := s.ctl
		return s, send(confirmMsg{
			Title: "Delete album",
			Body:  fmt.Sprintf("Are you sure you want to delete %q?", album.Title),
			OnConfirm: func() tea.Msg {
				return albumDeletedMsg{Album: album, Err: ctl.ConfirmDelete(ctx)}
			},
			OnCancel: ctl.CancelDelete,
		})
	case "p":
		album, ok := s.selected()
		if !ok || !album.HasCover() {
			return s, notify(collection.LevelInfo, "This album has no cover image")
		}
		if s.preview.url == album.CoverImage && !s.preview.loading {
			s.preview = coverPreview{}
			return s, nil
		}
		s.preview = coverPreview{url: album.CoverImage, loading: true}
		return s, loadPreview(ctx, s.previews, album.CoverImage)
	}
	return s, nil
}

func loadPreview(ctx context.Context, previews *artwork.Previewer, url string) tea.Cmd {
	return func() tea.Msg {
		img, err := previews.Thumbnail(ctx, url, coverCols, coverRows*2)
		return previewMsg{URL: url, Image: img, Err: err}
	}
}

func (s albumsScreen) updateForm(ctx context.Context, msg tea.KeyMsg) (albumsScreen, tea.Cmd) {
	f := *s.form
	if f.saving {
		return s, nil
	}

	switch msg.String() {
	case "esc":
		s.ctl.CloseForm()
		s.form = nil
		return s, nil
	case "tab", "down":
		f = f.setFocus(f.focus + 1)
		s.form = &f
		return s, nil
	case "shift+tab", "up":
		f = f.setFocus(f.focus - 1)
		s.form = &f
		return s, nil
	case "ctrl+s":
		if err := s.ctl.SetForm(f.input()); err != nil {
			return s, notify(collection.LevelError, err.Error())
		}
		f.saving = true
		f.err = ""
		s.form = &f
		ctl := s.ctl
		title := strings.TrimSpace(f.input().Title)
		return s, func() tea.Msg {
			return albumSavedMsg{Title: title, Err: ctl.Submit(ctx)}
		}
	case "ctrl+f":
		if err := s.ctl.SetForm(f.input()); err != nil {
			return s, notify(collection.LevelError, err.Error())
		}
		f.searching = true
		f.err = ""
		f.pick = 0
		s.form = &f
		ctl := s.ctl
		return s, func() tea.Msg {
			candidates, err := ctl.SuggestArtwork(ctx)
			return artworkMsg{Candidates: candidates, Err: err}
		}
	case "ctrl+n":
		if n := len(s.suggestions()); f.pick < n-1 {
			f.pick++
		}
		s.form = &f
		return s, nil
	case "ctrl+p":
		if f.pick > 0 {
			f.pick--
		}
		s.form = &f
		return s, nil
	case "ctrl+o":
		suggestions := s.suggestions()
		if f.pick >= len(suggestions) {
			return s, nil
		}
		if err := s.ctl.ApplyArtwork(suggestions[f.pick]); err != nil {
			return s, notify(collection.LevelError, err.Error())
		}
		f.inputs[fieldCover].SetValue(suggestions[f.pick].ArtworkURL)
		s.form = &f
		return s, notify(collection.LevelSuccess, "Cover image set")
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	s.form = &f
	return s, cmd
}

func (s albumsScreen) suggestions() []model.ArtworkCandidate {
	form, ok := s.ctl.Form()
	if !ok {
		return nil
	}
	return form.Suggestions
}

// handleResult applies an async result that belongs to this view.
func (s albumsScreen) handleResult(msg tea.Msg) (albumsScreen, tea.Cmd) {
	switch msg := msg.(type) {
	case albumsLoadedMsg:
		s = s.clamp()
		if msg.Err != nil {
			return s, notify(collection.LevelError, "Failed to load albums: "+msg.Err.Error())
		}

	case albumSavedMsg:
		if s.form == nil {
			return s, nil
		}
		if msg.Err != nil {
			f := *s.form
			f.saving = false
			f.err = msg.Err.Error()
			s.form = &f
			if errors.Is(msg.Err, model.ErrValidation) {
				return s, nil
			}
			return s, send(alertMsg{Title: "Error", Body: "Error saving album: " + msg.Err.Error()})
		}
		s.form = nil
		s = s.clamp()
		return s, notify(collection.LevelSuccess, fmt.Sprintf("Saved %q", msg.Title))

	case albumDeletedMsg:
		if msg.Err != nil {
			return s, send(alertMsg{Title: "Error", Body: "Error deleting album: " + msg.Err.Error()})
		}
		if s.preview.url == msg.Album.CoverImage {
			s.preview = coverPreview{}
		}
		s = s.clamp()
		return s, notify(collection.LevelSuccess, fmt.Sprintf("Deleted %q", msg.Album.Title))

	case artworkMsg:
		if s.form == nil {
			return s, nil
		}
		f := *s.form
		f.searching = false
		switch {
		case errors.Is(msg.Err, collection.ErrArtworkNeedsFields):
			f.err = "Enter an artist and a title to search for artwork"
		case msg.Err != nil:
			f.err = msg.Err.Error()
		case len(msg.Candidates) == 0:
			f.err = "No artwork found"
		}
		s.form = &f

	case previewMsg:
		if msg.URL != s.preview.url {
			return s, nil
		}
		s.preview = coverPreview{url: msg.URL, image: msg.Image, err: msg.Err}
	}
	return s, nil
}

func (s albumsScreen) view(spin string) string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render("My Collection") + "\n\n")

	if s.form != nil {
		b.WriteString(s.viewForm(spin))
		return b.String()
	}

	state, err := s.ctl.State()
	albums := s.ctl.Albums()
	switch {
	case state == collection.Loading && len(albums) == 0:
		b.WriteString(spin + " " + infoStyle.Render("Loading albums..."))
		return b.String()
	case state == collection.Failed:
		b.WriteString(errorStyle.Render("✗ "+err.Error()) + "\n")
		b.WriteString(dimStyle.Render("r: retry"))
		return b.String()
	case len(albums) == 0:
		b.WriteString(dimStyle.Render("No albums yet. Press n to add one."))
		return b.String()
	}

	for i, a := range albums {
		line := fmt.Sprintf("%s - %s", a.Title, a.Artist)
		if a.Year > 0 {
			line += fmt.Sprintf(" (%d)", a.Year)
		}
		if a.Genre != "" {
			line += dimStyle.Render(" · " + a.Genre)
		}
		if i == s.cursor {
			b.WriteString(selectedStyle.Render("› "+line) + "\n")
		} else {
			b.WriteString("  " + albumStyle.Render(line) + "\n")
		}
		b.WriteString(s.pane.view(a.ID, true))
	}

	if s.preview.url != "" {
		b.WriteString("\n")
		switch {
		case s.preview.loading:
			b.WriteString(spin + " " + infoStyle.Render("Loading cover..."))
		case s.preview.err != nil:
			b.WriteString(errorStyle.Render("✗ Cover unavailable: " + s.preview.err.Error()))
		default:
			b.WriteString(renderCover(s.preview.image))
		}
	}
	return b.String()
}

func (s albumsScreen) viewForm(spin string) string {
	f := *s.form
	var b strings.Builder

	heading := "Add Album"
	if form, ok := s.ctl.Form(); ok && form.Mode == collection.FormEdit {
		heading = "Edit Album"
	}
	b.WriteString(titleStyle.Render(heading) + "\n")
	for _, in := range f.inputs {
		b.WriteString(in.View() + "\n")
	}

	suggestions := s.suggestions()
	if f.searching {
		b.WriteString("\n" + spin + " " + infoStyle.Render("Searching artwork..."))
	} else if len(suggestions) > 0 {
		b.WriteString("\n" + subtitleStyle.Render("Artwork suggestions") + "\n")
		for i, c := range suggestions {
			line := fmt.Sprintf("%s - %s", c.AlbumName, c.ArtistName)
			if c.ReleaseYear > 0 {
				line += fmt.Sprintf(" (%d)", c.ReleaseYear)
			}
			if i == f.pick {
				b.WriteString(selectedStyle.Render("› "+line) + "\n")
			} else {
				b.WriteString(dimStyle.Render("  "+line) + "\n")
			}
		}
	}
	if f.saving {
		b.WriteString("\n" + spin + " " + infoStyle.Render("Saving..."))
	}
	if f.err != "" {
		b.WriteString("\n" + errorStyle.Render("✗ "+f.err))
	}
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}
