package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/vinyl-vault/internal/collection"
	"github.com/handiism/vinyl-vault/internal/model"
	"github.com/handiism/vinyl-vault/internal/reviews"
)

// reviewForm is the inline "Add Review" form.
type reviewForm struct {
	albumID string
	content textinput.Model
	rating  int
	saving  bool
	err     string
}

// reviewPane shows the reviews of the expanded album. Both album views embed
// one, each with its own review book.
type reviewPane struct {
	book   *reviews.Book
	cursor int
	form   *reviewForm
}

func newReviewPane(book *reviews.Book) reviewPane {
	return reviewPane{book: book}
}

func (p reviewPane) capturing() bool {
	return p.form != nil
}

// toggle expands or collapses albumID, fetching its reviews the first time.
func (p reviewPane) toggle(ctx context.Context, albumID string) (reviewPane, tea.Cmd) {
	p.cursor = 0
	p.form = nil
	if !p.book.Toggle(albumID) {
		return p, nil
	}
	return p, fetchReviews(ctx, p.book, albumID)
}

func fetchReviews(ctx context.Context, book *reviews.Book, albumID string) tea.Cmd {
	return func() tea.Msg {
		_, err := book.Fetch(ctx, albumID)
		return reviewsLoadedMsg{AlbumID: albumID, Err: err}
	}
}

func (p reviewPane) openForm(signedIn bool) (reviewPane, tea.Cmd) {
	albumID := p.book.Expanded()
	if albumID == "" {
		return p, notify(collection.LevelWarning, "Expand an album to write a review")
	}
	if !signedIn {
		return p, notify(collection.LevelWarning, reviews.ErrNotSignedIn.Error())
	}

	ti := textinput.New()
	ti.Placeholder = "Your review"
	ti.CharLimit = 2000
	ti.Width = 50
	ti.Focus()
	p.form = &reviewForm{albumID: albumID, content: ti, rating: model.DefaultRating}
	return p, textinput.Blink
}

// handleKey processes a key for the pane. handled is false when the key is
// not the pane's.
func (p reviewPane) handleKey(ctx context.Context, msg tea.KeyMsg, signedIn bool) (reviewPane, tea.Cmd, bool) {
	if p.form != nil {
		p, cmd := p.updateForm(ctx, msg)
		return p, cmd, true
	}

	albumID := p.book.Expanded()
	list, _ := p.book.Reviews(albumID)

	switch msg.String() {
	case "w":
		p, cmd := p.openForm(signedIn)
		return p, cmd, true
	case "K":
		if p.cursor > 0 {
			p.cursor--
		}
		return p, nil, true
	case "J":
		if p.cursor < len(list)-1 {
			p.cursor++
		}
		return p, nil, true
	case "x":
		if albumID == "" || len(list) == 0 {
			return p, nil, true
		}
		if p.cursor >= len(list) {
			p.cursor = len(list) - 1
		}
		r, err := p.book.RequestDelete(albumID, list[p.cursor].ID)
		if err != nil {
			return p, notify(collection.LevelWarning, err.Error()), true
		}
		book := p.book
		return p, send(confirmMsg{
			Title: "Delete review",
			Body:  fmt.Sprintf("Delete the review by %s?", r.Reviewer.DisplayName()),
			OnConfirm: func() tea.Msg {
				return reviewDeletedMsg{Err: book.ConfirmDelete(ctx)}
			},
			OnCancel: book.CancelDelete,
		}), true
	}
	return p, nil, false
}

func (p reviewPane) updateForm(ctx context.Context, msg tea.KeyMsg) (reviewPane, tea.Cmd) {
	f := *p.form
	if f.saving {
		return p, nil
	}

	switch msg.String() {
	case "esc":
		p.form = nil
		return p, nil
	case "ctrl+left", "-":
		if f.rating > model.MinRating {
			f.rating--
		}
		p.form = &f
		return p, nil
	case "ctrl+right", "+", "=":
		if f.rating < model.MaxRating {
			f.rating++
		}
		p.form = &f
		return p, nil
	case "enter", "ctrl+s":
		in := model.ReviewInput{AlbumID: f.albumID, Content: f.content.Value(), Rating: f.rating}
		if err := model.Validate(in.Normalize()); err != nil {
			f.err = err.Error()
			p.form = &f
			return p, nil
		}
		f.saving = true
		f.err = ""
		p.form = &f
		book := p.book
		return p, func() tea.Msg {
			return reviewSavedMsg{AlbumID: in.AlbumID, Err: book.Create(ctx, in)}
		}
	}

	var cmd tea.Cmd
	f.content, cmd = f.content.Update(msg)
	p.form = &f
	return p, cmd
}

// saved handles the outcome of a review submission.
func (p reviewPane) saved(msg reviewSavedMsg) (reviewPane, tea.Cmd) {
	if p.form == nil || p.form.albumID != msg.AlbumID {
		return p, nil
	}
	if msg.Err != nil {
		f := *p.form
		f.saving = false
		f.err = msg.Err.Error()
		if errors.Is(msg.Err, reviews.ErrNotSignedIn) {
			p.form = nil
			return p, notify(collection.LevelWarning, msg.Err.Error())
		}
		p.form = &f
		return p, nil
	}
	p.form = nil
	return p, notify(collection.LevelSuccess, "Review added")
}

// view renders the pane under albumID, or nothing when another album is
// expanded.
func (p reviewPane) view(albumID string, signedIn bool) string {
	if p.book.Expanded() != albumID {
		return ""
	}

	var s strings.Builder
	list, fetched := p.book.Reviews(albumID)
	switch {
	case !fetched:
		s.WriteString(dimStyle.Render("    Loading reviews...") + "\n")
	case len(list) == 0:
		s.WriteString(dimStyle.Render("    No reviews yet.") + "\n")
	default:
		avg, _ := p.book.Average(albumID)
		s.WriteString(subtitleStyle.Render(fmt.Sprintf("    Reviews (%d) • average %.1f/10", len(list), avg)) + "\n")
		for i, r := range list {
			marker := "  "
			if i == p.cursor {
				marker = "› "
			}
			line := fmt.Sprintf("    %s%s %s: %s", marker, ratingBadge(r.Rating), r.Reviewer.DisplayName(), r.Content)
			if p.book.CanDelete(r) {
				line += dimStyle.Render("  (x: delete)")
			}
			if i == p.cursor {
				s.WriteString(selectedStyle.Render(line) + "\n")
			} else {
				s.WriteString(line + "\n")
			}
		}
	}

	if p.form != nil && p.form.albumID == albumID {
		s.WriteString("\n")
		s.WriteString(infoStyle.Render(fmt.Sprintf("    Rating: %d/10", p.form.rating)) + dimStyle.Render("  (-/+ to change)") + "\n")
		s.WriteString("    " + p.form.content.View() + "\n")
		if p.form.saving {
			s.WriteString(dimStyle.Render("    Submitting...") + "\n")
		}
		if p.form.err != "" {
			s.WriteString(errorStyle.Render("    "+p.form.err) + "\n")
		}
	} else if signedIn {
		s.WriteString(dimStyle.Render("    w: add review") + "\n")
	}
	return s.String()
}

func ratingBadge(rating int) string {
	return warningStyle.Render(fmt.Sprintf("★%d", rating))
}
