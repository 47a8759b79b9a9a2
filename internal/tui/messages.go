package tui

import (
	"image"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/vinyl-vault/internal/collection"
	"github.com/handiism/vinyl-vault/internal/model"
)

// Message types
type (
	// hydratedMsg is sent when the stored session has been restored.
	hydratedMsg struct {
		Err error
	}

	// authDoneMsg is sent when a sign-in or sign-up attempt finishes.
	authDoneMsg struct {
		Err error
	}

	// signedOutMsg is sent after the session has been cleared.
	signedOutMsg struct{}

	// albumsLoadedMsg is sent when the collection list fetch finishes.
	albumsLoadedMsg struct {
		Err error
	}

	// albumSavedMsg is sent when the album form has been submitted.
	albumSavedMsg struct {
		Title string
		Err   error
	}

	// albumDeletedMsg is sent when a confirmed deletion finishes.
	albumDeletedMsg struct {
		Album model.Album
		Err   error
	}

	// communityLoadedMsg is sent when the public albums have been fetched.
	communityLoadedMsg struct {
		Err error
	}

	// reviewsLoadedMsg is sent when an album's reviews have been fetched.
	reviewsLoadedMsg struct {
		AlbumID string
		Err     error
	}

	// reviewSavedMsg is sent when a review has been posted.
	reviewSavedMsg struct {
		AlbumID string
		Err     error
	}

	// reviewDeletedMsg is sent when a confirmed review deletion finishes.
	reviewDeletedMsg struct {
		Err error
	}

	// artworkMsg carries artwork suggestions for the album form.
	artworkMsg struct {
		Candidates []model.ArtworkCandidate
		Err        error
	}

	// previewMsg carries a downscaled cover.
	previewMsg struct {
		URL   string
		Image image.Image
		Err   error
	}

	// noticeMsg adds a line to the status area.
	noticeMsg struct {
		Event collection.ProgressEvent
	}

	// confirmMsg asks the user to confirm an action in a modal dialog.
	confirmMsg struct {
		Title     string
		Body      string
		OnConfirm tea.Cmd
		OnCancel  func()
	}

	// alertMsg shows a modal dialog with a single OK button.
	alertMsg struct {
		Title string
		Body  string
	}
)

func notify(level collection.ProgressLevel, message string) tea.Cmd {
	return func() tea.Msg {
		return noticeMsg{Event: collection.ProgressEvent{Message: message, Level: level}}
	}
}

func send(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
