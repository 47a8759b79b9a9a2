package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/handiism/vinyl-vault/internal/collection"
	"github.com/handiism/vinyl-vault/internal/model"
)

func runAlbums(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "albums", "[-reviews] [-concurrency N]")
	withReviews := fs.Bool("reviews", false, "Also load review counts and average ratings")
	concurrency := fs.Int("concurrency", 4, "Parallel review fetches with -reviews")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	c := e.app.Collection
	if err := c.Load(ctx); err != nil {
		return fmt.Errorf("failed to load albums: %w", err)
	}

	albums := c.Albums()
	if len(albums) == 0 {
		e.printf("You don't have any albums yet! Add one with `vinylvault-cli add`.\n")
		return nil
	}

	if *withReviews {
		err := c.PrefetchReviews(ctx, *concurrency, func(ev collection.ProgressEvent) {
			switch ev.Level {
			case collection.LevelVerbose:
				e.verbosef("   %s\n", ev.Message)
			case collection.LevelSuccess:
				fmt.Fprintf(e.errOut, "✅ %s\n", ev.Message)
			case collection.LevelWarning:
				fmt.Fprintf(e.errOut, "⚠️  %s\n", ev.Message)
			case collection.LevelError:
				fmt.Fprintf(e.errOut, "❌ %s\n", ev.Message)
			}
		})
		if err != nil {
			return err
		}
	}

	headers := []string{"ID", "TITLE", "ARTIST", "YEAR", "GENRE"}
	if *withReviews {
		headers = append(headers, "REVIEWS", "AVG")
	}

	rows := make([][]string, 0, len(albums))
	for _, a := range albums {
		row := []string{a.ID, a.Title, a.Artist, yearString(a.Year), a.Genre}
		if *withReviews {
			list, fetched := c.Reviews().Reviews(a.ID)
			avg, ok := c.Reviews().Average(a.ID)
			switch {
			case !fetched:
				row = append(row, "?", "")
			case ok:
				row = append(row, strconv.Itoa(len(list)), fmt.Sprintf("%.1f", avg))
			default:
				row = append(row, "0", "-")
			}
		}
		rows = append(rows, row)
	}

	e.printf("%s\n", renderTable(headers, rows))
	e.printf("Total Albums: %d\n", len(albums))
	return nil
}

// albumFlags binds the album form fields to flags.
type albumFlags struct {
	title, artist, genre, cover *string
	year                        *int
}

func bindAlbumFlags(fs *flag.FlagSet) albumFlags {
	return albumFlags{
		title:  fs.String("title", "", "Album title"),
		artist: fs.String("artist", "", "Artist"),
		year:   fs.Int("year", 0, "Release year"),
		genre:  fs.String("genre", "", "Genre"),
		cover:  fs.String("cover", "", "Cover image URL"),
	}
}

// apply copies the flags that were set on the command line into in.
func (f albumFlags) apply(fs *flag.FlagSet, in model.AlbumInput) model.AlbumInput {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "title":
			in.Title = *f.title
		case "artist":
			in.Artist = *f.artist
		case "year":
			in.Year = *f.year
		case "genre":
			in.Genre = *f.genre
		case "cover":
			in.CoverImage = *f.cover
		}
	})
	return in
}

func runAdd(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "add", "-title T -artist A -year Y [-genre G] [-cover URL | -pick N]")
	fields := bindAlbumFlags(fs)
	pick := fs.Int("pick", 0, "Use the Nth artwork suggestion as the cover (see `artwork`)")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	c := e.app.Collection
	c.OpenCreate()
	defer c.CloseForm()

	if err := c.SetForm(fields.apply(fs, model.AlbumInput{})); err != nil {
		return err
	}
	if err := applyPick(ctx, e, c, *pick); err != nil {
		return err
	}

	form, _ := c.Form()
	if err := c.Submit(ctx); err != nil {
		return fmt.Errorf("error saving album: %w", err)
	}
	e.printf("✅ Added %s\n", model.Album{Title: form.Input.Title, Artist: form.Input.Artist, Year: form.Input.Year})
	return nil
}

func runEdit(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "edit", "<album-id> [-title T] [-artist A] [-year Y] [-genre G] [-cover URL | -pick N]")
	fields := bindAlbumFlags(fs)
	pick := fs.Int("pick", 0, "Use the Nth artwork suggestion as the cover")
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return usagef("edit needs exactly one album id")
	}
	id := positional[0]

	c := e.app.Collection
	if err := c.Load(ctx); err != nil {
		return fmt.Errorf("failed to load albums: %w", err)
	}
	if err := c.OpenEdit(id); err != nil {
		return err
	}
	defer c.CloseForm()

	form, _ := c.Form()
	if err := c.SetForm(fields.apply(fs, form.Input)); err != nil {
		return err
	}
	if err := applyPick(ctx, e, c, *pick); err != nil {
		return err
	}

	if err := c.Submit(ctx); err != nil {
		return fmt.Errorf("error saving album: %w", err)
	}
	e.printf("✅ Updated album %s\n", id)
	return nil
}

func applyPick(ctx context.Context, e *env, c *collection.Controller, pick int) error {
	if pick <= 0 {
		return nil
	}
	candidates, err := c.SuggestArtwork(ctx)
	if err != nil {
		return err
	}
	if pick > len(candidates) {
		return fmt.Errorf("only %d artwork suggestions found", len(candidates))
	}
	chosen := candidates[pick-1]
	e.verbosef("   Using cover of %q by %s\n", chosen.AlbumName, chosen.ArtistName)
	return c.ApplyArtwork(chosen)
}

func runDelete(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "delete", "<album-id> [-yes]")
	yes := fs.Bool("yes", false, "Do not ask for confirmation")
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return usagef("delete needs exactly one album id")
	}

	c := e.app.Collection
	if err := c.Load(ctx); err != nil {
		return fmt.Errorf("failed to load albums: %w", err)
	}

	album, err := c.RequestDelete(positional[0])
	if err != nil {
		return err
	}

	if !*yes && !e.confirm(fmt.Sprintf("Are you sure you want to delete %s?", album)) {
		c.CancelDelete()
		e.printf("Kept %s\n", album)
		return nil
	}

	if err := c.ConfirmDelete(ctx); err != nil {
		return fmt.Errorf("error deleting album: %w", err)
	}
	e.printf("🗑️  Deleted %s\n", album)
	return nil
}

func yearString(year int) string {
	if year <= 0 {
		return ""
	}
	return strconv.Itoa(year)
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		Headers(headers...).
		Rows(rows...).
		String()
}
