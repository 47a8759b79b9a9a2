package cli

import (
	"context"
	"strconv"
)

func runArtwork(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "artwork", "-artist A -title T")
	artist := fs.String("artist", "", "Artist")
	title := fs.String("title", "", "Album title")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	if *artist == "" || *title == "" {
		return usagef("artwork needs -artist and -title")
	}

	candidates := e.app.Artwork.Search(ctx, *artist, *title)
	if len(candidates) == 0 {
		e.printf("No artwork found.\n")
		return nil
	}

	rows := make([][]string, 0, len(candidates))
	for i, c := range candidates {
		rows = append(rows, []string{strconv.Itoa(i + 1), c.AlbumName, c.ArtistName, yearString(c.ReleaseYear), c.ArtworkURL})
	}
	e.printf("%s\n", renderTable([]string{"#", "ALBUM", "ARTIST", "YEAR", "URL"}, rows))
	e.printf("Use one with `vinylvault-cli add ... -pick N`.\n")
	return nil
}
