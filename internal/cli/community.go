package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/handiism/vinyl-vault/internal/model"
)

func runCommunity(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "community", "[-filter text]")
	filter := fs.String("filter", "", "Only albums whose owner, title or artist contains text")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	c := e.app.Community
	if err := c.Load(ctx); err != nil {
		return fmt.Errorf("failed to load community albums: %w", err)
	}
	c.SetQuery(*filter)

	groups := c.Groups()
	if len(groups) == 0 {
		if *filter != "" {
			e.printf("No albums match %q.\n", *filter)
		} else {
			e.printf("No albums in the community yet!\n")
		}
		return nil
	}

	for _, g := range groups {
		e.printf("🎧 %s (%d)\n", g.Owner, len(g.Albums))
		rows := make([][]string, 0, len(g.Albums))
		for _, a := range g.Albums {
			rows = append(rows, []string{a.ID, a.Title, a.Artist, yearString(a.Year), a.Genre})
		}
		e.printf("%s\n\n", renderTable([]string{"ID", "TITLE", "ARTIST", "YEAR", "GENRE"}, rows))
	}
	return nil
}

func runReviews(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "reviews", "<album-id>")
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return usagef("reviews needs exactly one album id")
	}
	albumID := positional[0]

	book := e.app.Community.Reviews()
	list, err := book.Expand(ctx, albumID)
	if err != nil {
		return fmt.Errorf("failed to load reviews: %w", err)
	}

	if len(list) == 0 {
		e.printf("No reviews yet. Be the first to review!\n")
		return nil
	}

	avg, _ := book.Average(albumID)
	e.printf("Reviews (%d), average ⭐ %.1f/10\n\n", len(list), avg)
	for _, r := range list {
		e.printf("%s  ⭐ %d/10  [%s]\n", r.Reviewer.DisplayName(), r.Rating, r.ID)
		if !r.CreatedAt.IsZero() {
			e.printf("  %s\n", r.CreatedAt.Local().Format("Jan 2, 2006"))
		}
		for _, line := range strings.Split(r.Content, "\n") {
			e.printf("  %s\n", line)
		}
		e.printf("\n")
	}
	return nil
}

func runReview(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "review", "<album-id> [-rating 1-10] -text \"...\"")
	rating := fs.Int("rating", model.DefaultRating, "Rating from 1 to 10")
	text := fs.String("text", "", "Review text (read from stdin when omitted)")
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return usagef("review needs exactly one album id")
	}

	if *text == "" {
		fmt.Fprint(e.errOut, "Your review: ")
		line, err := e.readLine()
		if err != nil {
			return fmt.Errorf("reading review: %w", err)
		}
		*text = line
	}

	in := model.NewReviewInput(positional[0])
	in.Rating = *rating
	in.Content = *text

	book := e.app.Community.Reviews()
	if err := book.Create(ctx, in); err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	list, _ := book.Reviews(in.AlbumID)
	e.printf("✅ Review posted. The album now has %d review(s).\n", len(list))
	return nil
}

func runUnreview(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "unreview", "<album-id> <review-id> [-yes]")
	yes := fs.Bool("yes", false, "Do not ask for confirmation")
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 2 {
		return usagef("unreview needs an album id and a review id")
	}
	albumID, reviewID := positional[0], positional[1]

	book := e.app.Community.Reviews()
	if _, err := book.Fetch(ctx, albumID); err != nil {
		return fmt.Errorf("failed to load reviews: %w", err)
	}

	review, err := book.RequestDelete(albumID, reviewID)
	if err != nil {
		return err
	}

	if !*yes && !e.confirm("Delete this review?") {
		book.CancelDelete()
		e.printf("Kept review %s\n", review.ID)
		return nil
	}

	if err := book.ConfirmDelete(ctx); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	e.printf("🗑️  Deleted review %s\n", review.ID)
	return nil
}
