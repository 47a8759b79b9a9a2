package community

import (
	"strings"

	"github.com/handiism/vinyl-vault/internal/model"
)

// Group is the albums of one owner.
type Group struct {
	Owner  string
	Albums []model.Album
}

// Filter returns the albums whose owner username, title or artist contains
// query, ignoring case. An empty query returns albums unchanged.
func Filter(albums []model.Album, query string) []model.Album {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return albums
	}

	var out []model.Album
	for _, a := range albums {
		if strings.Contains(strings.ToLower(a.Owner.Username), query) ||
			strings.Contains(strings.ToLower(a.Title), query) ||
			strings.Contains(strings.ToLower(a.Artist), query) {
			out = append(out, a)
		}
	}
	return out
}

// GroupByOwner groups albums by owner display name, in order of first
// appearance. Albums without a known owner are grouped as "Anonymous".
func GroupByOwner(albums []model.Album) []Group {
	var groups []Group
	index := make(map[string]int)

	for _, a := range albums {
		owner := a.Owner.DisplayName()
		i, ok := index[owner]
		if !ok {
			i = len(groups)
			index[owner] = i
			groups = append(groups, Group{Owner: owner})
		}
		groups[i].Albums = append(groups[i].Albums, a)
	}
	return groups
}
