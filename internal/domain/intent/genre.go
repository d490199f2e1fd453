package intent

import "strings"

// Genre is a coarse genre bucket recognized in queries.
type Genre string

// Genres in taxonomy order.
const (
	GenreRomance Genre = "romance"
	GenreAction  Genre = "action"
	GenreComedy  Genre = "comedy"
	GenreHorror  Genre = "horror"
	GenreSciFi   Genre = "sci-fi"
)

type genreEntry struct {
	genre    Genre
	synonyms []string
}

var taxonomy = []genreEntry{
	{GenreRomance, []string{"romance", "romantic", "love", "rom-com"}},
	{GenreAction, []string{"action", "adventure", "fight", "combat"}},
	{GenreComedy, []string{"comedy", "funny", "humor", "satire"}},
	{GenreHorror, []string{"horror", "scary", "thriller", "fear"}},
	{GenreSciFi, []string{"sci-fi", "science fiction", "space", "alien"}},
}

// Synonyms returns the words that select g.
func (g Genre) Synonyms() []string {
	for _, e := range taxonomy {
		if e.genre == g {
			return append([]string(nil), e.synonyms...)
		}
	}
	return nil
}

// MatchGenre returns the genre of the first keyword that is a synonym of some genre.
// Keywords are scanned in order; for each keyword genres are tried in taxonomy order.
func MatchGenre(keywords []string) (Genre, bool) {
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		for _, e := range taxonomy {
			for _, s := range e.synonyms {
				if kw == s {
					return e.genre, true
				}
			}
		}
	}
	return "", false
}
