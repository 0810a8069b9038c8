package catalog

import (
	"fmt"

	"github.com/tunedex/tunedex/internal/models"
	"github.com/tunedex/tunedex/internal/search"
)

// GenreVocabulary is the taxonomy vocabulary all genre terms live in.
const GenreVocabulary = "music_genre"

// ensureTerms resolves genre names to term IDs in input order, creating
// missing terms. A name repeated within one call reuses the ID created for
// its first occurrence. Empty names are skipped.
func (e *Engine) ensureTerms(names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	resolved := make(map[string]string)

	for _, name := range names {
		if search.IsEmptyString(name) {
			continue
		}

		if id, ok := resolved[name]; ok {
			ids = append(ids, id)
			continue
		}

		term, err := e.terms.FindByName(GenreVocabulary, name)
		if err != nil {
			return nil, fmt.Errorf("failed to look up term %q: %w", name, err)
		}

		if term == nil {
			term = &models.Term{Vocabulary: GenreVocabulary, Name: name}
			if err := e.terms.Create(term); err != nil {
				return nil, fmt.Errorf("failed to create term %q: %w", name, err)
			}
			e.logger.Debug("created genre term", "name", name, "id", term.ID)
		}

		resolved[name] = term.ID
		ids = append(ids, term.ID)
	}

	return ids, nil
}
