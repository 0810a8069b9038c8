package search

import (
	"sort"
	"strings"

	"github.com/tunedex/tunedex/internal/models"
	"github.com/tunedex/tunedex/internal/providers"
)

// Field describes one comparable field offered for per-provider selection.
type Field struct {
	Name     string
	Label    string
	Required bool
}

// CompareFields returns the fields offered for comparison for the given
// content kind. Name is required everywhere.
func CompareFields(kind string) []Field {
	switch kind {
	case models.KindArtist:
		return []Field{
			{Name: "name", Label: "Artist Name", Required: true},
			{Name: "image", Label: "Image"},
			{Name: "profile", Label: "Description"},
			{Name: "url", Label: "Website"},
			{Name: "genres", Label: "Genres"},
		}
	case models.KindAlbum:
		return []Field{
			{Name: "name", Label: "Album Name", Required: true},
			{Name: "artist", Label: "Artist Name"},
			{Name: "year", Label: "Release Year"},
			{Name: "image", Label: "Cover Image"},
			{Name: "genres", Label: "Genres"},
		}
	case models.KindSong:
		return []Field{
			{Name: "name", Label: "Song Title", Required: true},
			{Name: "artist", Label: "Artist Name"},
			{Name: "album", Label: "Album Name"},
			{Name: "length", Label: "Length"},
		}
	default:
		return nil
	}
}

// IsEmptyString reports whether a scalar field value counts as empty:
// "", "-", the literal "null", or whitespace only.
func IsEmptyString(v string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == "-" || trimmed == "null"
}

// FieldValue extracts the named comparable field from a details record.
// List-valued fields (genres) are joined for display; use [FieldList] for
// the raw list.
func FieldValue(d *providers.Details, field string) string {
	if d == nil {
		return ""
	}

	switch field {
	case "name":
		return d.Name
	case "image":
		return d.Image
	case "profile":
		return d.Profile
	case "url":
		return d.URL
	case "artist":
		return d.Artist
	case "album":
		return d.Album
	case "year":
		return d.Year
	case "length":
		return d.Length
	case "genres":
		return strings.Join(d.Genres, ", ")
	default:
		return ""
	}
}

// FieldList returns the raw list for list-valued fields, nil otherwise.
func FieldList(d *providers.Details, field string) []string {
	if d != nil && field == "genres" {
		return d.Genres
	}
	return nil
}

// hasValue reports whether the provider's record has a non-empty value for the field.
func hasValue(d *providers.Details, field string) bool {
	if field == "genres" {
		return d != nil && len(d.Genres) > 0
	}
	return !IsEmptyString(FieldValue(d, field))
}

// ProviderOrder returns the selection's provider names sorted for
// deterministic iteration.
func ProviderOrder(selections map[string]*providers.Details) []string {
	names := make([]string, 0, len(selections))
	for name := range selections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FieldOptions returns the providers holding a non-empty value for the
// field, in deterministic order. A field with no options is omitted from
// the merge entirely.
func FieldOptions(selections map[string]*providers.Details, field string) []string {
	options := []string{}
	for _, name := range ProviderOrder(selections) {
		if hasValue(selections[name], field) {
			options = append(options, name)
		}
	}
	return options
}

// Merge assembles one record from the selected provider details.
//
// choices maps field name to the chosen provider; a missing or invalid
// choice falls back to the first provider with a non-empty value. Fields
// that are empty everywhere are omitted. Every contributing provider's ID
// is always recorded regardless of field choices, and for the artist kind
// the first non-empty member list found is propagated.
func Merge(kind string, selections map[string]*providers.Details, choices map[string]string) *models.MergedRecord {
	record := &models.MergedRecord{ProviderIDs: make(map[string]string, len(selections))}

	for _, name := range ProviderOrder(selections) {
		if selections[name] != nil {
			record.ProviderIDs[name] = selections[name].ID
		}
	}

	for _, field := range CompareFields(kind) {
		options := FieldOptions(selections, field.Name)
		if len(options) == 0 {
			continue
		}

		chosen := choices[field.Name]
		valid := false
		for _, option := range options {
			if option == chosen {
				valid = true
				break
			}
		}
		if !valid {
			chosen = options[0]
		}

		source := selections[chosen]
		switch field.Name {
		case "name":
			record.Name = source.Name
		case "image":
			record.Image = source.Image
		case "profile":
			record.Profile = source.Profile
		case "url":
			record.URL = source.URL
		case "artist":
			record.Artist = source.Artist
		case "album":
			record.Album = source.Album
		case "year":
			record.Year = source.Year
		case "length":
			record.Length = source.Length
		case "genres":
			record.Genres = append([]string{}, source.Genres...)
		}
	}

	if kind == models.KindArtist {
		for _, name := range ProviderOrder(selections) {
			if source := selections[name]; source != nil && len(source.Members) > 0 {
				record.Members = append([]string{}, source.Members...)
				break
			}
		}
	}

	return record
}
