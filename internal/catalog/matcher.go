package catalog

import (
	"sort"
	"strings"

	"viewer-service/internal/models"
)

// TokenizeIdentifier normalizes a free-form identifier for order-independent
// comparison: lowercase, split on non-alphanumeric runs, empty tokens
// dropped, tokens sorted.
func TokenizeIdentifier(value string) []string {
	lower := strings.ToLower(value)
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	if len(tokens) == 0 {
		return nil
	}
	sort.Strings(tokens)
	return tokens
}

// OptionMatchesSlug decides whether a catalog slug and an option's display
// name denote the same material. Slugs and names are authored independently
// and drift in casing, delimiters and brand qualifiers, so the match runs
// token-subset first, then joined-substring containment in either direction,
// then containment of the underscore-joined slug in the option's albedo
// texture path.
func OptionMatchesSlug(option models.MaterialOption, slug string) bool {
	if slug == "" {
		return false
	}
	slugTokens := TokenizeIdentifier(slug)
	if len(slugTokens) == 0 {
		return false
	}
	nameTokens := TokenizeIdentifier(option.Name)

	nameSet := make(map[string]bool, len(nameTokens))
	for _, t := range nameTokens {
		nameSet[t] = true
	}
	subset := true
	for _, t := range slugTokens {
		if !nameSet[t] {
			subset = false
			break
		}
	}
	if subset {
		return true
	}

	nameJoined := strings.Join(nameTokens, "")
	slugJoined := strings.Join(slugTokens, "")
	if nameJoined != "" && (strings.Contains(nameJoined, slugJoined) || strings.Contains(slugJoined, nameJoined)) {
		return true
	}

	if option.AlbedoURL != nil {
		albedo := strings.ToLower(*option.AlbedoURL)
		slugUnderscore := strings.Join(slugTokens, "_")
		if albedo != "" && slugUnderscore != "" && strings.Contains(albedo, slugUnderscore) {
			return true
		}
	}
	return false
}
