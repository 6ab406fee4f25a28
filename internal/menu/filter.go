package menu

import (
	"strings"

	"github.com/menulingua/menulingua/internal/catalog"
)

// Filter returns the dishes a diner can eat given their allergen exclusions
// and required dietary tags. A dish is dropped when any of its allergens
// appears in excludedAllergens, and kept only when it carries every tag in
// requiredTags. Empty filter sets pass everything through. Relative order of
// surviving dishes is preserved.
//
// Labels are compared normalized (trimmed, lowercased); catalog sources are
// not consistent about casing.
func Filter(dishes []*catalog.Dish, excludedAllergens, requiredTags []string) []*catalog.Dish {
	if len(excludedAllergens) == 0 && len(requiredTags) == 0 {
		return dishes
	}

	excluded := normalizeSet(excludedAllergens)
	required := normalizeSet(requiredTags)

	out := make([]*catalog.Dish, 0, len(dishes))
	for _, dish := range dishes {
		if dish == nil {
			continue
		}
		if intersects(dish.Allergens, excluded) {
			continue
		}
		if !containsAll(dish.DietaryTags, required) {
			continue
		}
		out = append(out, dish)
	}
	return out
}

// Section is a group of dishes sharing a localized section label.
type Section struct {
	Label  string          `json:"label"`
	Dishes []*catalog.Dish `json:"dishes"`
}

// GroupBySection groups dishes by their section label in the given language,
// preserving the order sections first appear in the dish list.
func GroupBySection(dishes []*catalog.Dish, lang catalog.Language) []Section {
	var sections []Section
	index := make(map[string]int)

	for _, dish := range dishes {
		if dish == nil {
			continue
		}
		label := catalog.Localized(dish.Section, lang)
		i, ok := index[label]
		if !ok {
			i = len(sections)
			index[label] = i
			sections = append(sections, Section{Label: label})
		}
		sections[i].Dishes = append(sections[i].Dishes, dish)
	}
	return sections
}

// NormalizeLabel canonicalizes an allergen or dietary tag label for matching.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

func normalizeSet(labels []string) map[string]struct{} {
	set := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		normalized := NormalizeLabel(label)
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return set
}

func intersects(labels []string, set map[string]struct{}) bool {
	for _, label := range labels {
		if _, ok := set[NormalizeLabel(label)]; ok {
			return true
		}
	}
	return false
}

func containsAll(labels []string, required map[string]struct{}) bool {
	if len(required) == 0 {
		return true
	}
	have := normalizeSet(labels)
	for tag := range required {
		if _, ok := have[tag]; !ok {
			return false
		}
	}
	return true
}
