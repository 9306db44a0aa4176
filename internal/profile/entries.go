package profile

import (
	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/locator"
	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/person"
)

var (
	titlePaths = [][]string{
		{"titleV2", "text", "text"},
		{"titleV2", "text"},
		{"title", "text"},
		{"title"},
	}
	subtitlePaths = [][]string{{"subtitle", "text"}, {"subtitle"}}
	captionPaths  = [][]string{{"caption", "text"}, {"caption"}}
	insightPaths  = [][]string{{"text", "text", "text"}, {"text", "text"}, {"text"}}
	textPaths     = [][]string{{"text", "text"}, {"text"}}
)

// entityOf unwraps the entity a list element renders, list elements come as
// `{components: {entityComponent: {...}}}` or as the bare entity.
func entityOf(el *locator.Value) *locator.Value {
	if ent := el.Path("components", "entityComponent"); ent.IsObject() {
		return ent
	}
	if ent := el.Get("entityComponent"); ent.IsObject() {
		return ent
	}
	if el.Has("titleV2") || el.Has("title") {
		return el
	}
	return nil
}

func titleOf(ent *locator.Value) string    { return ent.FirstText(titlePaths...) }
func subtitleOf(ent *locator.Value) string { return ent.FirstText(subtitlePaths...) }
func captionOf(ent *locator.Value) string  { return ent.FirstText(captionPaths...) }

// nestedEntity returns the first titled entity below ent's sub components.
func nestedEntity(ent *locator.Value) *locator.Value {
	for nested := range locator.ValuesOf(ent.Get("subComponents"), "entityComponent") {
		if titleOf(nested) != "" {
			return nested
		}
	}
	return nil
}

// listText returns the first text block of the first fixed list under v.
func listText(v *locator.Value) string {
	for container := range locator.ValuesOf(v, fixedListKey) {
		for _, item := range container.Get("components").Items() {
			for block := range locator.ValuesOf(item, "textComponent") {
				if text := block.FirstText(textPaths...); text != "" {
					return text
				}
			}
		}
	}
	return ""
}

func insightText(ent *locator.Value) string {
	for insight := range locator.ValuesOf(ent, "insightComponent") {
		if text := insight.FirstText(insightPaths...); text != "" {
			return text
		}
	}
	return ""
}

// IsExperienceEntry matches an entity containing another titled entity, a
// company holding a role.
func IsExperienceEntry(el *locator.Value) bool {
	ent := entityOf(el)
	return ent != nil && nestedEntity(ent) != nil
}

// IsEducationEntry matches an entity with a title and subtitle, or with an
// insight or description block, that is not experience shaped.
func IsEducationEntry(el *locator.Value) bool {
	ent := entityOf(el)
	if ent == nil || IsExperienceEntry(el) {
		return false
	}
	if titleOf(ent) != "" && subtitleOf(ent) != "" {
		return true
	}
	if insightText(ent) != "" {
		return true
	}
	return listText(ent.Get("subComponents")) != ""
}

func experienceOf(el *locator.Value) person.Experience {
	ent := entityOf(el)
	exp := person.Experience{
		Company:  titleOf(ent),
		Duration: subtitleOf(ent),
	}
	if role := nestedEntity(ent); role != nil {
		exp.Position = titleOf(role)
		exp.PositionDuration = captionOf(role)
		exp.Description = listText(role.Get("subComponents"))
	}
	return exp
}

func educationEntryOf(el *locator.Value) person.Education {
	ent := entityOf(el)
	return person.Education{
		Institution: titleOf(ent),
		Degree:      subtitleOf(ent),
		Grade:       insightText(ent),
		Description: listText(ent.Path("subComponents", "components").Index(1)),
	}
}

func experiencesOf(list *locator.Value) []person.Experience {
	var out []person.Experience
	for _, el := range bounded(list) {
		if exp := experienceOf(el); !exp.IsEmpty() {
			out = append(out, exp)
		}
	}
	return out
}

func educationOf(list *locator.Value) []person.Education {
	var out []person.Education
	for _, el := range bounded(list) {
		if edu := educationEntryOf(el); !edu.IsEmpty() {
			out = append(out, edu)
		}
	}
	return out
}

// bounded returns at most person.MaxEntries elements of list.
func bounded(list *locator.Value) []*locator.Value {
	items := list.Items()
	if len(items) > person.MaxEntries {
		items = items[:person.MaxEntries]
	}
	return items
}
