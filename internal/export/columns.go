// Package export renders scraped people into CSV, HTML, JSON and SQLite
// files, following an ordered column schema.
package export

import (
	"fmt"
	"strings"

	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/person"
)

// Column maps a person field key to its display label.
type Column struct {
	Key   string
	Label string
}

var experienceFields = []Column{
	{Key: "Company", Label: "Company"},
	{Key: "Position", Label: "Position"},
	{Key: "Duration", Label: "Duration"},
	{Key: "PositionDuration", Label: "Position Duration"},
	{Key: "Description", Label: "Description"},
}

var educationFields = []Column{
	{Key: "Institution", Label: "Institution"},
	{Key: "Degree", Label: "Degree"},
	{Key: "Grade", Label: "Grade"},
	{Key: "Description", Label: "Description"},
}

// DefaultColumns is the full schema, enrichment columns included.
func DefaultColumns() []Column {
	columns := []Column{
		{Key: "name", Label: "Name"},
		{Key: "profileUrl", Label: "Profile URL"},
		{Key: "headline", Label: "Headline"},
		{Key: "location", Label: "Location"},
		{Key: "current", Label: "Current"},
		{Key: "followers", Label: "Followers"},
		{Key: "urnCode", Label: "URN Code"},
		{Key: "about", Label: "About"},
	}
	for i := 1; i <= person.MaxEntries; i++ {
		for _, f := range experienceFields {
			columns = append(columns, Column{
				Key:   fmt.Sprintf("exp%d%s", i, f.Key),
				Label: fmt.Sprintf("Experience %d %s", i, f.Label),
			})
		}
	}
	for i := 1; i <= person.MaxEntries; i++ {
		for _, f := range educationFields {
			columns = append(columns, Column{
				Key:   fmt.Sprintf("edu%d%s", i, f.Key),
				Label: fmt.Sprintf("Education %d %s", i, f.Label),
			})
		}
	}
	return columns
}

// Row resolves every column of p to its display string, unknown keys and
// missing entries render as "".
func Row(p person.Person, columns []Column) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = Value(p, c.Key)
	}
	return out
}

// entryKey splits `exp2Company` into its 0-based index and field name.
func entryKey(key, prefix string) (int, string, bool) {
	rest, ok := strings.CutPrefix(key, prefix)
	if !ok || len(rest) < 2 || rest[0] < '1' || rest[0] > '9' {
		return 0, "", false
	}
	return int(rest[0] - '1'), rest[1:], true
}

func Value(p person.Person, key string) string {
	switch key {
	case "name":
		return p.Name
	case "profileUrl":
		return p.ProfileURL
	case "headline":
		return p.Headline
	case "location":
		return p.Location
	case "current":
		return p.Current
	case "followers":
		return p.Followers
	case "urnCode":
		return p.URNCode
	case "about":
		return p.About
	}

	if idx, field, ok := entryKey(key, "exp"); ok {
		if idx >= len(p.Experiences) {
			return ""
		}
		e := p.Experiences[idx]
		switch field {
		case "Company":
			return e.Company
		case "Position":
			return e.Position
		case "Duration":
			return e.Duration
		case "PositionDuration":
			return e.PositionDuration
		case "Description":
			return e.Description
		}
		return ""
	}
	if idx, field, ok := entryKey(key, "edu"); ok {
		if idx >= len(p.Education) {
			return ""
		}
		e := p.Education[idx]
		switch field {
		case "Institution":
			return e.Institution
		case "Degree":
			return e.Degree
		case "Grade":
			return e.Grade
		case "Description":
			return e.Description
		}
	}
	return ""
}

func labels(columns []Column) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.Label
	}
	return out
}
