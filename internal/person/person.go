// Package person holds the Person data model and turns raw listing nodes
// into canonical Persons.
package person

// MaxEntries bounds how many experience and education entries a Person carries.
const MaxEntries = 3

type Experience struct {
	Company          string `json:"company,omitempty"`
	Position         string `json:"position,omitempty"`
	Duration         string `json:"duration,omitempty"`
	PositionDuration string `json:"positionDuration,omitempty"`
	Description      string `json:"description,omitempty"`
}

func (e Experience) IsEmpty() bool {
	return e.Company == "" && e.Position == "" && e.Duration == "" &&
		e.PositionDuration == "" && e.Description == ""
}

type Education struct {
	Institution string `json:"institution,omitempty"`
	Degree      string `json:"degree,omitempty"`
	Grade       string `json:"grade,omitempty"`
	Description string `json:"description,omitempty"`
}

func (e Education) IsEmpty() bool {
	return e.Institution == "" && e.Degree == "" && e.Grade == "" && e.Description == ""
}

// Person is one discovered identity, ProfileURL is its identity key.
type Person struct {
	Name       string `json:"name"`
	ProfileURL string `json:"profileUrl"`
	Headline   string `json:"headline,omitempty"`
	Location   string `json:"location,omitempty"`
	Current    string `json:"current,omitempty"`
	Followers  string `json:"followers,omitempty"`
	URNCode    string `json:"urnCode,omitempty"`

	About       string       `json:"about,omitempty"`
	Experiences []Experience `json:"experiences,omitempty"`
	Education   []Education  `json:"education,omitempty"`
	// Enriched is set once enrichment data has been attached.
	Enriched bool `json:"-"`
}

// WithEnrichment returns a copy of p carrying the given enrichment fields.
// Empty entries are dropped and each list is capped at MaxEntries. A Person
// that is already enriched is returned unchanged, enrichment happens once.
func (p Person) WithEnrichment(about string, experiences []Experience, education []Education) Person {
	if p.Enriched {
		return p
	}

	out := p
	out.About = about
	out.Experiences = nil
	out.Education = nil
	for _, e := range experiences {
		if len(out.Experiences) == MaxEntries {
			break
		}
		if !e.IsEmpty() {
			out.Experiences = append(out.Experiences, e)
		}
	}
	for _, e := range education {
		if len(out.Education) == MaxEntries {
			break
		}
		if !e.IsEmpty() {
			out.Education = append(out.Education, e)
		}
	}
	out.Enriched = true
	return out
}

// HasEnrichment reports whether any enrichment field carries data.
func (p Person) HasEnrichment() bool {
	return p.About != "" || len(p.Experiences) > 0 || len(p.Education) > 0
}
