package model

import "fmt"

// Bounds enforced on user settings. Salary is in RUB, matching the
// HeadHunter API's default currency for the reference search region.
const (
	MaxKeywords  = 5
	MaxLocations = 3
	MaxSalary    = 1_000_000
)

// Experience is a HeadHunter experience-level code.
type Experience string

const (
	ExperienceNone   Experience = "noExperience"
	Experience1To3   Experience = "between1And3"
	Experience3To6   Experience = "between3And6"
	ExperienceOver6  Experience = "moreThan6"
)

// experienceLabels maps each code to its keyboard label, in menu order.
var experienceLabels = []struct {
	Code  Experience
	Label string
}{
	{ExperienceNone, "No experience"},
	{Experience1To3, "1-3 years"},
	{Experience3To6, "3-6 years"},
	{ExperienceOver6, "6+ years"},
}

// ParseExperience converts a raw code to an Experience, returning an error
// for unknown values.
func ParseExperience(s string) (Experience, error) {
	e := Experience(s)
	switch e {
	case ExperienceNone, Experience1To3, Experience3To6, ExperienceOver6:
		return e, nil
	}
	return "", fmt.Errorf("unknown experience code %q", s)
}

// ExperienceFromLabel maps a keyboard label back to its code. The second
// return value is false for labels outside the fixed menu.
func ExperienceFromLabel(label string) (Experience, bool) {
	for _, el := range experienceLabels {
		if el.Label == label {
			return el.Code, true
		}
	}
	return "", false
}

// Label returns the human-readable form of the code. Unknown codes render
// as-is so a corrupted record still displays something.
func (e Experience) Label() string {
	for _, el := range experienceLabels {
		if el.Code == e {
			return el.Label
		}
	}
	return string(e)
}

// ExperienceLabels returns the four keyboard labels in menu order.
func ExperienceLabels() []string {
	labels := make([]string, len(experienceLabels))
	for i, el := range experienceLabels {
		labels[i] = el.Label
	}
	return labels
}

// Settings is one user's search configuration. A stored record always has
// all four fields populated.
type Settings struct {
	Keywords   []string
	Locations  []string
	SalaryMin  int
	Experience Experience
}

// DefaultSettings returns the record synthesized for users without one.
func DefaultSettings() Settings {
	return Settings{
		Keywords:   []string{"Python"},
		Locations:  []string{"Remote"},
		SalaryMin:  50000,
		Experience: ExperienceNone,
	}
}

// Patch is a partial settings update. Nil fields are left untouched by Apply.
type Patch struct {
	Keywords   []string
	Locations  []string
	SalaryMin  *int
	Experience *Experience
}

// Apply merges the patch over base and returns the result. Base is not
// modified.
func (p Patch) Apply(base Settings) Settings {
	out := base
	if p.Keywords != nil {
		out.Keywords = p.Keywords
	}
	if p.Locations != nil {
		out.Locations = p.Locations
	}
	if p.SalaryMin != nil {
		out.SalaryMin = *p.SalaryMin
	}
	if p.Experience != nil {
		out.Experience = *p.Experience
	}
	return out
}
