// Package dialog implements the settings conversation: a per-user state
// machine that validates input step by step and persists results through the
// settings store.
package dialog

// Step is a user's current position in the settings dialog. The zero value
// is Idle; steps live in memory only, so a restart returns everyone to Idle.
type Step int

const (
	StepIdle Step = iota
	StepKeywords
	StepLocations
	StepSalary
	StepExperience
)

func (s Step) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepKeywords:
		return "awaiting_keywords"
	case StepLocations:
		return "awaiting_locations"
	case StepSalary:
		return "awaiting_salary"
	case StepExperience:
		return "awaiting_experience"
	}
	return "unknown"
}
