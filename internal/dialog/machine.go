package dialog

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/mvoronin/jobscout/internal/format"
	"github.com/mvoronin/jobscout/internal/model"
)

// Reply is one outgoing message produced by a transition.
type Reply struct {
	Text           string
	Keyboard       [][]string
	RemoveKeyboard bool
}

// Machine owns every dialog transition. It is stateless itself: the caller
// tracks each user's current Step and feeds it back in.
type Machine struct {
	store  model.SettingsStore
	logger *slog.Logger
}

// NewMachine creates a dialog machine backed by the given settings store.
func NewMachine(store model.SettingsStore, logger *slog.Logger) *Machine {
	return &Machine{store: store, logger: logger}
}

// Handle applies one classified event to the user's current step and returns
// the next step plus the replies to send. A storage failure never traps the
// user in a dialog: it produces a generic notice and resets to Idle.
func (m *Machine) Handle(ctx context.Context, userID int64, step Step, ev Event) (Step, []Reply) {
	// Cancellation wins over any state-specific parsing.
	if ev.Kind == EventCancel {
		return StepIdle, []Reply{{Text: format.Cancelled(), RemoveKeyboard: true}}
	}

	switch step {
	case StepIdle:
		return m.handleIdle(ctx, userID, ev)
	case StepKeywords:
		return m.handleKeywords(ctx, userID, ev)
	case StepLocations:
		return m.handleLocations(ctx, userID, ev)
	case StepSalary:
		return m.handleSalary(ctx, userID, ev)
	case StepExperience:
		return m.handleExperience(ctx, userID, ev)
	}
	return StepIdle, nil
}

func (m *Machine) handleIdle(ctx context.Context, userID int64, ev Event) (Step, []Reply) {
	if ev.Kind != EventMenu {
		return StepIdle, []Reply{{Text: format.UnknownInput()}}
	}

	switch ev.Menu {
	case MenuChangeKeywords:
		return StepKeywords, []Reply{{Text: format.KeywordsPrompt(), RemoveKeyboard: true}}
	case MenuChangeLocations:
		return StepLocations, []Reply{{Text: format.LocationsPrompt(), Keyboard: format.LocationsKeyboard()}}
	case MenuChangeSalary:
		return StepSalary, []Reply{{Text: format.SalaryPrompt(), Keyboard: format.SalaryKeyboard()}}
	case MenuChangeExperience:
		return StepExperience, []Reply{{Text: format.ExperiencePrompt(), Keyboard: format.ExperienceKeyboard()}}
	case MenuShowSettings:
		settings, err := m.currentSettings(ctx, userID)
		if err != nil {
			m.logger.Error("loading settings", "user_id", userID, "error", err)
			return StepIdle, []Reply{{Text: format.ErrLoadingSettings()}}
		}
		return StepIdle, []Reply{{Text: format.CurrentSettings(settings)}}
	}
	return StepIdle, []Reply{{Text: format.UnknownInput()}}
}

func (m *Machine) handleKeywords(ctx context.Context, userID int64, ev Event) (Step, []Reply) {
	keywords := splitList(ev.Text)
	if len(keywords) == 0 {
		return StepKeywords, []Reply{{Text: format.ErrNoKeywords()}}
	}
	if len(keywords) > model.MaxKeywords {
		return StepKeywords, []Reply{{Text: format.ErrTooManyKeywords()}}
	}

	return m.save(ctx, userID, model.Patch{Keywords: keywords}, format.SavedKeywords())
}

func (m *Machine) handleLocations(ctx context.Context, userID int64, ev Event) (Step, []Reply) {
	// "Multiple Locations" re-prompts for a comma list; the step does not
	// change, and the next input goes through the same comma-split parse.
	if ev.Kind == EventMenu && ev.Menu == MenuMultipleLocations {
		return StepLocations, []Reply{{Text: format.MultipleLocationsPrompt(), RemoveKeyboard: true}}
	}

	locations := splitList(ev.Text)
	if len(locations) == 0 {
		return StepLocations, []Reply{{Text: format.ErrNoLocations()}}
	}
	if len(locations) > model.MaxLocations {
		return StepLocations, []Reply{{Text: format.ErrTooManyLocations()}}
	}

	return m.save(ctx, userID, model.Patch{Locations: locations}, format.SavedLocations())
}

func (m *Machine) handleSalary(ctx context.Context, userID int64, ev Event) (Step, []Reply) {
	if ev.Kind == EventMenu && ev.Menu == MenuCustomAmount {
		return StepSalary, []Reply{{Text: format.CustomSalaryPrompt(), RemoveKeyboard: true}}
	}

	salary, err := strconv.Atoi(ev.Text)
	if err != nil {
		return StepSalary, []Reply{{Text: format.ErrSalaryNotNumeric()}}
	}
	if salary < 0 {
		return StepSalary, []Reply{{Text: format.ErrSalaryNegative()}}
	}
	if salary > model.MaxSalary {
		return StepSalary, []Reply{{Text: format.ErrSalaryTooHigh()}}
	}

	return m.save(ctx, userID, model.Patch{SalaryMin: &salary}, format.SavedSalary(salary))
}

func (m *Machine) handleExperience(ctx context.Context, userID int64, ev Event) (Step, []Reply) {
	code, ok := model.ExperienceFromLabel(ev.Text)
	if !ok {
		return StepExperience, []Reply{{
			Text:     format.ErrExperienceUnknown(),
			Keyboard: format.ExperienceKeyboard(),
		}}
	}

	return m.save(ctx, userID, model.Patch{Experience: &code}, format.SavedExperience(code))
}

// save upserts the patch and, on success, confirms and re-displays the
// settings menu. Either way the dialog returns to Idle.
func (m *Machine) save(ctx context.Context, userID int64, patch model.Patch, confirmation string) (Step, []Reply) {
	settings, err := m.store.Upsert(ctx, userID, patch)
	if err != nil {
		m.logger.Error("saving settings", "user_id", userID, "error", err)
		return StepIdle, []Reply{{Text: format.ErrSavingSettings(), RemoveKeyboard: true}}
	}

	return StepIdle, []Reply{
		{Text: confirmation, RemoveKeyboard: true},
		{Text: format.SettingsMenu(settings), Keyboard: format.SettingsMenuKeyboard()},
	}
}

// currentSettings returns the stored record or the defaults, never creating
// a record as a side effect of the read.
func (m *Machine) currentSettings(ctx context.Context, userID int64) (model.Settings, error) {
	settings, ok, err := m.store.Get(ctx, userID)
	if err != nil {
		return model.Settings{}, err
	}
	if !ok {
		return model.DefaultSettings(), nil
	}
	return settings, nil
}

// SettingsMenuReply renders the settings menu for /settings, falling back to
// defaults for users without a record.
func (m *Machine) SettingsMenuReply(ctx context.Context, userID int64) Reply {
	settings, err := m.currentSettings(ctx, userID)
	if err != nil {
		m.logger.Error("loading settings", "user_id", userID, "error", err)
		return Reply{Text: format.ErrLoadingSettings()}
	}
	return Reply{Text: format.SettingsMenu(settings), Keyboard: format.SettingsMenuKeyboard()}
}
