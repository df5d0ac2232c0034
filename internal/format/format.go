// Package format renders every user-visible text and keyboard of the bot.
// All functions are pure; messages use Telegram HTML markup.
package format

import (
	"fmt"
	"html"
	"strings"

	"github.com/mvoronin/jobscout/internal/model"
)

// Reply-keyboard button labels. The dialog layer matches incoming text
// against these, so they are defined next to the keyboards that show them.
const (
	ButtonChangeKeywords    = "Change Keywords"
	ButtonChangeLocations   = "Change Locations"
	ButtonChangeSalary      = "Change Salary"
	ButtonChangeExperience  = "Change Experience"
	ButtonShowSettings      = "Show Current Settings"
	ButtonCancel            = "Cancel"
	ButtonMultipleLocations = "Multiple Locations"
	ButtonCustomAmount      = "Custom Amount"
)

// Welcome is the /start greeting.
func Welcome() string {
	return "🔍 <b>Job Search Bot</b>\n\n" +
		"I can help you find job openings!\n" +
		"Use /settings to configure your search\n" +
		"Use /search to find jobs\n" +
		"Use /help for instructions"
}

// Help is the static /help text.
func Help() string {
	return "🤖 <b>Job Search Bot Help</b>\n\n" +
		"/start - Start the bot\n" +
		"/settings - Configure search parameters\n" +
		"/search - Find jobs\n" +
		"/help - Show this message\n\n" +
		"Configure your job search with:\n" +
		"- Keywords (e.g., Python, Java)\n" +
		"- Locations (e.g., Remote, Moscow)\n" +
		"- Minimum salary\n" +
		"- Experience level"
}

// Cancelled acknowledges a cancelled dialog.
func Cancelled() string {
	return "❌ Action cancelled\n" +
		"Use /settings to configure your search\n" +
		"Use /search to find jobs"
}

// settingsBody renders the four fields shared by the menu and the
// show-current-settings view.
func settingsBody(s model.Settings) string {
	return fmt.Sprintf(
		"Keywords: %s\nLocations: %s\nMin Salary: %d RUB\nExperience: %s",
		html.EscapeString(strings.Join(s.Keywords, ", ")),
		html.EscapeString(strings.Join(s.Locations, ", ")),
		s.SalaryMin,
		html.EscapeString(s.Experience.Label()),
	)
}

// SettingsMenu renders the settings menu header with the current values.
func SettingsMenu(s model.Settings) string {
	return "⚙️ <b>Settings Menu</b>\n\nCurrent settings:\n" + settingsBody(s)
}

// CurrentSettings renders the read-only settings view.
func CurrentSettings(s model.Settings) string {
	return "⚙️ <b>Current Settings</b>\n\n" + settingsBody(s)
}

// PostingCard renders one job posting.
func PostingCard(p model.Posting) string {
	salary := p.Salary
	if salary == "" {
		salary = model.SalaryNotSpecified
	}
	return fmt.Sprintf(
		"🏢 <b>%s</b>\n🔹 <b>%s</b>\n💰 Salary: %s\n🌐 Source: %s\n🔗 <a href='%s'>View job</a>",
		html.EscapeString(p.Company),
		html.EscapeString(p.Title),
		html.EscapeString(salary),
		html.EscapeString(p.Source),
		html.EscapeString(p.URL),
	)
}

// Searching is the placeholder message edited in place once results arrive.
func Searching() string { return "🔍 Searching for jobs..." }

// NoResults is shown when every provider came back empty.
func NoResults() string {
	return "😕 No jobs found with current settings. Try adjusting your search criteria."
}

// FoundCount summarizes a non-empty search result.
func FoundCount(n int) string {
	return fmt.Sprintf("✅ Found %d jobs:", n)
}

// Prompts for the four Awaiting* dialog steps.

func KeywordsPrompt() string {
	return "🔤 Enter job keywords separated by commas (e.g., Python, Django, Backend):"
}

func LocationsPrompt() string {
	return "🌍 Select location or enter custom one:"
}

func MultipleLocationsPrompt() string {
	return "Enter locations separated by commas (e.g., Remote, Moscow, New York):"
}

func SalaryPrompt() string {
	return "💰 Enter minimum salary (RUB):"
}

func CustomSalaryPrompt() string {
	return "Enter custom minimum salary amount in RUB:"
}

func ExperiencePrompt() string {
	return "👔 <b>Select your experience level:</b>"
}

// Validation and failure notices.

func ErrNoKeywords() string    { return "⚠️ Please enter at least one keyword" }
func ErrTooManyKeywords() string {
	return fmt.Sprintf("⚠️ Please enter no more than %d keywords", model.MaxKeywords)
}
func ErrNoLocations() string { return "⚠️ Please enter at least one location" }
func ErrTooManyLocations() string {
	return fmt.Sprintf("⚠️ Please enter no more than %d locations", model.MaxLocations)
}
func ErrSalaryNotNumeric() string { return "⚠️ Please enter a valid number" }
func ErrSalaryNegative() string   { return "⚠️ Salary cannot be negative" }
func ErrSalaryTooHigh() string    { return "⚠️ Please enter a reasonable salary amount" }
func ErrExperienceUnknown() string {
	return "⚠️ Please select an option from the keyboard below:"
}
func ErrSavingSettings() string { return "⚠️ Error saving settings" }
func ErrLoadingSettings() string { return "⚠️ Error loading settings" }
func ErrSearchFailed() string    { return "⚠️ Error occurred while searching" }

// SavedKeywords and friends confirm a successful save.

func SavedKeywords() string { return "✅ Keywords updated!" }

func SavedLocations() string { return "✅ Locations updated!" }

func SavedSalary(amount int) string {
	return fmt.Sprintf("✅ Minimum salary set to %d RUB!", amount)
}

func SavedExperience(e model.Experience) string {
	return fmt.Sprintf("✅ Experience level set to <b>%s</b>!", html.EscapeString(e.Label()))
}

// UnknownInput nudges a user who typed free text outside any dialog.
func UnknownInput() string {
	return "Use /settings to configure your search or /search to find jobs."
}

// Keyboards.

// SettingsMenuKeyboard is the six-option settings menu.
func SettingsMenuKeyboard() [][]string {
	return [][]string{
		{ButtonChangeKeywords, ButtonChangeLocations},
		{ButtonChangeSalary, ButtonChangeExperience},
		{ButtonShowSettings, ButtonCancel},
	}
}

// LocationsKeyboard offers canned locations plus the multi-entry escape.
func LocationsKeyboard() [][]string {
	return [][]string{
		{"Remote", "Moscow"},
		{"Saint Petersburg", "New York"},
		{ButtonMultipleLocations, ButtonCancel},
	}
}

// SalaryKeyboard offers canned salary tiers plus free-text entry.
func SalaryKeyboard() [][]string {
	return [][]string{
		{"50000", "100000", "150000"},
		{"200000", ButtonCustomAmount, ButtonCancel},
	}
}

// ExperienceKeyboard is the complete closed menu of experience levels.
func ExperienceKeyboard() [][]string {
	labels := model.ExperienceLabels()
	return [][]string{
		{labels[0], labels[1]},
		{labels[2], labels[3]},
		{ButtonCancel},
	}
}
