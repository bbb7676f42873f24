package models

import "strings"

// LanguageTier группа языков по доступности переводчиков
type LanguageTier string

const (
	LanguageTierCommon   LanguageTier = "common"
	LanguageTierStandard LanguageTier = "standard"
	LanguageTierRare     LanguageTier = "rare"
)

// Language язык, на который можно забронировать перевод
type Language struct {
	Code string       `json:"code"`
	Name string       `json:"name"`
	Tier LanguageTier `json:"tier"`
}

// WorkflowStep шаг процесса бронирования
type WorkflowStep struct {
	Order       int    `json:"order"`
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// OnboardingPhase этап подключения переводчика к платформе
type OnboardingPhase struct {
	Order        int      `json:"order"`
	Key          string   `json:"key"`
	Title        string   `json:"title"`
	Requirements []string `json:"requirements"`
}

var languages = []Language{
	{Code: "es", Name: "Spanish", Tier: LanguageTierCommon},
	{Code: "zh", Name: "Mandarin Chinese", Tier: LanguageTierCommon},
	{Code: "fr", Name: "French", Tier: LanguageTierCommon},
	{Code: "vi", Name: "Vietnamese", Tier: LanguageTierCommon},
	{Code: "ar", Name: "Arabic", Tier: LanguageTierStandard},
	{Code: "ru", Name: "Russian", Tier: LanguageTierStandard},
	{Code: "ko", Name: "Korean", Tier: LanguageTierStandard},
	{Code: "pt", Name: "Portuguese", Tier: LanguageTierStandard},
	{Code: "tl", Name: "Tagalog", Tier: LanguageTierStandard},
	{Code: "ht", Name: "Haitian Creole", Tier: LanguageTierStandard},
	{Code: "asl", Name: "American Sign Language", Tier: LanguageTierStandard},
	{Code: "so", Name: "Somali", Tier: LanguageTierRare},
	{Code: "prs", Name: "Dari", Tier: LanguageTierRare},
	{Code: "ps", Name: "Pashto", Tier: LanguageTierRare},
	{Code: "mh", Name: "Marshallese", Tier: LanguageTierRare},
	{Code: "ti", Name: "Tigrinya", Tier: LanguageTierRare},
}

var bookingWorkflow = []WorkflowStep{
	{Order: 1, Key: "quote", Title: "Get a quote", Description: "Choose the service type, duration and modifiers to see the price."},
	{Order: 2, Key: "book", Title: "Book", Description: "Confirm the language, schedule and location of the session."},
	{Order: 3, Key: "match", Title: "Interpreter match", Description: "A qualified interpreter accepts the job."},
	{Order: 4, Key: "session", Title: "Session", Description: "The interpreter delivers the session or translation."},
	{Order: 5, Key: "invoice", Title: "Invoice", Description: "The client is billed and the interpreter payout is scheduled."},
}

var onboardingPhases = []OnboardingPhase{
	{Order: 1, Key: "application", Title: "Application", Requirements: []string{"profile", "languages", "resume"}},
	{Order: 2, Key: "verification", Title: "Verification", Requirements: []string{"identity", "background_check", "certifications"}},
	{Order: 3, Key: "assessment", Title: "Language assessment", Requirements: []string{"oral_exam", "terminology_test"}},
	{Order: 4, Key: "training", Title: "Training", Requirements: []string{"code_of_ethics", "platform_walkthrough", "hipaa"}},
	{Order: 5, Key: "activation", Title: "Activation", Requirements: []string{"payout_details", "availability"}},
}

// Languages возвращает копию списка языков
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// LookupLanguage ищет язык по коду без учёта регистра
func LookupLanguage(code string) (Language, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, l := range languages {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// BookingWorkflow возвращает копию шагов бронирования
func BookingWorkflow() []WorkflowStep {
	out := make([]WorkflowStep, len(bookingWorkflow))
	copy(out, bookingWorkflow)
	return out
}

// OnboardingPhases возвращает копию этапов подключения переводчика
func OnboardingPhases() []OnboardingPhase {
	out := make([]OnboardingPhase, len(onboardingPhases))
	for i, p := range onboardingPhases {
		p.Requirements = append([]string(nil), p.Requirements...)
		out[i] = p
	}
	return out
}
