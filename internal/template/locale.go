package template

import (
	"fmt"
	"time"
)

var germanMonths = [...]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

var germanWeekdays = [...]string{
	"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag",
}

// LongDate renders the full weekday date for the given language code, e.g.
// "Samstag, 1. März 2025" or "Saturday, March 1, 2025". Unknown languages
// fall back to English.
func LongDate(t time.Time, lang string) string {
	if isGerman(lang) {
		return fmt.Sprintf("%s, %d. %s %d",
			germanWeekdays[t.Weekday()], t.Day(), germanMonths[t.Month()-1], t.Year())
	}
	return fmt.Sprintf("%s, %s %d, %d",
		t.Weekday().String(), t.Month().String(), t.Day(), t.Year())
}

// ShortDate renders the numeric date for the given language code, e.g.
// "1.3.2025" or "3/1/2025".
func ShortDate(t time.Time, lang string) string {
	if isGerman(lang) {
		return fmt.Sprintf("%d.%d.%d", t.Day(), int(t.Month()), t.Year())
	}
	return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
}

func isGerman(lang string) bool {
	return lang == "de" || lang == "DE" || lang == "De"
}

// CreationStamp is the generation timestamp printed onto documents, always
// taken in the Berlin zone regardless of the meeting's own zone.
func CreationStamp(now time.Time, lang string) string {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err == nil {
		now = now.In(berlin)
	}
	return ShortDate(now, lang) + " " + now.Format("15:04")
}
