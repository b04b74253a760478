package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// NotProvided is shown for profile fields the user never filled in.
const NotProvided = "Не указано"

// DateLayout is the layout used for registration dates built from Unix timestamps.
const DateLayout = "2006-01-02"

// Profile is the public view of a user who has completed setup.
// Values are raw JSON so that stored strings and numbers pass through as-is.
type Profile struct {
	Name             json.RawMessage `json:"name"`
	Username         json.RawMessage `json:"username"`
	Age              json.RawMessage `json:"age"`
	City             json.RawMessage `json:"city"`
	RegistrationDate json.RawMessage `json:"registration_date"`
	TotalReports     json.RawMessage `json:"total_reports"`
	ActiveReports    json.RawMessage `json:"active_reports"`
	ResolvedReports  json.RawMessage `json:"resolved_reports"`
}

// Settings is the notification preference view of a user.
type Settings struct {
	StreamingEnabled json.RawMessage `json:"streaming_enabled"`
	UpdatesEnabled   json.RawMessage `json:"updates_enabled"`
	ChangesEnabled   json.RawMessage `json:"changes_enabled"`
	PromoEnabled     json.RawMessage `json:"promo_enabled"`
}

var (
	rawTrue        = json.RawMessage(`true`)
	rawZero        = json.RawMessage(`0`)
	rawEmpty       = json.RawMessage(`""`)
	rawNotProvided = mustEncode(NotProvided)
)

// DefaultSettings returns the settings of a user the store has never seen.
func DefaultSettings() Settings {
	return Settings{
		StreamingEnabled: rawTrue,
		UpdatesEnabled:   rawTrue,
		ChangesEnabled:   rawTrue,
		PromoEnabled:     rawTrue,
	}
}

// Projector builds profile and settings views from records.
type Projector struct {
	loc *time.Location
}

// NewProjector creates a projector that renders dates in loc.
// A nil loc means local system time.
func NewProjector(loc *time.Location) *Projector {
	if loc == nil {
		loc = time.Local
	}
	return &Projector{loc: loc}
}

// Profile builds the public profile of rec.
// It returns ErrProfileNotReady unless setup_completed is true.
func (p *Projector) Profile(rec *Record) (Profile, error) {
	if !rec.Bool(FieldSetupCompleted, false) {
		return Profile{}, ErrProfileNotReady
	}

	return Profile{
		Name:             fieldOr(rec, FieldName, rawNotProvided),
		Username:         fieldOr(rec, FieldUsername, rawEmpty),
		Age:              fieldOr(rec, FieldAge, rawNotProvided),
		City:             fieldOr(rec, FieldCity, rawNotProvided),
		RegistrationDate: p.registrationDate(rec),
		TotalReports:     fieldOr(rec, FieldTotalReports, rawZero),
		ActiveReports:    fieldOr(rec, FieldActiveReports, rawZero),
		ResolvedReports:  fieldOr(rec, FieldResolvedReports, rawZero),
	}, nil
}

// Settings builds the settings view of rec. A nil record yields defaults.
func (p *Projector) Settings(rec *Record) Settings {
	if rec == nil {
		return DefaultSettings()
	}
	return Settings{
		StreamingEnabled: fieldOr(rec, FieldStreamingEnabled, rawTrue),
		UpdatesEnabled:   fieldOr(rec, FieldUpdatesEnabled, rawTrue),
		ChangesEnabled:   fieldOr(rec, FieldChangesEnabled, rawTrue),
		PromoEnabled:     fieldOr(rec, FieldPromoEnabled, rawTrue),
	}
}

// registrationDate converts digit-only values, stored either as a JSON string
// or a JSON integer, from Unix seconds to a calendar date.
func (p *Projector) registrationDate(rec *Record) json.RawMessage {
	raw, ok := rec.Get(FieldRegistrationDate)
	if !ok {
		return rawNotProvided
	}

	text := string(raw)
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		text = s
	}
	if !isDigits(text) {
		return raw
	}

	secs, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return raw
	}
	return mustEncode(time.Unix(secs, 0).In(p.loc).Format(DateLayout))
}

func fieldOr(rec *Record, field string, def json.RawMessage) json.RawMessage {
	if raw, ok := rec.Get(field); ok {
		return raw
	}
	return def
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func mustEncode(v any) json.RawMessage {
	raw, err := encodeValue(v)
	if err != nil {
		panic(err)
	}
	return raw
}
