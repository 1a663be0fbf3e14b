package domain

import "time"

// Entry is the store-resident record for one translatable message across all
// languages. (Ref, Key) identifies it: re-importing the same pair updates in
// place, never duplicates.
type Entry struct {
	ID           int64             `json:"id"`
	Ref          string            `json:"ref"`
	Key          string            `json:"key"`
	Comment      string            `json:"comment"`
	Translations map[string]string `json:"translations"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Translation reports the stored text for lang. ok is false when the slot is
// absent or empty; both mean "not yet translated".
func (e *Entry) Translation(lang string) (string, bool) {
	t := e.Translations[lang]
	return t, t != ""
}

// SetTranslation writes text for lang, allocating the map when needed.
func (e *Entry) SetTranslation(lang, text string) {
	if e.Translations == nil {
		e.Translations = map[string]string{}
	}
	e.Translations[lang] = text
}

// ImportReport counts what one import pass did to the store.
type ImportReport struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}
