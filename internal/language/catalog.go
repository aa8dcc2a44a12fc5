package language

import "fmt"

// Language is one entry of the supported-language catalog. Entries are
// canonical values: two entries are the same language exactly when their
// codes match, so comparison with == is sufficient.
type Language struct {
	// Code is the two-letter identifier ("de"), except for Simple.
	Code string
	// Name is the full lowercase name ("german"), matching the text-search
	// configuration names used by the indexer.
	Name string
	// Tesseract is the three-letter recognition code handed to the OCR
	// engine. Empty for Simple.
	Tesseract string
}

var (
	Danish     = Language{Code: "da", Name: "danish", Tesseract: "dan"}
	Dutch      = Language{Code: "nl", Name: "dutch", Tesseract: "nld"}
	English    = Language{Code: "en", Name: "english", Tesseract: "eng"}
	Finnish    = Language{Code: "fi", Name: "finnish", Tesseract: "fin"}
	French     = Language{Code: "fr", Name: "french", Tesseract: "fra"}
	German     = Language{Code: "de", Name: "german", Tesseract: "deu"}
	Hungarian  = Language{Code: "hu", Name: "hungarian", Tesseract: "hun"}
	Italian    = Language{Code: "it", Name: "italian", Tesseract: "ita"}
	Norwegian  = Language{Code: "no", Name: "norwegian", Tesseract: "nor"}
	Portuguese = Language{Code: "pt", Name: "portuguese", Tesseract: "por"}
	Romanian   = Language{Code: "ro", Name: "romanian", Tesseract: "ron"}
	Russian    = Language{Code: "ru", Name: "russian", Tesseract: "rus"}
	Spanish    = Language{Code: "es", Name: "spanish", Tesseract: "spa"}
	Swedish    = Language{Code: "sv", Name: "swedish", Tesseract: "swe"}
	Turkish    = Language{Code: "tr", Name: "turkish", Tesseract: "tur"}

	// Simple denotes "no language-specific stemming".
	Simple = Language{Code: "simple", Name: "simple"}
)

// All lists every catalog entry, Simple last.
var All = []Language{
	Danish, Dutch, English, Finnish, French, German, Hungarian, Italian,
	Norwegian, Portuguese, Romanian, Russian, Spanish, Swedish, Turkish,
	Simple,
}

// byKey maps both the code and the name of every entry to its canonical
// value. Built once; lookups never allocate.
var byKey = func() map[string]Language {
	m := make(map[string]Language, 2*len(All))
	for _, l := range All {
		m[l.Code] = l
		m[l.Name] = l
	}
	return m
}()

// Lookup resolves a code or a full name ("de" and "german" resolve to the
// same entry) into its canonical catalog value.
func Lookup(v string) (Language, error) {
	if l, ok := byKey[v]; ok {
		return l, nil
	}
	return Language{}, fmt.Errorf("no language found for value: %q", v)
}

// IsZero reports whether l is the unset language (no detection has run and
// no explicit value was assigned).
func (l Language) IsZero() bool {
	return l.Code == ""
}

func (l Language) String() string {
	return l.Code
}
