package language

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// candidates restricts detection to the languages the catalog can actually
// represent. lingua models Norwegian as Bokmål/Nynorsk, so both stand in
// for the single "no" entry.
var candidates = []lingua.Language{
	lingua.Danish,
	lingua.Dutch,
	lingua.English,
	lingua.Finnish,
	lingua.French,
	lingua.German,
	lingua.Hungarian,
	lingua.Italian,
	lingua.Bokmal,
	lingua.Nynorsk,
	lingua.Portuguese,
	lingua.Romanian,
	lingua.Russian,
	lingua.Spanish,
	lingua.Swedish,
	lingua.Turkish,
}

var detector = lingua.NewLanguageDetectorBuilder().
	FromLanguages(candidates...).
	Build()

// Detect returns the most likely catalog language for the given text parts.
// Parts are joined with single spaces before detection. Detection never
// fails: absent input, empty input, an ambiguous result, or a code the
// catalog does not know all resolve to English.
func Detect(parts ...string) Language {
	text := strings.TrimSpace(strings.Join(parts, " "))
	if text == "" {
		return English
	}

	detected, ok := detector.DetectLanguageOf(text)
	if !ok {
		return English
	}

	code := strings.ToLower(detected.IsoCode639_1().String())
	switch code {
	case "nb", "nn":
		code = Norwegian.Code
	}

	l, err := Lookup(code)
	if err != nil {
		return English
	}
	return l
}
