package corpus

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// stopWords are first words that read wrong after "You".
var stopWords = map[string]bool{
	"the": true, "another": true, "next": true, "in": true, "monday": true,
	"back": true, "a": true, "years": true, "one": true, "two": true,
	"during": true, "months": true, "weeks": true, "seven": true,
	"three": true, "...": true, "twelve": true, "four": true, "five": true,
	"six": true, "blackness...": true, "you": true, "no": true, "yes": true,
	"up": true, "down": true, "onward": true,
}

// SecondPerson rewrites a choice label as something the reader does.
//
//	Open the door      -> You open the door
//	"Hello," I said.   -> You say "Hello,"
//	Back to the start  -> Back to the start
//
// Labels whose first word is a stop word are returned unchanged.
func SecondPerson(label string) string {
	if label == "" {
		return label
	}

	first, _, _ := strings.Cut(label, " ")
	first = strings.TrimSuffix(first, ".")
	if stopWords[strings.ToLower(first)] {
		return label
	}

	if strings.HasPrefix(label, `"`) {
		return "You say " + label[:strings.LastIndex(label, `"`)+1]
	}

	r, size := utf8.DecodeRuneInString(label)
	return "You " + string(unicode.ToLower(r)) + label[size:]
}
