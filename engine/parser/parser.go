// Package parser converts command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strconv"
	"strings"

	"github.com/nathoo/casecore/types"
)

// Verbs the runtime understands.
const (
	VerbNext     = "next"
	VerbChoose   = "choose"
	VerbPresent  = "present"
	VerbPress    = "press"
	VerbEnd      = "end"
	VerbTalk     = "talk"
	VerbEvidence = "evidence"
	VerbLook     = "look"
)

var verbAliases = map[string]string{
	// Continue
	"continue": VerbNext,
	"c":        VerbNext,
	"n":        VerbNext,
	"go":       VerbNext,

	// Choose
	"pick":   VerbChoose,
	"select": VerbChoose,
	"option": VerbChoose,

	// Present
	"show":      VerbPresent,
	"use":       VerbPresent,
	"objection": VerbPresent,
	"p":         VerbPresent,

	// Press
	"pr":     VerbPress,
	"holdit": VerbPress,

	// End
	"back":   VerbEnd,
	"done":   VerbEnd,
	"stop":   VerbEnd,
	"giveup": VerbEnd,

	// Talk
	"ask":   VerbTalk,
	"speak": VerbTalk,
	"chat":  VerbTalk,
	"start": VerbTalk,
	"t":     VerbTalk,

	// Court record
	"record":    VerbEvidence,
	"ev":        VerbEvidence,
	"inv":       VerbEvidence,
	"inventory": VerbEvidence,
	"i":         VerbEvidence,

	// Look
	"l":     VerbLook,
	"where": VerbLook,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true, "my": true,
}

// Parse converts a raw command string into an Intent. A bare number chooses
// that option.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	if len(words) == 1 {
		if _, err := strconv.Atoi(words[0]); err == nil {
			return types.Intent{Verb: VerbChoose, Object: words[0]}
		}
	}

	// Handle multi-word verb phrases before general parsing.
	words = expandMultiWordVerbs(words)

	// Apply verb aliases.
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := stripArticles(words[1:])

	// "present the knife to the witness" -> knife
	if verb == VerbPresent {
		rest = cutAt(rest, "to")
	}

	return types.Intent{
		Verb:   verb,
		Object: strings.Join(rest, " "),
	}
}

// expandMultiWordVerbs handles "talk to", "hold it", "court record" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "talk", "speak", "chat":
		if words[1] == "to" || words[1] == "with" || words[1] == "about" {
			return append([]string{VerbTalk}, words[2:]...)
		}
	case "ask":
		if words[1] == "about" {
			return append([]string{VerbTalk}, words[2:]...)
		}
	case "hold":
		if words[1] == "it" {
			return append([]string{VerbPress}, words[2:]...)
		}
	case "court":
		if words[1] == "record" {
			return append([]string{VerbEvidence}, words[2:]...)
		}
	case "give":
		if words[1] == "up" {
			return append([]string{VerbEnd}, words[2:]...)
		}
	case "look":
		if words[1] == "around" {
			return []string{VerbLook}
		}
	}

	return words
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

// cutAt drops word and everything after it.
func cutAt(words []string, word string) []string {
	for i, w := range words {
		if w == word {
			return words[:i]
		}
	}
	return words
}
