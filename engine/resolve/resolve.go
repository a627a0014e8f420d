// Package resolve maps names typed by the player to content ids.
package resolve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/casecore/content"
	"github.com/nathoo/casecore/engine/conversation"
	"github.com/nathoo/casecore/types"
)

// Candidate is something the player can refer to by id, name or 1-based
// position in a listing.
type Candidate struct {
	ID   string
	Name string
}

// AmbiguityError indicates multiple candidates matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates no candidate matched a name.
type NotFoundError struct {
	Name string
	What string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s matches %q", e.What, e.Name)
}

// Resolve picks the candidate name refers to. what describes the kind of
// candidate for error messages.
func Resolve(name, what string, cands []Candidate) (string, error) {
	name = strings.TrimSpace(name)
	nameLower := strings.ToLower(name)

	// 1. Position in the listing.
	if n, err := strconv.Atoi(name); err == nil {
		if n >= 1 && n <= len(cands) {
			return cands[n-1].ID, nil
		}
		return "", &NotFoundError{Name: name, What: what}
	}

	// 2. Exact id or name.
	for _, c := range cands {
		if strings.ToLower(c.ID) == nameLower || strings.ToLower(c.Name) == nameLower {
			return c.ID, nil
		}
	}

	// 3. Partial match.
	var matches []string
	for _, c := range cands {
		if matchesName(c, nameLower) {
			matches = append(matches, c.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{Name: name, What: what}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguityError{Name: name, Candidates: matches}
	}
}

// Evidence resolves name among the evidence the player holds.
func Evidence(p *types.Progress, reg *content.Registry, name string) (string, error) {
	cands := make([]Candidate, len(p.Evidence))
	for i, id := range p.Evidence {
		cands[i] = Candidate{ID: id, Name: reg.EvidenceName(id)}
	}
	return Resolve(name, "evidence", cands)
}

// Script resolves name among scripts.
func Script(scripts []conversation.Script, name string) (conversation.Script, error) {
	cands := make([]Candidate, len(scripts))
	for i, s := range scripts {
		cands[i] = Candidate{ID: s.Root().ID, Name: s.Root().Name}
	}
	id, err := Resolve(name, "conversation", cands)
	if err != nil {
		return nil, err
	}
	for _, s := range scripts {
		if s.Root().ID == id {
			return s, nil
		}
	}
	return nil, &NotFoundError{Name: name, What: "conversation"}
}

// Option resolves name among option texts and returns its index.
func Option(options []string, name string) (int, error) {
	cands := make([]Candidate, len(options))
	for i, o := range options {
		cands[i] = Candidate{ID: strconv.Itoa(i), Name: o}
	}
	id, err := Resolve(name, "option", cands)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(id)
}

// matchesName checks if a candidate's name or id matches the query.
// Supports word-based partial match and underscore normalization.
func matchesName(c Candidate, nameLower string) bool {
	entityNameLower := strings.ToLower(c.Name)
	// Word-based partial match: query matches any word in the name.
	// e.g. "badge" matches "attorney's badge".
	for _, word := range strings.Fields(entityNameLower) {
		if word == nameLower {
			return true
		}
	}
	if nameLower != "" && strings.HasPrefix(entityNameLower, nameLower) {
		return true
	}
	// Underscore normalization: "autopsy report" matches id "autopsy_report".
	return strings.ReplaceAll(nameLower, " ", "_") == strings.ToLower(c.ID)
}
