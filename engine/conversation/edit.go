package conversation

import (
	"fmt"

	"github.com/nathoo/casecore/content"
	"github.com/nathoo/casecore/engine/action"
)

// Edit returns a deep copy of the action at p. Changes to the copy take
// effect only when passed to Commit.
func Edit(s Script, p action.Path) (action.Action, error) {
	a, ok := action.At(s.Root().Actions, p)
	if !ok {
		return nil, fmt.Errorf("no action at %s in %s", p, s.Root().ID)
	}
	return a.Clone(), nil
}

// Commit copies an edited action back onto the action at p and recomputes
// the cached states of the script.
func Commit(s Script, p action.Path, edited action.Action, reg *content.Registry) error {
	a, ok := action.At(s.Root().Actions, p)
	if !ok {
		return fmt.Errorf("no action at %s in %s", p, s.Root().ID)
	}
	if a.Kind() != edited.Kind() {
		return fmt.Errorf("cannot commit %s over %s at %s", edited.Kind(), a.Kind(), p)
	}
	action.CopyProperties(a, edited)
	s.UpdateAndCacheConversationStates(reg)
	return nil
}

// Insert adds a at index i of the list addressed by parent and branch, or
// of the root list when parent is nil, then recomputes cached states.
func Insert(s Script, parent action.Path, branch, i int, a action.Action, reg *content.Registry) error {
	list := &s.Root().Actions
	if parent != nil {
		owner, ok := action.At(*list, parent)
		if !ok {
			return fmt.Errorf("no action at %s in %s", parent, s.Root().ID)
		}
		bs := owner.Branches()
		if branch < 0 || branch >= len(bs) {
			return fmt.Errorf("%s at %s has no branch %d", owner.Kind(), parent, branch)
		}
		list = bs[branch].Actions
	}
	if i < 0 || i > len(*list) {
		return fmt.Errorf("insert position %d out of range", i)
	}
	*list = append(*list, nil)
	copy((*list)[i+1:], (*list)[i:])
	(*list)[i] = a
	s.UpdateAndCacheConversationStates(reg)
	return nil
}

// Remove deletes the action at p and recomputes cached states.
func Remove(s Script, p action.Path, reg *content.Registry) error {
	if len(p) == 0 {
		return fmt.Errorf("empty path")
	}
	list := &s.Root().Actions
	if len(p) > 1 {
		owner, ok := action.At(*list, p[:len(p)-1])
		if !ok {
			return fmt.Errorf("no action at %s in %s", p, s.Root().ID)
		}
		bs := owner.Branches()
		b := p[len(p)-1].Branch
		if b < 0 || b >= len(bs) {
			return fmt.Errorf("no action at %s in %s", p, s.Root().ID)
		}
		list = bs[b].Actions
	}
	i := p[len(p)-1].Index
	if i < 0 || i >= len(*list) {
		return fmt.Errorf("no action at %s in %s", p, s.Root().ID)
	}
	*list = append((*list)[:i], (*list)[i+1:]...)
	s.UpdateAndCacheConversationStates(reg)
	return nil
}
