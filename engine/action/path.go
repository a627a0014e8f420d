package action

import (
	"fmt"
	"reflect"
	"strings"
)

// Step descends one level: Branch selects a child list of the action
// reached so far and Index an action within it. The first step of a Path
// indexes the root list and its Branch is ignored.
type Step struct {
	Branch int
	Index  int
}

// Path addresses an action within a tree. Editors hold paths instead of
// pointers into the tree.
type Path []Step

// Root returns the path of the i-th action of the root list.
func Root(i int) Path {
	return Path{{Index: i}}
}

// Child returns the path of the index-th action in the given branch of the
// action at p.
func (p Path) Child(branch, index int) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, Step{Branch: branch, Index: index})
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		if i == 0 {
			parts[i] = fmt.Sprint(s.Index)
		} else {
			parts[i] = fmt.Sprintf("%d.%d", s.Branch, s.Index)
		}
	}
	return strings.Join(parts, "/")
}

// containing returns the list holding the action p addresses.
func containing(root *List, p Path) (*List, int, bool) {
	if len(p) == 0 {
		return nil, 0, false
	}
	list := root
	for i, s := range p {
		if i > 0 {
			if s.Index < 0 {
				return nil, 0, false
			}
			parent := (*list)[p[i-1].Index]
			bs := parent.Branches()
			if s.Branch < 0 || s.Branch >= len(bs) {
				return nil, 0, false
			}
			list = bs[s.Branch].Actions
		}
		if s.Index < 0 || s.Index >= len(*list) {
			return nil, 0, false
		}
	}
	return list, p[len(p)-1].Index, true
}

// At returns the action at p.
func At(root List, p Path) (Action, bool) {
	list, i, ok := containing(&root, p)
	if !ok {
		return nil, false
	}
	return (*list)[i], true
}

// Walk calls fn for every action in the tree, parents before children.
func Walk(root List, fn func(p Path, a Action)) {
	walk(root, nil, 0, fn)
}

func walk(l List, parent Path, branch int, fn func(Path, Action)) {
	for i, a := range l {
		p := Root(i)
		if parent != nil {
			p = parent.Child(branch, i)
		}
		fn(p, a)
		for b, br := range a.Branches() {
			walk(*br.Actions, p, b, fn)
		}
	}
}

// CopyProperties copies every field of src onto dst, leaving dst's cached
// state alone. Child lists are deep-copied. It panics if the two actions
// are of different kinds.
func CopyProperties(dst, src Action) {
	if dst.Kind() != src.Kind() {
		panic(fmt.Sprintf("action: CopyProperties from %s to %s", src.Kind(), dst.Kind()))
	}
	b := *dst.base()
	reflect.ValueOf(dst).Elem().Set(reflect.ValueOf(src.Clone()).Elem())
	*dst.base() = b
}

// Replace copies src onto the action at p. It returns false if p does not
// address an action.
func Replace(root List, p Path, src Action) bool {
	dst, ok := At(root, p)
	if !ok {
		return false
	}
	CopyProperties(dst, src)
	return true
}
