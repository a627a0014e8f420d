package loader

import (
	"fmt"

	"github.com/nathoo/casecore/staging"
	lua "github.com/yuin/gopher-lua"
)

// structural names the keys of a construct that hold child actions or
// start lists rather than plain fields.
var structural = map[staging.Tag][]string{
	staging.TagBranchOnCondition:                {"condition", "then", "else"},
	staging.TagBeginMustPresentEvidence:         {"correct", "wrong", "end_requested"},
	staging.TagBeginMultipleChoice:              {"options"},
	staging.TagBeginInterrogationRepeat:         {"actions"},
	staging.TagBeginShowInterrogation:           {"press", "evidence", "wrong", "end_requested"},
	staging.TagBeginConfrontationTopicSelection: {"initial", "topics", "player_defeated"},
	staging.TagLockConversation:                 {"unlock"},
	staging.TagEnableEvidence:                   {"notification"},
	staging.TagUpdateEvidence:                   {"notification"},
	staging.TagSetPartner:                       {"notification"},
}

// stager flattens nested action tables into staging entries, assigning
// each entry its index and filling in the branch start indices the tree
// builder reads back.
type stager struct {
	base int
	out  []staging.Entry
}

// stageActions flattens a list of nested action tables. The first entry
// gets index base.
func stageActions(list *lua.LTable, base int) ([]staging.Entry, error) {
	s := &stager{base: base}
	if err := s.list(list); err != nil {
		return nil, err
	}
	return s.out, nil
}

func (s *stager) next() int { return s.base + len(s.out) }

// emit appends e and returns its position in out.
func (s *stager) emit(e staging.Entry) int {
	e.Index = s.next()
	s.out = append(s.out, e)
	return len(s.out) - 1
}

func (s *stager) list(tbl *lua.LTable) error {
	if tbl == nil {
		return nil
	}
	for i := 1; i <= tbl.MaxN(); i++ {
		at, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			return fmt.Errorf("action %d is a %s, not an action", i, tbl.RawGetInt(i).Type())
		}
		if err := s.action(at); err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
	}
	return nil
}

// branch stages a child list and returns the index it starts at, or -1
// when it is empty.
func (s *stager) branch(tbl *lua.LTable) (int, error) {
	if tbl == nil || tbl.MaxN() == 0 {
		return -1, nil
	}
	start := s.next()
	return start, s.list(tbl)
}

func (s *stager) action(tbl *lua.LTable) error {
	tag := staging.Tag(getString(tbl, keyTag))
	if tag == "" {
		return fmt.Errorf("table is not an action")
	}
	e := staging.New(tag, fields(tbl, structural[tag]...))

	switch tag {
	case staging.TagBranchOnCondition:
		crit, err := compileCriterion(getTable(tbl, "condition"))
		if err != nil {
			return err
		}
		e.Criterion = crit
		at := s.emit(e)
		t, err := s.branch(getTable(tbl, "then"))
		if err != nil {
			return err
		}
		f, err := s.branch(getTable(tbl, "else"))
		if err != nil {
			return err
		}
		s.out[at].Fields["true_index"] = t
		s.out[at].Fields["false_index"] = f
		s.emit(staging.New(staging.TagBranchIfFalse, nil))

	case staging.TagBeginMustPresentEvidence:
		at := s.emit(e)
		for _, k := range []struct{ key, field string }{
			{"correct", "correct_index"},
			{"wrong", "wrong_index"},
			{"end_requested", "end_requested_index"},
		} {
			idx, err := s.branch(getTable(tbl, k.key))
			if err != nil {
				return fmt.Errorf("%s: %w", k.key, err)
			}
			s.out[at].Fields[k.field] = idx
		}
		s.emit(staging.New(staging.TagEndMustPresentEvidence, nil))

	case staging.TagBeginMultipleChoice:
		at := s.emit(e)
		opts := getTable(tbl, "options")
		if opts == nil {
			return fmt.Errorf("multiple choice has no options")
		}
		for i := 1; i <= opts.MaxN(); i++ {
			opt, ok := opts.RawGetInt(i).(*lua.LTable)
			if !ok {
				return fmt.Errorf("option %d is not a table", i)
			}
			text, actions := optionParts(opt)
			idx, err := s.branch(actions)
			if err != nil {
				return fmt.Errorf("option %q: %w", text, err)
			}
			s.out[at].Options = append(s.out[at].Options, staging.Option{Text: text, Index: idx})
		}
		s.emit(staging.New(staging.TagEndMultipleChoice, nil))

	case staging.TagBeginInterrogationRepeat:
		s.emit(e)
		if err := s.list(getTable(tbl, "actions")); err != nil {
			return err
		}
		s.emit(staging.New(staging.TagEndInterrogationRepeat, nil))

	case staging.TagBeginShowInterrogation:
		at := s.emit(e)
		press, err := s.branch(getTable(tbl, "press"))
		if err != nil {
			return fmt.Errorf("press: %w", err)
		}
		s.out[at].Fields["press_index"] = press
		if evs := getTable(tbl, "evidence"); evs != nil {
			for i := 1; i <= evs.MaxN(); i++ {
				ev, ok := evs.RawGetInt(i).(*lua.LTable)
				if !ok {
					return fmt.Errorf("evidence branch %d is not a table", i)
				}
				id, actions := optionParts(ev)
				if id == "" {
					id = getString(ev, "evidence")
				}
				idx, err := s.branch(actions)
				if err != nil {
					return fmt.Errorf("evidence %q: %w", id, err)
				}
				s.out[at].Evidence = append(s.out[at].Evidence, staging.EvidenceStart{EvidenceID: id, Index: idx})
			}
		}
		for _, k := range []struct{ key, field string }{
			{"wrong", "wrong_evidence_index"},
			{"end_requested", "end_requested_index"},
		} {
			idx, err := s.branch(getTable(tbl, k.key))
			if err != nil {
				return fmt.Errorf("%s: %w", k.key, err)
			}
			s.out[at].Fields[k.field] = idx
		}
		s.emit(staging.New(staging.TagEndShowInterrogation, nil))

	case staging.TagBeginConfrontationTopicSelection:
		at := s.emit(e)
		initial, err := s.branch(getTable(tbl, "initial"))
		if err != nil {
			return fmt.Errorf("initial: %w", err)
		}
		s.out[at].Fields["initial_index"] = initial
		if topics := getTable(tbl, "topics"); topics != nil {
			for i := 1; i <= topics.MaxN(); i++ {
				t, ok := topics.RawGetInt(i).(*lua.LTable)
				if !ok || getString(t, keyKind) != "Topic" {
					return fmt.Errorf("topic %d is not a Topic", i)
				}
				id := getString(t, keyID)
				idx, err := s.branch(getTable(t, "actions"))
				if err != nil {
					return fmt.Errorf("topic %q: %w", id, err)
				}
				s.out[at].Topics = append(s.out[at].Topics, staging.TopicStart{
					ID:      id,
					Name:    getString(t, "name"),
					Enabled: getBool(t, "enabled", false),
					Index:   idx,
				})
			}
		}
		defeated, err := s.branch(getTable(tbl, "player_defeated"))
		if err != nil {
			return fmt.Errorf("player_defeated: %w", err)
		}
		s.out[at].Fields["player_defeated_index"] = defeated
		s.emit(staging.New(staging.TagEndConfrontationTopicSelection, nil))

	case staging.TagLockConversation:
		if u := getTable(tbl, "unlock"); u != nil {
			crit, err := compileCriterion(u)
			if err != nil {
				return fmt.Errorf("unlock: %w", err)
			}
			e.Criterion = crit
		}
		s.emit(e)

	case staging.TagEnableEvidence, staging.TagUpdateEvidence, staging.TagSetPartner:
		n := tbl.RawGetString("notification")
		if n == lua.LNil {
			s.emit(e)
			break
		}
		e.Fields["notify"] = true
		s.emit(e)
		note := staging.New(staging.TagShowNotification, nil)
		switch v := n.(type) {
		case lua.LString:
			note.Fields["text"] = string(v)
		case *lua.LTable:
			note.Fields = fields(v)
		default:
			return fmt.Errorf("notification is a %s", n.Type())
		}
		s.emit(note)

	default:
		s.emit(e)
	}
	return nil
}

// optionParts reads { "text", { actions } } or { text = ..., actions = ... }.
func optionParts(tbl *lua.LTable) (string, *lua.LTable) {
	text := getString(tbl, "text")
	if s, ok := tbl.RawGetInt(1).(lua.LString); ok && text == "" {
		text = string(s)
	}
	actions := getTable(tbl, "actions")
	if t, ok := tbl.RawGetInt(2).(*lua.LTable); ok && actions == nil {
		actions = t
	}
	return text, actions
}

// fields converts the string-keyed entries of tbl to staging fields,
// skipping reserved keys and the ones named in skip.
func fields(tbl *lua.LTable, skip ...string) map[string]any {
	out := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		ks, ok := k.(lua.LString)
		if !ok {
			return
		}
		key := string(ks)
		if key == keyTag {
			return
		}
		for _, s := range skip {
			if s == key {
				return
			}
		}
		out[key] = toGoValue(v)
	})
	return out
}

// stageLegacy converts a flat legacy action list. Entries carry their tag
// under "tag" and may give their original index under "index"; branch
// starts are indices into the same list.
func stageLegacy(list *lua.LTable, base int) ([]staging.Entry, error) {
	var out []staging.Entry
	for i := 1; i <= list.MaxN(); i++ {
		tbl, ok := list.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("entry %d is not a table", i)
		}
		tag := getString(tbl, "tag")
		if tag == "" {
			return nil, fmt.Errorf("entry %d has no tag", i)
		}
		e := staging.New(staging.Tag(tag), fields(tbl, "tag", "index", "condition", "options", "topics", "evidence"))
		e.Index = base + i - 1
		if v, ok := tbl.RawGetString("index").(lua.LNumber); ok {
			e.Index = int(v)
		}
		if c := getTable(tbl, "condition"); c != nil {
			crit, err := compileCriterion(c)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			e.Criterion = crit
		}
		if opts := getTable(tbl, "options"); opts != nil {
			for j := 1; j <= opts.MaxN(); j++ {
				if o, ok := opts.RawGetInt(j).(*lua.LTable); ok {
					e.Options = append(e.Options, staging.Option{Text: getString(o, "text"), Index: getInt(o, "index", -1)})
				}
			}
		}
		if topics := getTable(tbl, "topics"); topics != nil {
			for j := 1; j <= topics.MaxN(); j++ {
				if t, ok := topics.RawGetInt(j).(*lua.LTable); ok {
					e.Topics = append(e.Topics, staging.TopicStart{
						ID:      getString(t, "id"),
						Name:    getString(t, "name"),
						Enabled: getBool(t, "enabled", false),
						Index:   getInt(t, "index", -1),
					})
				}
			}
		}
		switch ev := tbl.RawGetString("evidence").(type) {
		case *lua.LTable:
			for j := 1; j <= ev.MaxN(); j++ {
				if t, ok := ev.RawGetInt(j).(*lua.LTable); ok {
					e.Evidence = append(e.Evidence, staging.EvidenceStart{EvidenceID: getString(t, "evidence"), Index: getInt(t, "index", -1)})
				}
			}
		case lua.LString:
			e.Fields["evidence"] = string(ev)
		}
		out = append(out, e)
	}
	return out, nil
}

// compileCriterion converts a criterion table built by FlagSet, And and
// the other condition helpers.
func compileCriterion(tbl *lua.LTable) (*staging.Criterion, error) {
	if tbl == nil {
		return nil, fmt.Errorf("missing condition")
	}
	typ := getString(tbl, keyCriterion)
	if typ == "" {
		return nil, fmt.Errorf("table is not a condition")
	}
	c := &staging.Criterion{Type: typ, Value: getString(tbl, "value")}
	if children := getTable(tbl, "children"); children != nil {
		for i := 1; i <= children.MaxN(); i++ {
			child, ok := children.RawGetInt(i).(*lua.LTable)
			if !ok {
				return nil, fmt.Errorf("%s operand %d is not a condition", typ, i)
			}
			cc, err := compileCriterion(child)
			if err != nil {
				return nil, err
			}
			c.Children = append(c.Children, cc)
		}
	}
	return c, nil
}
