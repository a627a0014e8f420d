package loader

import (
	"github.com/nathoo/casecore/engine/conversation"
	"github.com/nathoo/casecore/staging"
	lua "github.com/yuin/gopher-lua"
)

// Keys the loader reserves in the tables it hands back to Lua.
const (
	keyTag       = "__tag"
	keyCriterion = "__criterion"
	keyKind      = "__kind"
	keyID        = "__id"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerScripts(L)
	registerCriteria(L)
	registerActions(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Case { title = "...", start = "...", ... }
	L.SetGlobal("Case", L.NewFunction(func(L *lua.LState) int {
		coll.info = L.CheckTable(1)
		return 0
	}))

	// Character "id" { ... }, and the same curried form for the rest.
	curried := map[string]*[]rawDef{
		"Character": &coll.characters,
		"Evidence":  &coll.evidence,
		"Partner":   &coll.partners,
		"Location":  &coll.locations,
		"Encounter": &coll.encounters,
	}
	for name, dst := range curried {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			id := L.CheckString(1)
			L.Push(L.NewFunction(func(L *lua.LState) int {
				*dst = append(*dst, rawDef{id: id, table: L.CheckTable(1)})
				return 0
			}))
			return 1
		}))
	}

	// Flag("id", "description"), Sound("id", "path"), Music("id", "path")
	assets := map[string]*[]rawAsset{
		"Flag":  &coll.flags,
		"Sound": &coll.sounds,
		"Music": &coll.music,
	}
	for name, dst := range assets {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			*dst = append(*dst, rawAsset{id: L.CheckString(1), value: L.OptString(2, "")})
			return 0
		}))
	}
}

// registerScripts registers the script markers. Conversation "id" { ... }
// tags the table with its kind and id and returns it for an Encounter to
// list.
func registerScripts(L *lua.LState) {
	for _, kind := range []string{"Conversation", "Interrogation", "Confrontation", "Topic"} {
		L.SetGlobal(kind, L.NewFunction(func(L *lua.LState) int {
			id := L.CheckString(1)
			L.Push(L.NewFunction(func(L *lua.LState) int {
				tbl := L.CheckTable(1)
				tbl.RawSetString(keyKind, lua.LString(kind))
				tbl.RawSetString(keyID, lua.LString(id))
				L.Push(tbl)
				return 1
			}))
			return 1
		}))
	}
}

func registerCriteria(L *lua.LState) {
	leaves := map[string]string{
		"FlagSet":         "flag_set",
		"EvidencePresent": "evidence_present",
		"PartnerPresent":  "partner_present",
	}
	for name, typ := range leaves {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			L.Push(criterion(L, typ, L.CheckString(1)))
			return 1
		}))
	}

	L.SetGlobal("TutorialsEnabled", L.NewFunction(func(L *lua.LState) int {
		L.Push(criterion(L, "tutorials_enabled", ""))
		return 1
	}))

	// And(a, b, ...) and Or(a, b, ...) fold left into binary nodes.
	for name, typ := range map[string]string{"And": "and", "Or": "or"} {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			acc := L.CheckTable(1)
			L.CheckTable(2)
			for i := 2; i <= L.GetTop(); i++ {
				acc = criterion(L, typ, "", acc, L.CheckTable(i))
			}
			L.Push(acc)
			return 1
		}))
	}

	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		L.Push(criterion(L, "not", "", L.CheckTable(1)))
		return 1
	}))
}

func criterion(L *lua.LState, typ, value string, children ...*lua.LTable) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString(keyCriterion, lua.LString(typ))
	if value != "" {
		tbl.RawSetString("value", lua.LString(value))
	}
	if len(children) > 0 {
		list := L.NewTable()
		for _, c := range children {
			list.Append(c)
		}
		tbl.RawSetString("children", list)
	}
	return tbl
}

// simpleActions lists the actions built from positional arguments. Each
// registers a Lua global named after its tag; args name the staging
// fields the arguments fill. A table after the last argument is merged in
// as extra fields.
var simpleActions = []struct {
	tag  staging.Tag
	args []string
}{
	{staging.TagCharacterChange, []string{"position", "character", "emotion"}},
	{staging.TagSetFlag, []string{"flag", "value"}},
	{staging.TagShowDialog, []string{"speaker", "text"}},
	{staging.TagEnableConversation, []string{"conversation", "encounter"}},
	{staging.TagEnableEvidence, []string{"evidence", "notification"}},
	{staging.TagUpdateEvidence, []string{"evidence", "new_evidence", "notification"}},
	{staging.TagDisableEvidence, []string{"evidence"}},
	{staging.TagEnableCutscene, []string{"cutscene"}},
	{staging.TagPlayBgm, []string{"bgm"}},
	{staging.TagPauseBgm, nil},
	{staging.TagResumeBgm, nil},
	{staging.TagStopBgm, []string{"instant"}},
	{staging.TagPlayAmbiance, []string{"ambiance"}},
	{staging.TagPauseAmbiance, nil},
	{staging.TagResumeAmbiance, nil},
	{staging.TagStopAmbiance, []string{"instant"}},
	{staging.TagStartAnimation, []string{"animation"}},
	{staging.TagStopAnimation, nil},
	{staging.TagSetPartner, []string{"partner", "notification"}},
	{staging.TagGoToPresentWrongEvidence, nil},
	{staging.TagLockConversation, []string{"conversation", "unlock", "encounter"}},
	{staging.TagExitEncounter, nil},
	{staging.TagMoveToLocation, []string{"location"}},
	{staging.TagMoveToZoomedView, []string{"zoomed_view"}},
	{staging.TagEndCase, []string{"completes_case"}},
	{staging.TagExitMultipleChoice, nil},
	{staging.TagEnableFastForward, nil},
	{staging.TagDisableFastForward, nil},
	{staging.TagBeginBreakdown, []string{"position"}},
	{staging.TagEndBreakdown, nil},
	{staging.TagPlaySound, []string{"sound"}},
	{staging.TagShowNotification, []string{"text"}},
	{staging.TagExitInterrogationRepeat, nil},
	{staging.TagSetParticipants, []string{"player", "opponent"}},
	{staging.TagSetIconOffset, []string{"player_offset", "opponent_offset"}},
	{staging.TagSetHealth, []string{"player", "opponent"}},
	{staging.TagEnableTopic, []string{"topic"}},
	{staging.TagRestartConfrontation, nil},
	{staging.TagRestartConfrontationTopicSelection, nil},
}

func registerActions(L *lua.LState) {
	for _, sa := range simpleActions {
		L.SetGlobal(string(sa.tag), positional(L, sa.tag, sa.args))
	}

	// Say("left", "text") is shorthand for ShowDialog.
	L.SetGlobal("Say", positional(L, staging.TagShowDialog, []string{"speaker", "text"}))

	// BranchOnCondition(cond, { then... }, { else... })
	L.SetGlobal("BranchOnCondition", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString(keyTag, lua.LString(staging.TagBranchOnCondition))
		tbl.RawSetString("condition", L.CheckTable(1))
		tbl.RawSetString("then", L.OptTable(2, L.NewTable()))
		tbl.RawSetString("else", L.OptTable(3, L.NewTable()))
		L.Push(tbl)
		return 1
	}))

	// Constructs written as a single table: MustPresentEvidence { ... }.
	tagged := map[string]staging.Tag{
		"MustPresentEvidence":         staging.TagBeginMustPresentEvidence,
		"ShowInterrogation":           staging.TagBeginShowInterrogation,
		"ConfrontationTopicSelection": staging.TagBeginConfrontationTopicSelection,
	}
	for name, tag := range tagged {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			tbl.RawSetString(keyTag, lua.LString(tag))
			L.Push(tbl)
			return 1
		}))
	}

	// MultipleChoice { { "text", { actions } }, ... }
	// InterrogationRepeat { actions... }
	wrapped := map[string]struct {
		tag staging.Tag
		key string
	}{
		"MultipleChoice":      {staging.TagBeginMultipleChoice, "options"},
		"InterrogationRepeat": {staging.TagBeginInterrogationRepeat, "actions"},
	}
	for name, w := range wrapped {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			tbl := L.NewTable()
			tbl.RawSetString(keyTag, lua.LString(w.tag))
			tbl.RawSetString(w.key, L.CheckTable(1))
			L.Push(tbl)
			return 1
		}))
	}

	// RestartDecision { restart = { ... }, give_up = { ... } } is staged as
	// the two-option multiple choice the builder recognizes.
	L.SetGlobal("RestartDecision", L.NewFunction(func(L *lua.LState) int {
		arg := L.CheckTable(1)
		options := L.NewTable()
		for _, o := range []struct{ text, key string }{
			{conversation.RestartOptionText, "restart"},
			{conversation.GiveUpOptionText, "give_up"},
		} {
			opt := L.NewTable()
			opt.RawSetString("text", lua.LString(o.text))
			opt.RawSetString("actions", optTable(L, arg, o.key))
			options.Append(opt)
		}
		tbl := L.NewTable()
		tbl.RawSetString(keyTag, lua.LString(staging.TagBeginMultipleChoice))
		tbl.RawSetString("options", options)
		L.Push(tbl)
		return 1
	}))
}

// positional returns a Lua function building a tag's action table from
// positional arguments.
func positional(L *lua.LState, tag staging.Tag, args []string) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString(keyTag, lua.LString(tag))
		for i, name := range args {
			if v := L.Get(i + 1); v != lua.LNil {
				tbl.RawSetString(name, v)
			}
		}
		if extra, ok := L.Get(len(args) + 1).(*lua.LTable); ok {
			extra.ForEach(func(k, v lua.LValue) {
				if ks, ok := k.(lua.LString); ok {
					tbl.RawSetString(string(ks), v)
				}
			})
		}
		L.Push(tbl)
		return 1
	})
}

func optTable(L *lua.LState, tbl *lua.LTable, key string) *lua.LTable {
	if t := getTable(tbl, key); t != nil {
		return t
	}
	return L.NewTable()
}
