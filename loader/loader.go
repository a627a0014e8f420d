package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nathoo/casecore/casefile"
	"github.com/nathoo/casecore/engine"
	lua "github.com/yuin/gopher-lua"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	info       *lua.LTable
	characters []rawDef
	evidence   []rawDef
	partners   []rawDef
	locations  []rawDef
	encounters []rawDef
	flags      []rawAsset
	sounds     []rawAsset
	music      []rawAsset
}

// Load reads a case from path and returns it prepared and validated. path
// is a directory of .lua files, a single .lua file, or a YAML case file.
// Validation warnings are printed to stderr; errors fail the load.
func Load(path string) (*engine.Case, error) {
	cs, ve, err := Inspect(path)
	if err != nil {
		return nil, err
	}
	if err := report(ve); err != nil {
		return nil, err
	}
	return cs, nil
}

// Inspect reads and prepares the case at path like Load, but returns the
// validation problems instead of reporting them.
func Inspect(path string) (*engine.Case, *ValidationError, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading case %s: %w", path, err)
	}

	var cs *engine.Case
	switch {
	case info.IsDir():
		cs, err = loadLua(path, nil)
	case strings.HasSuffix(path, ".lua"):
		cs, err = loadLua(filepath.Dir(path), []string{filepath.Base(path)})
	default:
		cs, err = loadCaseFile(path)
	}
	if err != nil {
		return nil, nil, err
	}

	cs.Prepare()
	return cs, check(cs), nil
}

// loadLua executes the named files in dir, or every .lua file in dir when
// files is nil, and compiles what they define. The Lua VM is discarded
// after loading.
func loadLua(dir string, files []string) (*engine.Case, error) {
	if files == nil {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("reading case directory %s: %w", dir, err)
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
				files = append(files, e.Name())
			}
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no .lua files found in %s", dir)
		}
		files = sortedLuaFiles(files)
	}

	// Create sandboxed VM.
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range files {
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	cs, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling case data: %w", err)
	}
	return cs, nil
}

func loadCaseFile(path string) (*engine.Case, error) {
	f, err := casefile.Load(path)
	if err != nil {
		return nil, err
	}
	cs, err := f.Case()
	if err != nil {
		return nil, fmt.Errorf("building case from %s: %w", path, err)
	}
	return cs, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	// Base library (print, type, tostring, tonumber, pairs, ipairs, etc.)
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach outside the case directory or make
// loading non-deterministic.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("random", lua.LNil)
		tbl.RawSetString("randomseed", lua.LNil)
	}
}

// sortedLuaFiles returns .lua files with case.lua first and the rest
// sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var caseFile string
	var others []string
	for _, f := range files {
		if f == "case.lua" {
			caseFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if caseFile != "" {
		return append([]string{caseFile}, others...)
	}
	return others
}
