package loader

import (
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/settle"
)

// settingsGlobal is the fallback global consulted when a Lua chunk does
// not return its settings table.
const settingsGlobal = "settings"

// LuaLoader loads settings from Lua scripts. The chunk runs in a fresh
// interpreter state; its returned table, or failing that its global
// "settings" table, becomes the store. Table iteration follows key
// insertion order, so scripted sections keep their written order. Lua
// values are typed, so inference is off by default.
type LuaLoader struct{}

var _ settle.Loader = LuaLoader{}

func init() {
	settle.RegisterLoader(LuaLoader{})
}

// Extensions lists the file extensions this loader claims.
func (LuaLoader) Extensions() []string { return []string{"lua"} }

// InferByDefault reports whether inference runs when the caller did not
// choose.
func (LuaLoader) InferByDefault() bool { return false }

// Load runs the script and converts its settings table into ordered
// entries.
func (LuaLoader) Load(data []byte) ([]settle.Entry, error) {
	L := lua.NewState()
	defer L.Close()

	if err := L.DoString(string(data)); err != nil {
		return nil, &settle.ParseError{Message: err.Error(), Err: err}
	}

	table, ok := L.Get(-1).(*lua.LTable)
	if !ok {
		table, ok = L.GetGlobal(settingsGlobal).(*lua.LTable)
	}
	if !ok {
		return nil, &settle.ParseError{
			Message: "script must return a table or define a settings table",
		}
	}

	var entries []settle.Entry
	forEachOrdered(table, func(k, v lua.LValue) {
		key := k.String()
		if sub, isTable := v.(*lua.LTable); isTable && sub.Len() == 0 {
			sec := []settle.Entry{}
			forEachOrdered(sub, func(ik, iv lua.LValue) {
				sec = append(sec, settle.Entry{Key: ik.String(), Value: luaValue(iv)})
			})
			entries = append(entries, settle.Entry{Key: key, Value: sec})
			return
		}
		entries = append(entries, settle.Entry{Key: key, Value: luaValue(v)})
	})
	return entries, nil
}

// forEachOrdered iterates a table the way lua's next does: array part
// first, then the remaining keys in insertion order.
func forEachOrdered(t *lua.LTable, fn func(k, v lua.LValue)) {
	k, v := t.Next(lua.LNil)
	for k != lua.LNil {
		fn(k, v)
		k, v = t.Next(k)
	}
}

// luaValue converts a Lua value into plain Go values. Tables with a
// non-empty array part become lists; the rest become maps. Numbers are
// split into int64 and float64, since Lua only has floats.
func luaValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == math.Trunc(f) && !math.IsInf(f, 0) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(val)
	case *lua.LTable:
		if n := val.Len(); n > 0 {
			out := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				out = append(out, luaValue(val.RawGetInt(i)))
			}
			return out
		}
		out := make(map[string]any)
		val.ForEach(func(k, item lua.LValue) {
			out[k.String()] = luaValue(item)
		})
		return out
	default:
		return nil
	}
}
