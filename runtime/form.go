package cruntime

import (
	"strconv"
	"strings"
)

// substPlayer replaces every [@You] marker with the bracketed player name.
func (vm *VM) substPlayer(s string) string {
	return strings.ReplaceAll(s, "[@You]", "["+vm.player+"]")
}

// interpolateLine renders a node line: the player marker first, then ${...}
// placeholders. A dotted placeholder reads an object field; a bare one
// renders a boolean as true/false or an integer as digits. Unknown names
// render as 0. String variables are not visible to lines.
func (vm *VM) interpolateLine(s string) string {
	s = vm.substPlayer(s)
	env := vm.globalEnv()
	return interpolate(s, func(name string) string {
		if inst, field := splitDot(name); field != "" {
			if obj, ok := env.Objects[inst]; ok {
				if v, ok := obj[field]; ok {
					return strconv.FormatInt(int64(v), 10)
				}
			}
			return "0"
		}
		if b, ok := env.BoolVars[name]; ok {
			return strconv.FormatBool(b)
		}
		if v, ok := env.IntVars[name]; ok {
			return strconv.FormatInt(int64(v), 10)
		}
		return "0"
	})
}

// interpolateShow renders a show template. Unlike lines, string variables
// take precedence here and the player marker is left untouched. Lookup falls
// through strings, booleans, integers, then object fields.
func (vm *VM) interpolateShow(s string, env *Env) string {
	return interpolate(s, func(name string) string {
		if sv, ok := env.StringVars[name]; ok {
			return sv
		}
		if b, ok := env.BoolVars[name]; ok {
			return strconv.FormatBool(b)
		}
		if v, ok := env.IntVars[name]; ok {
			return strconv.FormatInt(int64(v), 10)
		}
		if inst, field := splitDot(name); field != "" {
			if obj, ok := env.Objects[inst]; ok {
				if v, ok := obj[field]; ok {
					return strconv.FormatInt(int64(v), 10)
				}
			}
		}
		return "0"
	})
}

// interpolate expands each ${name} via resolve. An unterminated placeholder
// is kept as-is through the end of the string.
func interpolate(s string, resolve func(string) string) string {
	var b strings.Builder
	for {
		p := strings.Index(s, "${")
		if p < 0 {
			b.WriteString(s)
			return b.String()
		}
		q := strings.Index(s[p+2:], "}")
		if q < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:p])
		b.WriteString(resolve(s[p+2 : p+2+q]))
		s = s[p+2+q+1:]
	}
}
