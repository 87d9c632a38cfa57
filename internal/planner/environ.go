package planner

import "strings"

// environ is an ordered "key=value" list with replace-in-place semantics.
type environ struct {
	entries []string
	index   map[string]int
}

func newEnviron(base []string) *environ {
	e := &environ{
		entries: make([]string, 0, len(base)+4),
		index:   make(map[string]int, len(base)),
	}
	for _, kv := range base {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		e.set(k, v)
	}
	return e
}

func (e *environ) get(key string) (string, bool) {
	i, ok := e.index[key]
	if !ok {
		return "", false
	}
	_, v, _ := strings.Cut(e.entries[i], "=")
	return v, true
}

func (e *environ) set(key, value string) {
	kv := key + "=" + value
	if i, ok := e.index[key]; ok {
		e.entries[i] = kv
		return
	}
	e.index[key] = len(e.entries)
	e.entries = append(e.entries, kv)
}

func (e *environ) list() []string {
	return append([]string(nil), e.entries...)
}
