package printer

import "fmt"

// Vars is an ordered set of placeholder bindings. The zero value and a nil
// *Vars are both empty.
//
// Set mutates the receiver and is meant for extending the current scope.
// Clone and With return an independent copy for sibling scopes that must not
// observe each other's bindings.
type Vars struct {
	keys []string
	vals map[string]string
}

// NewVars builds a context from alternating key, value arguments.
func NewVars(kv ...string) *Vars {
	v := &Vars{}
	v.setPairs(kv)
	return v
}

func (v *Vars) Set(key, value string) *Vars {
	if v.vals == nil {
		v.vals = make(map[string]string)
	}
	if _, ok := v.vals[key]; !ok {
		v.keys = append(v.keys, key)
	}
	v.vals[key] = value
	return v
}

func (v *Vars) Lookup(key string) (string, bool) {
	if v == nil {
		return "", false
	}
	val, ok := v.vals[key]
	return val, ok
}

// Get returns the bound value or "" when key is unbound.
func (v *Vars) Get(key string) string {
	val, _ := v.Lookup(key)
	return val
}

func (v *Vars) Clone() *Vars {
	out := &Vars{}
	if v == nil {
		return out
	}
	out.keys = append(make([]string, 0, len(v.keys)), v.keys...)
	out.vals = make(map[string]string, len(v.vals))
	for k, val := range v.vals {
		out.vals[k] = val
	}
	return out
}

// With returns a copy of v extended with the given key, value pairs.
func (v *Vars) With(kv ...string) *Vars {
	out := v.Clone()
	out.setPairs(kv)
	return out
}

// Keys returns the bound keys in first-binding order.
func (v *Vars) Keys() []string {
	if v == nil {
		return nil
	}
	return append([]string(nil), v.keys...)
}

func (v *Vars) Len() int {
	if v == nil {
		return 0
	}
	return len(v.keys)
}

func (v *Vars) setPairs(kv []string) {
	if len(kv)%2 != 0 {
		panic(fmt.Sprintf("printer: odd number of key/value arguments: %q", kv))
	}
	for i := 0; i < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}
}
