package geofilter

// Resource maps queryable property names to typed values. Resources are
// ephemeral, constructed per evaluation call; an absent property evaluates
// to NULL.
type Resource map[string]Value

// Get resolves a queryable reference. Text-encoded expressions keep the
// surrounding double quotes on quoted identifiers, so a second lookup is
// attempted with them stripped.
func (r Resource) Get(name string) (Value, bool) {
	if v, ok := r[name]; ok {
		return v, true
	}
	if len(name) >= 2 && name[0] == '"' && name[len(name)-1] == '"' {
		if v, ok := r[name[1:len(name)-1]]; ok {
			return v, true
		}
	}
	return Null(), false
}
