package domain

// Record is an ordered set of named string fields extracted from one
// response element.
type Record struct {
	names  []string
	values map[string]string
}

func NewRecord() Record {
	return Record{values: map[string]string{}}
}

// Set stores value under name, keeping the first insertion position.
func (r *Record) Set(name, value string) {
	if r.values == nil {
		r.values = map[string]string{}
	}
	if _, exists := r.values[name]; !exists {
		r.names = append(r.names, name)
	}
	r.values[name] = value
}

func (r Record) Lookup(name string) Optional[string] {
	value, ok := r.values[name]
	if !ok {
		return None[string]()
	}
	return Some(value)
}

// Get returns the field value or "" when absent.
func (r Record) Get(name string) string {
	return r.values[name]
}

func (r Record) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

func (r Record) Len() int {
	return len(r.names)
}
