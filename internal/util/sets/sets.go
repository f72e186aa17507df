package sets

// Set is a simple generic hash set for comparable keys.
// Usage: s := sets.New[string]("a","b"); s.Add("c"); if s.Has("b") {...}
type Set[T comparable] map[T]struct{}

// New creates a set pre-populated with the provided values.
func New[T comparable](vals ...T) Set[T] {
	s := make(Set[T], len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts value into the set.
func (s Set[T]) Add(v T) { s[v] = struct{}{} }

// Has returns true if v is present.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Delete removes v if present.
func (s Set[T]) Delete(v T) { delete(s, v) }

// Clone returns a shallow copy.
func (s Set[T]) Clone() Set[T] {
	out := make(Set[T], len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Union concatenates the lists and drops repeated values, keeping the
// position of each value's first occurrence. The result is never nil.
func Union[T comparable](lists ...[]T) []T {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	seen := make(Set[T], n)
	out := make([]T, 0, n)
	for _, l := range lists {
		for _, v := range l {
			if seen.Has(v) {
				continue
			}
			seen.Add(v)
			out = append(out, v)
		}
	}
	return out
}
