package ecs

import "sort"

// componentAccessor is a runtime stand-in for a compile-time component
// reference inside a Filter. Go generics cannot express a variadic
// Require<C...>/Exclude<C...> type list (no generic methods, no type
// lists), so a Filter is built at runtime from these instead; access checks
// that would be static assertions in the source become the panics in
// observer.go's ObsGet/ObsHas family.
type componentAccessor struct {
	id ComponentTypeID
	// checkID is the type an access-check rule (requires/excludes) compares
	// against. It equals id for ordinary components; for Updated[C] it is
	// unwrapped to C's id, so requiring Updated[C] still permits reading C
	// through ObsGet while the literal Updated[C] identity (id) still
	// governs filter matching and filter-key derivation.
	checkID  ComponentTypeID
	name     string
	entities func(w *World) []Entity
}

func accessorFor[C any]() componentAccessor {
	id := TypeID[C]()
	checkID := id
	var zero C
	if u, ok := any(zero).(accessCheckAccessor); ok {
		checkID = u.accessCheckID()
	}
	return componentAccessor{
		id:       id,
		checkID:  checkID,
		name:     TypeName[C](),
		entities: func(w *World) []Entity { return EntitiesOf[C](w) },
	}
}

// Filter is the runtime (Require, Exclude) pair described by spec §4.4. The
// zero value is RunEveryFrame: matches the empty set, used by systems that
// need no entities.
type Filter struct {
	require []componentAccessor
	exclude []componentAccessor
}

// RunEveryFrame is the filter with no Require and no Exclude components; it
// always evaluates to the empty entity set.
var RunEveryFrame = Filter{}

// Require1 through Require4 build a Filter requiring the given component
// types. Go's lack of variadic generics means arity is capped; four
// required types covers every filter in this codebase's own example
// systems and matches the source's typical filter width.
func Require1[A any]() Filter {
	return Filter{require: []componentAccessor{accessorFor[A]()}}
}

func Require2[A, B any]() Filter {
	return Filter{require: []componentAccessor{accessorFor[A](), accessorFor[B]()}}
}

func Require3[A, B, C any]() Filter {
	return Filter{require: []componentAccessor{accessorFor[A](), accessorFor[B](), accessorFor[C]()}}
}

func Require4[A, B, C, D any]() Filter {
	return Filter{require: []componentAccessor{accessorFor[A](), accessorFor[B](), accessorFor[C](), accessorFor[D]()}}
}

// WithExclude1 through WithExclude3 return a copy of f with the given
// excluded component types appended.
func WithExclude1[A any](f Filter) Filter {
	f.exclude = append(append([]componentAccessor(nil), f.exclude...), accessorFor[A]())
	return f
}

func WithExclude2[A, B any](f Filter) Filter {
	f.exclude = append(append([]componentAccessor(nil), f.exclude...), accessorFor[A](), accessorFor[B]())
	return f
}

func WithExclude3[A, B, C any](f Filter) Filter {
	f.exclude = append(append([]componentAccessor(nil), f.exclude...), accessorFor[A](), accessorFor[B](), accessorFor[C]())
	return f
}

// requires reports whether id appears in f's Require list, comparing
// against each accessor's access-check id (Updated[C] is stripped to C).
func (f Filter) requires(id ComponentTypeID) bool {
	for _, a := range f.require {
		if a.checkID == id {
			return true
		}
	}
	return false
}

// excludes reports whether id appears in f's Exclude list, comparing
// against each accessor's access-check id (Updated[C] is stripped to C).
func (f Filter) excludes(id ComponentTypeID) bool {
	for _, a := range f.exclude {
		if a.checkID == id {
			return true
		}
	}
	return false
}

// evaluate computes (∩ Require) ∖ (∪ Exclude) against w's canonical
// per-storage entity lists, per spec §4.4: intersect the Require lists
// length-sorted-ascending (bounding intermediate size), union the Exclude
// lists likewise, then take the difference. All intermediate vectors come
// from the scratch pool.
func (f Filter) evaluate(w *World) []Entity {
	if len(f.require) == 0 {
		return nil
	}

	required := intersectAll(w, f.require)
	if len(f.exclude) == 0 || len(required) == 0 {
		return required
	}

	excluded := unionAll(w, f.exclude)
	return sortedDifference(required, excluded)
}

func intersectAll(w *World, accessors []componentAccessor) []Entity {
	lists := lengthSorted(w, accessors)
	if len(lists) == 1 {
		// Single-type Require short-circuits to the storage's own list.
		return append([]Entity(nil), lists[0]...)
	}

	result := append([]Entity(nil), lists[0]...)
	buf := globalScratch.get()
	defer globalScratch.put(buf)
	for _, next := range lists[1:] {
		*buf = (*buf)[:0]
		*buf = intersectSorted(result, next, *buf)
		result = append(result[:0], *buf...)
		if len(result) == 0 {
			break
		}
	}
	return result
}

func unionAll(w *World, accessors []componentAccessor) []Entity {
	lists := lengthSorted(w, accessors)
	if len(lists) == 1 {
		return append([]Entity(nil), lists[0]...)
	}

	result := append([]Entity(nil), lists[0]...)
	buf := globalScratch.get()
	defer globalScratch.put(buf)
	for _, next := range lists[1:] {
		*buf = (*buf)[:0]
		*buf = unionSorted(result, next, *buf)
		result = append(result[:0], *buf...)
	}
	return result
}

func lengthSorted(w *World, accessors []componentAccessor) [][]Entity {
	lists := make([][]Entity, len(accessors))
	for i, a := range accessors {
		lists[i] = a.entities(w)
	}
	sort.Slice(lists, func(i, j int) bool { return len(lists[i]) < len(lists[j]) })
	return lists
}

func intersectSorted(a, b []Entity, out []Entity) []Entity {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

func unionSorted(a, b []Entity, out []Entity) []Entity {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
