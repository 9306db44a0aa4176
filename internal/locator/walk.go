package locator

import "iter"

// MaxDepth is how deep a walk descends before it silently stops, payloads are
// trees but nothing bounds their depth.
const MaxDepth = 64

// Predicate classifies a container node, it must tolerate any shape.
type Predicate func(v *Value) bool

// Walk yields every node reachable from v through object values and array
// elements, depth first and in document order. Each call starts a fresh
// traversal.
func Walk(v *Value) iter.Seq[*Value] {
	return WalkDepth(v, MaxDepth)
}

// WalkDepth is Walk with an explicit depth guard, the root is at depth 0.
func WalkDepth(v *Value, maxDepth int) iter.Seq[*Value] {
	return func(yield func(*Value) bool) {
		walk(v, 0, maxDepth, yield)
	}
}

func walk(v *Value, depth, maxDepth int, yield func(*Value) bool) bool {
	if v == nil || depth > maxDepth {
		return true
	}
	if !yield(v) {
		return false
	}
	switch v.kind {
	case Array:
		for _, item := range v.items {
			if !walk(item, depth+1, maxDepth, yield) {
				return false
			}
		}
	case Object:
		for _, m := range v.members {
			if !walk(m.Value, depth+1, maxDepth, yield) {
				return false
			}
		}
	}
	return true
}

// Find yields the objects and arrays under v (v included) matching pred.
// Scalars and nulls are never matches.
func Find(v *Value, pred Predicate) iter.Seq[*Value] {
	return func(yield func(*Value) bool) {
		for node := range Walk(v) {
			if !node.IsContainer() || !pred(node) {
				continue
			}
			if !yield(node) {
				return
			}
		}
	}
}

// First returns the first match of pred in traversal order, or nil.
func First(v *Value, pred Predicate) *Value {
	for node := range Find(v, pred) {
		return node
	}
	return nil
}

// HasKey matches objects with a non-null member named key.
func HasKey(key string) Predicate {
	return func(v *Value) bool {
		return !v.Get(key).IsNull()
	}
}

// ValuesOf yields the value of every member named key found anywhere under v.
func ValuesOf(v *Value, key string) iter.Seq[*Value] {
	return func(yield func(*Value) bool) {
		for node := range Find(v, HasKey(key)) {
			if !yield(node.Get(key)) {
				return
			}
		}
	}
}
