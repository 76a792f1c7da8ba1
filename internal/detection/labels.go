package detection

// LabelResolver is the union-find forest over provisional labels.
//
// Labels are dense integers starting at 1, so the forest is a flat slice
// indexed by label. A zero parent means the label is a root. Links always
// point from a larger label to a strictly smaller one, which keeps the
// forest acyclic and makes the smallest label of each set its root.
type LabelResolver struct {
	parent []uint32
}

// NewLabelResolver returns a resolver with room for capacity labels.
func NewLabelResolver(capacity int) *LabelResolver {
	return &LabelResolver{parent: make([]uint32, 1, capacity+1)}
}

// Add registers label as a new root. Labels must be added in increasing
// order without gaps.
func (r *LabelResolver) Add(label uint32) {
	for uint32(len(r.parent)) <= label {
		r.parent = append(r.parent, 0)
	}
}

// Len returns the number of labels registered.
func (r *LabelResolver) Len() int { return len(r.parent) - 1 }

// Parent returns label's immediate parent, if it has one.
func (r *LabelResolver) Parent(label uint32) (uint32, bool) {
	if int(label) >= len(r.parent) || r.parent[label] == 0 {
		return 0, false
	}
	return r.parent[label], true
}

// Find returns the root of label and compresses the path it walked.
// Label 0 and unknown labels are their own root.
func (r *LabelResolver) Find(label uint32) uint32 {
	if int(label) >= len(r.parent) {
		return label
	}

	root := label
	for r.parent[root] != 0 {
		root = r.parent[root]
	}

	for label != root {
		next := r.parent[label]
		r.parent[label] = root
		label = next
	}
	return root
}

// Union merges the sets holding a and b and returns the surviving root,
// which is the smaller of the two roots.
func (r *LabelResolver) Union(a, b uint32) uint32 {
	ra, rb := r.Find(a), r.Find(b)
	switch {
	case ra == rb:
		return ra
	case ra < rb:
		r.parent[rb] = ra
		return ra
	default:
		r.parent[ra] = rb
		return rb
	}
}
