package circuit

import "sort"

// NodeRegistry assigns stable integer ids to node names and tracks which
// ids belong to the ground set. "0" is just an ordinary node name (aliased
// to "gnd") until an explicit AddGround call marks it, or any other node,
// as ground. Merging two node names (via a wire-equivalence label, or a
// direct .connect) keeps the lower id and retires the higher one, never
// reclaiming an id afterward.
type NodeRegistry struct {
	nameToID map[string]int
	idToName map[int]string
	ground   map[int]bool
	nextID   int
}

func NewNodeRegistry() *NodeRegistry {
	return &NodeRegistry{
		nameToID: make(map[string]int),
		idToName: make(map[int]string),
		ground:   make(map[int]bool),
		nextID:   1,
	}
}

func (r *NodeRegistry) register(name string) int {
	id := r.nextID
	r.nextID++
	r.nameToID[name] = id
	r.idToName[id] = name
	return id
}

// ID returns the id for name, creating the node if it is new.
func (r *NodeRegistry) ID(name string) int {
	if name == "gnd" {
		name = "0"
	}
	if id, ok := r.nameToID[name]; ok {
		return id
	}
	return r.register(name)
}

// Lookup returns the id for an existing node name without creating it.
func (r *NodeRegistry) Lookup(name string) (int, bool) {
	if name == "gnd" {
		name = "0"
	}
	id, ok := r.nameToID[name]
	return id, ok
}

func (r *NodeRegistry) Name(id int) string { return r.idToName[id] }

// AddGround marks name as grounded, creating it if necessary.
func (r *NodeRegistry) AddGround(name string) int {
	id := r.ID(name)
	r.ground[id] = true
	return id
}

// RemoveGround un-marks name as grounded.
func (r *NodeRegistry) RemoveGround(name string) {
	id, ok := r.Lookup(name)
	if !ok {
		return
	}
	delete(r.ground, id)
}

func (r *NodeRegistry) IsGround(id int) bool { return r.ground[id] }

// Merge unifies nameA and nameB into the same node, keeping whichever of
// the two ids is smaller and redirecting every name alias that pointed at
// the retired id. If either side was grounded, the surviving node is
// grounded too.
func (r *NodeRegistry) Merge(nameA, nameB string) {
	idA := r.ID(nameA)
	idB := r.ID(nameB)
	if idA == idB {
		return
	}
	keep, drop := idA, idB
	if drop < keep {
		keep, drop = drop, keep
	}

	for name, id := range r.nameToID {
		if id == drop {
			r.nameToID[name] = keep
		}
	}
	delete(r.idToName, drop)
	if r.ground[drop] {
		r.ground[keep] = true
	}
	delete(r.ground, drop)
}

// Names returns every known node name in id order.
func (r *NodeRegistry) Names() []string {
	ids := r.IDs()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = r.idToName[id]
	}
	return names
}

// IDs returns every surviving node id in ascending order.
func (r *NodeRegistry) IDs() []int {
	ids := make([]int, 0, len(r.idToName))
	for id := range r.idToName {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
