package neat

// InnovationTracker hands out innovation numbers and hidden node IDs for one run.
//
// Every structural (in, out) pair maps to exactly one innovation number for
// the lifetime of the tracker, so the same structure arising independently in
// two genomes aligns during crossover and distance computation. Splitting the
// same connection in two genomes yields the same hidden node ID.
//
// A tracker is owned by a Population and is not safe for concurrent use;
// mutation only happens inside Evolve, after every episode has finished.
type InnovationTracker struct {
	nextInnovation int
	nextNodeID     int
	numOutputs     int
	connections    map[ConnectionKey]int
	splits         map[int]int // split innovation -> hidden node ID
}

// InnovationState is the exported form of a tracker, used by checkpoints.
type InnovationState struct {
	NextInnovation int
	NextNodeID     int
	NumOutputs     int
	Connections    map[ConnectionKey]int
	Splits         map[int]int
}

// NewInnovationTracker creates a tracker whose first hidden node ID is numOutputs.
func NewInnovationTracker(numOutputs int) *InnovationTracker {
	t := &InnovationTracker{numOutputs: numOutputs}
	t.Reset()
	return t
}

// Reset forgets every assigned number. Only call it between independent runs:
// resetting mid-run would let two different structures share an innovation.
func (t *InnovationTracker) Reset() {
	t.nextInnovation = 1
	t.nextNodeID = t.numOutputs
	t.connections = make(map[ConnectionKey]int)
	t.splits = make(map[int]int)
}

// Connection returns the innovation number of the (in, out) pair, assigning
// a fresh one the first time the pair is seen.
func (t *InnovationTracker) Connection(in, out int) int {
	key := ConnectionKey{In: in, Out: out}
	if inno, ok := t.connections[key]; ok {
		return inno
	}
	inno := t.nextInnovation
	t.nextInnovation++
	t.connections[key] = inno
	return inno
}

// SplitNode returns the hidden node ID used when the connection with the given
// innovation number is split by an add-node mutation.
func (t *InnovationTracker) SplitNode(innovation int) int {
	if id, ok := t.splits[innovation]; ok {
		return id
	}
	id := t.NewNodeID()
	t.splits[innovation] = id
	return id
}

// NewNodeID returns a hidden node ID never handed out before.
func (t *InnovationTracker) NewNodeID() int {
	id := t.nextNodeID
	t.nextNodeID++
	return id
}

// Innovations returns how many innovation numbers have been assigned.
func (t *InnovationTracker) Innovations() int {
	return t.nextInnovation - 1
}

// State exports the tracker.
func (t *InnovationTracker) State() InnovationState {
	s := InnovationState{
		NextInnovation: t.nextInnovation,
		NextNodeID:     t.nextNodeID,
		NumOutputs:     t.numOutputs,
		Connections:    make(map[ConnectionKey]int, len(t.connections)),
		Splits:         make(map[int]int, len(t.splits)),
	}
	for k, v := range t.connections {
		s.Connections[k] = v
	}
	for k, v := range t.splits {
		s.Splits[k] = v
	}
	return s
}

// TrackerFromState rebuilds a tracker exported with State.
func TrackerFromState(s InnovationState) *InnovationTracker {
	t := &InnovationTracker{
		nextInnovation: s.NextInnovation,
		nextNodeID:     s.NextNodeID,
		numOutputs:     s.NumOutputs,
		connections:    make(map[ConnectionKey]int, len(s.Connections)),
		splits:         make(map[int]int, len(s.Splits)),
	}
	for k, v := range s.Connections {
		t.connections[k] = v
	}
	for k, v := range s.Splits {
		t.splits[k] = v
	}
	return t
}
