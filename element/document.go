package element

// A Document is a complete, in-memory OSM extract. Nodes, ways and
// relations are keyed by their ID.
//
// A Document is built once by the parser and only read afterwards. It is
// safe for concurrent reads.
type Document struct {
	// Bounds is nil if the extract has no (valid) bounds element.
	Bounds    *Bounds
	Nodes     map[ID]*Node
	Ways      map[ID]*Way
	Relations map[ID]*Relation
}

func NewDocument() *Document {
	return &Document{
		Nodes:     make(map[ID]*Node),
		Ways:      make(map[ID]*Way),
		Relations: make(map[ID]*Relation),
	}
}

// AddNode inserts n. A previous node with the same ID is replaced.
func (d *Document) AddNode(n *Node) {
	d.Nodes[n.ID] = n
}

// AddWay inserts w. A previous way with the same ID is replaced.
func (d *Document) AddWay(w *Way) {
	d.Ways[w.ID] = w
}

// AddRelation inserts r. A previous relation with the same ID is replaced.
func (d *Document) AddRelation(r *Relation) {
	d.Relations[r.ID] = r
}

// Resolve looks up the element ref points to. It returns the matching *Node,
// *Way or *Relation of the document, or Unresolved if the document does not
// contain the element. Missing elements are common in extracts and not an
// error.
func (d *Document) Resolve(ref UnresolvedRef) Reference {
	switch r := ref.(type) {
	case NodeRef:
		if n, ok := d.Node(r); ok {
			return n
		}
	case WayRef:
		if w, ok := d.Way(r); ok {
			return w
		}
	case RelationRef:
		if rel, ok := d.Relation(r); ok {
			return rel
		}
	}
	return Unresolved{Ref: ref}
}

// Node returns the node ref points to.
func (d *Document) Node(ref NodeRef) (*Node, bool) {
	n, ok := d.Nodes[ID(ref)]
	return n, ok
}

// Way returns the way ref points to.
func (d *Document) Way(ref WayRef) (*Way, bool) {
	w, ok := d.Ways[ID(ref)]
	return w, ok
}

// Relation returns the relation ref points to.
func (d *Document) Relation(ref RelationRef) (*Relation, bool) {
	r, ok := d.Relations[ID(ref)]
	return r, ok
}
