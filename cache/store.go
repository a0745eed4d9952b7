package cache

import (
	bin "encoding/binary"
	"os"

	"github.com/dgraph-io/badger"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/toba/osm-router/cache/binary"
	"github.com/toba/osm-router/element"
	"github.com/toba/osm-router/stats"
)

var ErrNotFound = errors.New("not found")

const (
	prefixBounds   byte = 'b'
	prefixNode     byte = 'n'
	prefixWay      byte = 'w'
	prefixRelation byte = 'r'
)

type Options struct {
	// LRUSize is the number of decoded nodes, ways and relations (each)
	// that are kept in memory. 0 disables the read cache.
	LRUSize int
	// SyncWrites syncs each commit to disk.
	SyncWrites bool
}

var DefaultOptions = Options{LRUSize: 8192}

// Store persists the elements of parsed documents in a badger database.
// Each element is stored under a key of a single prefix byte for its kind
// and the big-endian ID, so IDs of different kinds never collide.
//
// Elements returned by the Get methods can be shared with other callers
// and must not be modified.
type Store struct {
	dir       string
	db        *badger.DB
	nodes     *lru.Cache[element.ID, *element.Node]
	ways      *lru.Cache[element.ID, *element.Way]
	relations *lru.Cache[element.ID, *element.Relation]
}

// Open opens or creates the store in dir.
func Open(dir string, opts Options) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating cache dir %s", dir)
	}
	db, err := openBadger(dir, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening cache %s", dir)
	}
	s := &Store{dir: dir, db: db}
	if opts.LRUSize > 0 {
		// New only fails for sizes <= 0
		s.nodes, _ = lru.New[element.ID, *element.Node](opts.LRUSize)
		s.ways, _ = lru.New[element.ID, *element.Way](opts.LRUSize)
		s.relations, _ = lru.New[element.ID, *element.Relation](opts.LRUSize)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func idToKeyBuf(prefix byte, id element.ID) []byte {
	b := make([]byte, 9)
	b[0] = prefix
	bin.BigEndian.PutUint64(b[1:], uint64(id))
	return b
}

func idFromKeyBuf(buf []byte) element.ID {
	return element.ID(bin.BigEndian.Uint64(buf[1:]))
}

// PutDocument adds all elements of doc to the store. Existing elements
// with the same kind and ID are replaced. The bounds are only replaced if
// doc has bounds.
func (s *Store) PutDocument(doc *element.Document) error {
	b := newBatch(s.db)

	if doc.Bounds != nil {
		if err := b.Set([]byte{prefixBounds}, binary.MarshalBounds(doc.Bounds)); err != nil {
			return errors.Wrap(err, "writing bounds")
		}
	}
	for id, n := range doc.Nodes {
		if err := b.Set(idToKeyBuf(prefixNode, id), binary.MarshalNode(n)); err != nil {
			return errors.Wrapf(err, "writing node %d", id)
		}
		if s.nodes != nil {
			s.nodes.Remove(id)
		}
	}
	for id, w := range doc.Ways {
		if err := b.Set(idToKeyBuf(prefixWay, id), binary.MarshalWay(w)); err != nil {
			return errors.Wrapf(err, "writing way %d", id)
		}
		if s.ways != nil {
			s.ways.Remove(id)
		}
	}
	for id, r := range doc.Relations {
		if err := b.Set(idToKeyBuf(prefixRelation, id), binary.MarshalRelation(r)); err != nil {
			return errors.Wrapf(err, "writing relation %d", id)
		}
		if s.relations != nil {
			s.relations.Remove(id)
		}
	}
	if err := b.Commit(); err != nil {
		return errors.Wrap(err, "committing document")
	}
	log.Debugf("stored %d entries in %s", b.n, s.dir)
	return nil
}

// Bounds returns the stored bounds or ErrNotFound.
func (s *Store) Bounds() (*element.Bounds, error) {
	data, err := get(s.db, []byte{prefixBounds})
	if err != nil {
		return nil, err
	}
	return binary.UnmarshalBounds(data)
}

func (s *Store) GetNode(id element.ID) (*element.Node, error) {
	if s.nodes != nil {
		if n, ok := s.nodes.Get(id); ok {
			stats.CacheHits.WithLabelValues("node").Inc()
			return n, nil
		}
	}
	stats.CacheMisses.WithLabelValues("node").Inc()
	data, err := get(s.db, idToKeyBuf(prefixNode, id))
	if err != nil {
		return nil, err
	}
	n, err := binary.UnmarshalNode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "node %d", id)
	}
	n.ID = id
	if s.nodes != nil {
		s.nodes.Add(id, n)
	}
	return n, nil
}

func (s *Store) GetWay(id element.ID) (*element.Way, error) {
	if s.ways != nil {
		if w, ok := s.ways.Get(id); ok {
			stats.CacheHits.WithLabelValues("way").Inc()
			return w, nil
		}
	}
	stats.CacheMisses.WithLabelValues("way").Inc()
	data, err := get(s.db, idToKeyBuf(prefixWay, id))
	if err != nil {
		return nil, err
	}
	w, err := binary.UnmarshalWay(data)
	if err != nil {
		return nil, errors.Wrapf(err, "way %d", id)
	}
	w.ID = id
	if s.ways != nil {
		s.ways.Add(id, w)
	}
	return w, nil
}

func (s *Store) GetRelation(id element.ID) (*element.Relation, error) {
	if s.relations != nil {
		if r, ok := s.relations.Get(id); ok {
			stats.CacheHits.WithLabelValues("relation").Inc()
			return r, nil
		}
	}
	stats.CacheMisses.WithLabelValues("relation").Inc()
	data, err := get(s.db, idToKeyBuf(prefixRelation, id))
	if err != nil {
		return nil, err
	}
	r, err := binary.UnmarshalRelation(data)
	if err != nil {
		return nil, errors.Wrapf(err, "relation %d", id)
	}
	r.ID = id
	if s.relations != nil {
		s.relations.Add(id, r)
	}
	return r, nil
}

// Resolve looks up the element for ref. It returns element.Unresolved if
// the element is not stored, like element.Document.Resolve.
func (s *Store) Resolve(ref element.UnresolvedRef) (element.Reference, error) {
	var (
		r   element.Reference
		err error
	)
	switch ref := ref.(type) {
	case element.NodeRef:
		r, err = s.GetNode(element.ID(ref))
	case element.WayRef:
		r, err = s.GetWay(element.ID(ref))
	case element.RelationRef:
		r, err = s.GetRelation(element.ID(ref))
	default:
		return element.Unresolved{Ref: ref}, nil
	}
	if err == ErrNotFound {
		return element.Unresolved{Ref: ref}, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// LoadDocument reads all stored elements into a new document. The read
// cache is bypassed.
func (s *Store) LoadDocument() (*element.Document, error) {
	doc := element.NewDocument()

	b, err := s.Bounds()
	if err != nil && err != ErrNotFound {
		return nil, err
	}
	doc.Bounds = b

	err = iter(s.db, []byte{prefixNode}, func(key, val []byte) error {
		n, err := binary.UnmarshalNode(val)
		if err != nil {
			return err
		}
		n.ID = idFromKeyBuf(key)
		doc.AddNode(n)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "loading nodes")
	}
	err = iter(s.db, []byte{prefixWay}, func(key, val []byte) error {
		w, err := binary.UnmarshalWay(val)
		if err != nil {
			return err
		}
		w.ID = idFromKeyBuf(key)
		doc.AddWay(w)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "loading ways")
	}
	err = iter(s.db, []byte{prefixRelation}, func(key, val []byte) error {
		r, err := binary.UnmarshalRelation(val)
		if err != nil {
			return err
		}
		r.ID = idFromKeyBuf(key)
		doc.AddRelation(r)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "loading relations")
	}
	return doc, nil
}
