package pql

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/provq/provq/provenance"
)

// Group is an immutable tuple of group-key values with a precomputed
// hash. Two groups are the same group iff their value tuples are
// element-wise equal.
type Group struct {
	values []interface{}
	hash   uint64
}

// newGroup computes the hash over type-tagged encodings of the values
// so that, say, the string "1" and the number 1 land in different
// groups.
func newGroup(values []interface{}) *Group {
	d := xxhash.New()
	var buf [8]byte
	for _, v := range values {
		switch t := v.(type) {
		case nil:
			d.Write([]byte{0})
		case int64:
			d.Write([]byte{1})
			binary.BigEndian.PutUint64(buf[:], uint64(t))
			d.Write(buf[:])
		case string:
			d.Write([]byte{2})
			binary.BigEndian.PutUint64(buf[:], uint64(len(t)))
			d.Write(buf[:])
			d.WriteString(t)
		case provenance.EventType:
			d.Write([]byte{3})
			binary.BigEndian.PutUint64(buf[:], uint64(t))
			d.Write(buf[:])
		default:
			s := stringify(t)
			d.Write([]byte{4})
			binary.BigEndian.PutUint64(buf[:], uint64(len(s)))
			d.Write(buf[:])
			d.WriteString(s)
		}
	}
	return &Group{values: values, hash: d.Sum64()}
}

// Values returns the group-key values in GROUP BY order.
func (g *Group) Values() []interface{} { return g.values }

// Hash returns the precomputed tuple hash.
func (g *Group) Hash() uint64 { return g.hash }

// Equal reports element-wise tuple equality.
func (g *Group) Equal(other *Group) bool {
	if g == other {
		return true
	}
	if other == nil || len(g.values) != len(other.values) {
		return false
	}
	for i, v := range g.values {
		if v != other.values[i] {
			return false
		}
	}
	return true
}

type groupEntry struct {
	group *Group
	value interface{}
}

// groupMap associates per-group state with groups, bucketing by hash
// and chaining on tuple equality. It preserves first-insertion order.
type groupMap struct {
	buckets map[uint64][]*groupEntry
	order   []*Group
}

func newGroupMap() *groupMap {
	return &groupMap{buckets: make(map[uint64][]*groupEntry)}
}

func (m *groupMap) find(g *Group) *groupEntry {
	for _, entry := range m.buckets[g.hash] {
		if entry.group.Equal(g) {
			return entry
		}
	}
	return nil
}

// lookup returns the stored value for the group, if any.
func (m *groupMap) lookup(g *Group) (interface{}, bool) {
	if entry := m.find(g); entry != nil {
		return entry.value, true
	}
	return nil, false
}

// store sets the value for the group, registering the group on first
// sight.
func (m *groupMap) store(g *Group, v interface{}) {
	if entry := m.find(g); entry != nil {
		entry.value = v
		return
	}
	m.buckets[g.hash] = append(m.buckets[g.hash], &groupEntry{group: g, value: v})
	m.order = append(m.order, g)
}

// groups returns all groups in first-insertion order.
func (m *groupMap) groups() []*Group { return m.order }

func (m *groupMap) len() int { return len(m.order) }
