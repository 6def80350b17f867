// Package diag produces JSON introspection snapshots of a Queue or Table
// for debugging and logging, in the style of the teacher's DeviceInfo/Info()
// pair.
package diag

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/nlowry/go-statecore/identity"
	"github.com/nlowry/go-statecore/mqueue"
	"github.com/nlowry/go-statecore/stt"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// QueueInfo is a point-in-time snapshot of a Queue's occupancy and cursor
// state.
type QueueInfo struct {
	CapacityBytes int  `json:"capacity_bytes"`
	OccupiedBytes int  `json:"occupied_bytes"`
	Empty         bool `json:"empty"`
	HasWrapped    bool `json:"has_wrapped"`
	Write         int  `json:"write"`
	Read          int  `json:"read"`
	Wrap          int  `json:"wrap"`
}

// QueueSnapshot captures q's current state.
func QueueSnapshot(q *mqueue.Queue) QueueInfo {
	write, read, wrap := q.Cursors()
	return QueueInfo{
		CapacityBytes: q.Capacity(),
		OccupiedBytes: q.Occupied(),
		Empty:         q.IsEmpty(),
		HasWrapped:    q.HasWrapped(),
		Write:         write,
		Read:          read,
		Wrap:          wrap,
	}
}

// Encode renders a QueueInfo as a JSON string, for log fields and demo
// output.
func (i QueueInfo) Encode() (string, error) {
	b, err := json.Marshal(i)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// TableInfo is a point-in-time snapshot of a Table's builder state.
type TableInfo struct {
	CapacityElements int      `json:"capacity_elements"`
	UsedElements     int      `json:"used_elements"`
	Phase            string   `json:"phase"`
	States           []string `json:"states"`
}

// TableSnapshot captures t's current state. States lists every state-level
// sibling by diagnostic name, including dead-state leaves synthesized by
// SetNextStates — the trie has no separate bookkeeping distinguishing them
// from states a transition actually named (they live in the same sibling
// chain, see stt.Table.SetNextStates).
func TableSnapshot(t *stt.Table) TableInfo {
	refs := t.States()
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = nameOf(r)
	}
	return TableInfo{
		CapacityElements: t.Len(),
		UsedElements:     t.Used(),
		Phase:            t.Phase(),
		States:           names,
	}
}

func nameOf(id identity.Identity) string {
	if id.IsNil() {
		return ""
	}
	return id.Name()
}

// Encode renders a TableInfo as a JSON string.
func (i TableInfo) Encode() (string, error) {
	b, err := json.Marshal(i)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
