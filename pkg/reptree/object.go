package reptree

import "sort"

// Entry is one row of a displayed Tree Object: a pointer to a Node in the
// arena plus its position in the sorted display order.
type Entry struct {
	Node *Node
	ID   NodeID
	Idx  int
}

// Object is the array of Entries for a single directory's children, sorted
// by basename. The Entries slice is built fresh, but its Nodes are shared
// with the arena. Constructed on demand when a directory is visited.
type Object struct {
	DirID   NodeID
	Entries []Entry
}

// NewObject builds the Tree Object for dirID: its children sorted by
// basename (case-sensitive, matching strcmp), each tagged with its display
// index. A synthetic ".." entry is NOT included here — the Tree View
// prepends it itself when dirID is not the root, since the arena has no
// node to represent it.
func NewObject(t *Tree, dirID NodeID) *Object {
	node := t.Node(dirID)

	entries := make([]Entry, 0, len(node.Children))
	for _, childID := range node.Children {
		entries = append(entries, Entry{Node: t.Node(childID), ID: childID})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Node.Basename < entries[j].Node.Basename
	})

	for i := range entries {
		entries[i].Idx = i
	}

	return &Object{DirID: dirID, Entries: entries}
}

// Len returns the number of entries.
func (o *Object) Len() int {
	return len(o.Entries)
}
