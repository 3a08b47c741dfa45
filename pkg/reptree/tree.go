// Package reptree builds an in-memory model of a checkin's file tree for the
// Tree View: an arena of nodes addressed by index, materialized on demand
// one directory at a time as the user descends.
package reptree

import (
	"fmt"
	"sort"
	"strings"
	"time"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/fnctui/fnc/pkg/scm"
)

// NodeID indexes into a Tree's node arena. The zero value is reserved for
// the root; NoNode marks the absence of a parent/child link.
type NodeID int

// NoNode is the sentinel for "no node" (root's parent, a leaf's children).
const NoNode NodeID = -1

// Mode classifies a node's display decoration.
type Mode int

const (
	ModeRegular Mode = iota
	ModeExecutable
	ModeSymlink
	ModeDirectory
)

// Node is one entry in the repository tree: either a directory (Hash is
// absent) or a file (Hash holds its blob hash).
type Node struct {
	Basename string
	Path     string
	Hash     scm.Hash
	HasHash  bool
	Mode     Mode
	MTime    time.Time
	Target   string // symlink target, set only when Mode == ModeSymlink

	ParentDir NodeID
	Children  []NodeID
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool {
	return n.Mode == ModeDirectory
}

// Tree is the arena of nodes built from one checkin's F-cards.
type Tree struct {
	nodes []Node
}

// Root returns the root node's id. The root always exists once Build has run.
func (t *Tree) Root() NodeID {
	return 0
}

// Node returns the node at id.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Build constructs a Tree from a commit's tree, inserting a node for every
// path component of every file in lexicographic F-card order. Non-terminal
// components become directories; the terminal component becomes a file node
// carrying the blob hash. statPath, if non-nil, is consulted for each file's
// on-disk mode/mtime when building a working-checkout tree; when nil, files
// default to ModeRegular with a zero MTime.
func Build(repo *scm.Repository, commitTree *scm.Tree, statPath func(path string) (Mode, time.Time, string)) (*Tree, error) {
	t := &Tree{nodes: make([]Node, 1, 64)}
	t.nodes[0] = Node{ParentDir: NoNode, Mode: ModeDirectory, Children: nil}

	files, err := scm.TreeFiles(repo, commitTree)
	if err != nil {
		return nil, fmt.Errorf("list tree files: %w", err)
	}

	for _, f := range files {
		mode, mtime, target := Mode(ModeRegular), time.Time{}, ""
		if statPath != nil {
			mode, mtime, target = statPath(f.Name)
		}

		t.insert(f.Name, f.Hash, mode, mtime, target)
	}

	t.propagateMTime(t.Root())

	return t, nil
}

// insert locates or creates every path component of path, attaching the
// terminal component as a file node with hash/mode/mtime.
func (t *Tree) insert(path string, hash scm.Hash, mode Mode, mtime time.Time, target string) {
	parts := strings.Split(path, "/")
	current := t.Root()
	built := ""

	for i, part := range parts {
		if built == "" {
			built = part
		} else {
			built = built + "/" + part
		}

		last := i == len(parts)-1

		child := t.findChild(current, part)
		if child == NoNode {
			node := Node{
				Basename:  part,
				Path:      built,
				ParentDir: current,
				Mode:      ModeDirectory,
			}

			if last {
				node.Hash = hash
				node.HasHash = true
				node.Mode = mode
				node.MTime = mtime
				node.Target = target
			}

			t.nodes = append(t.nodes, node)
			child = NodeID(len(t.nodes) - 1)
			t.nodes[current].Children = append(t.nodes[current].Children, child)
		}

		current = child
	}
}

func (t *Tree) findChild(parent NodeID, basename string) NodeID {
	for _, id := range t.nodes[parent].Children {
		if t.nodes[id].Basename == basename {
			return id
		}
	}

	return NoNode
}

// propagateMTime sets each directory's mtime to the max of its children's,
// computed post-order.
func (t *Tree) propagateMTime(id NodeID) time.Time {
	node := t.Node(id)

	if !node.IsDir() {
		return node.MTime
	}

	var max time.Time

	for _, child := range node.Children {
		if m := t.propagateMTime(child); m.After(max) {
			max = m
		}
	}

	node.MTime = max

	return max
}

// ModeFromFilemode translates a git2go file mode into a display Mode.
func ModeFromFilemode(fm git2go.Filemode) Mode {
	switch fm {
	case git2go.FilemodeTree:
		return ModeDirectory
	case git2go.FilemodeLink:
		return ModeSymlink
	case git2go.FilemodeBlobExecutable:
		return ModeExecutable
	default:
		return ModeRegular
	}
}
