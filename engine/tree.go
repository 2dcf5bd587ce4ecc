package engine

import (
	"math"

	"lukechampine.com/frand"

	"mcts-chess/chess"
)

// GameState classifies a tree node. The terminal values double as simulation
// results from the point of view of the side to move at the node.
type GameState int8

const (
	Lost    GameState = -1
	Draw    GameState = 0
	Won     GameState = 1
	Ongoing GameState = 2
)

func (s GameState) String() string {
	switch s {
	case Lost:
		return "lost"
	case Draw:
		return "draw"
	case Won:
		return "won"
	case Ongoing:
		return "ongoing"
	}
	return "unknown"
}

// NodeID addresses a node in a Tree's arena.
type NodeID int32

const (
	NoNode NodeID = -1
	RootID NodeID = 0
)

type node struct {
	parent   NodeID
	children []NodeID // children[i] was reached by moves[i]
	moves    []chess.Move
	state    GameState
	visits   uint32
	sum      float64 // from the view of the player who moved into this node
	depth    uint16
}

// Tree is an MCTS tree whose nodes live in one growable arena and refer to
// each other by index, so appending never invalidates a reference.
type Tree struct {
	nodes  []node
	params *Params
	rng    *frand.RNG
}

// NewTree builds a tree whose root is the position b.
func NewTree(b *chess.Board, params *Params, rng *frand.RNG) *Tree {
	t := &Tree{nodes: make([]node, 0, 1024), params: params, rng: rng}
	t.newNode(b, NoNode, 0)
	return t
}

func (t *Tree) newNode(b *chess.Board, parent NodeID, depth uint16) NodeID {
	n := node{parent: parent, depth: depth, state: Ongoing}
	switch {
	case parent == NoNode:
		n.moves = b.LegalMoves(false)
	case b.IsInsufficientMaterial() || b.IsRepetition():
		n.state = Draw
	default:
		n.moves = b.LegalMoves(false)
		if len(n.moves) == 0 {
			if b.InCheck() {
				n.state = Lost
			} else {
				n.state = Draw
			}
		} else if b.IsFiftyMoveDraw() {
			n.state = Draw
		}
	}
	if n.state != Ongoing {
		n.moves = nil
	}
	t.rng.Shuffle(len(n.moves), func(i, j int) {
		n.moves[i], n.moves[j] = n.moves[j], n.moves[i]
	})
	if len(n.moves) > 0 {
		n.children = make([]NodeID, 0, len(n.moves))
	}
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

// Len returns the number of nodes in the arena.
func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) State(id NodeID) GameState { return t.nodes[id].state }
func (t *Tree) Visits(id NodeID) uint32   { return t.nodes[id].visits }
func (t *Tree) Depth(id NodeID) int       { return int(t.nodes[id].depth) }
func (t *Tree) Parent(id NodeID) NodeID   { return t.nodes[id].parent }

// ResultSum returns the accumulated result of the node.
func (t *Tree) ResultSum(id NodeID) float64 { return t.nodes[id].sum }

// Children returns the materialized children of id. The slice must not be modified.
func (t *Tree) Children(id NodeID) []NodeID { return t.nodes[id].children }

// Moves returns the shuffled legal moves of id. The slice must not be modified.
func (t *Tree) Moves(id NodeID) []chess.Move { return t.nodes[id].moves }

func (t *Tree) fullyExpanded(n *node) bool { return len(n.children) == len(n.moves) }

func (t *Tree) uct(id NodeID, parentVisits uint32) float64 {
	n := &t.nodes[id]
	visits := float64(n.visits)
	return n.sum/visits + t.params.UCTC*math.Sqrt(math.Log(float64(parentVisits))/visits)
}

// Select descends from id through ongoing, fully expanded nodes by maximum
// UCT score and applies each chosen move to b. It returns the first node that
// is terminal or still has untried moves.
func (t *Tree) Select(id NodeID, b *chess.Board) NodeID {
	for {
		n := &t.nodes[id]
		if n.state != Ongoing || !t.fullyExpanded(n) {
			return id
		}
		best := 0
		bestUCT := t.uct(n.children[0], n.visits)
		for i := 1; i < len(n.children); i++ {
			if u := t.uct(n.children[i], n.visits); u > bestUCT {
				best, bestUCT = i, u
			}
		}
		b.ApplyMove(n.moves[best])
		id = n.children[best]
	}
}

// Expand plays the next untried move of id on b and adds the resulting child.
// id must be ongoing and not fully expanded.
func (t *Tree) Expand(id NodeID, b *chess.Board) NodeID {
	n := &t.nodes[id]
	m := n.moves[len(n.children)]
	depth := n.depth + 1
	b.ApplyMove(m)
	child := t.newNode(b, id, depth)
	// newNode may have grown the arena; index again.
	t.nodes[id].children = append(t.nodes[id].children, child)
	return child
}

// Simulate estimates the node's value in [-1, 1] for the side to move at id.
// Terminal nodes return their fixed result. Others use the material balance
// with a small jitter in [-3, 3] centipawns.
func (t *Tree) Simulate(id NodeID, b *chess.Board) float64 {
	if s := t.nodes[id].state; s != Ongoing {
		return float64(s)
	}
	eval := Material(b) + int(t.rng.Uint64n(7)) - 3
	return EvalToResult(float64(eval), t.params.EvalScale)
}

// Backprop records value, seen by the side to move at id, on id and every
// ancestor. Each node stores it from the view of the player who moved into
// it, so the sign flips before every addition.
func (t *Tree) Backprop(id NodeID, value float64) {
	for id != NoNode {
		n := &t.nodes[id]
		n.visits++
		value = -value
		n.sum += value
		id = n.parent
	}
}

// ScoreCP converts the node's mean result into centipawns for the side to move at id.
func (t *Tree) ScoreCP(id NodeID) int {
	n := &t.nodes[id]
	if n.visits == 0 {
		return 0
	}
	return ResultToCentipawns(-n.sum/float64(n.visits), t.params.EvalScale)
}

// MostVisitedMove returns the move to the child with the most visits; the
// first such child wins ties. It returns chess.NullMove before any expansion.
func (t *Tree) MostVisitedMove(id NodeID) chess.Move {
	n := &t.nodes[id]
	if len(n.children) == 0 {
		return chess.NullMove
	}
	best := 0
	most := t.nodes[n.children[0]].visits
	for i := 1; i < len(n.children); i++ {
		if v := t.nodes[n.children[i]].visits; v > most {
			best, most = i, v
		}
	}
	return n.moves[best]
}
