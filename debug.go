package sway

import "fmt"

// debugLog logs per-tick stats when debug mode is on.
func (c *RenderContext) debugLog(stats TickStats) {
	if !c.debug {
		return
	}
	logger.Debug("tick",
		"now", stats.Now,
		"nodes", stats.Nodes,
		"animations", stats.Animations,
		"finished", stats.Finished,
		"running", stats.Running,
		"elapsed", stats.Elapsed,
		"ui_messages", c.PendingUIMessages())
	for _, n := range c.animating {
		debugCheckAnimationCount(n)
	}
}

// debugCheckDisposed panics with a descriptive message when a disposed node
// is used. In release mode the call is a no-op and callers skip the
// operation.
func (c *Client) debugCheckDisposed(n *Node, op string) {
	if c.debug && n.disposed {
		panic(fmt.Sprintf("sway debug: %s on disposed node %q (ID was %s)", op, n.Name, n.id))
	}
}

// debugCheckAnimationCount warns if a node has more than this many
// animations attached.
const debugMaxAnimations = 1000

func debugCheckAnimationCount(n *RenderNode) {
	if count := n.manager.Len(); count > debugMaxAnimations {
		logger.Warn("node has many animations", "node", n.id, "count", count, "threshold", debugMaxAnimations)
	}
}

// debugCheckTreeDepth warns if the UI tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		logger.Warn("tree depth exceeds threshold", "node", n.Name, "depth", depth, "threshold", debugMaxTreeDepth)
	}
}
