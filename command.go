package sway

import "fmt"

// Op identifies a command type on the wire.
type Op uint8

const (
	OpCreateNode Op = iota + 1
	OpRemoveNode
	OpAddModifier
	OpUpdateProperty
	OpCreateAnimation
	OpStartAnimation
	OpPauseAnimation
	OpResumeAnimation
	OpFinishAnimation
	OpReverseAnimation
	OpSetAnimationFraction
	OpRemoveAnimation
	OpCancelAnimations
	OpAnimationCallback
)

var opNames = map[Op]string{
	OpCreateNode:           "create-node",
	OpRemoveNode:           "remove-node",
	OpAddModifier:          "add-modifier",
	OpUpdateProperty:       "update-property",
	OpCreateAnimation:      "create-animation",
	OpStartAnimation:       "start-animation",
	OpPauseAnimation:       "pause-animation",
	OpResumeAnimation:      "resume-animation",
	OpFinishAnimation:      "finish-animation",
	OpReverseAnimation:     "reverse-animation",
	OpSetAnimationFraction: "set-animation-fraction",
	OpRemoveAnimation:      "remove-animation",
	OpCancelAnimations:     "cancel-animations",
	OpAnimationCallback:    "animation-callback",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", uint8(o))
}

func parseOp(s string) Op {
	for o, name := range opNames {
		if name == s {
			return o
		}
	}
	return 0
}

// Command is one operation sent across the UI/render boundary. The set of
// implementations is closed.
type Command interface {
	Op() Op
	// NodeID is the node the command addresses.
	NodeID() ID
	command()
}

// CreateNode adds a render node.
type CreateNode struct {
	Node ID
}

// RemoveNode destroys a render node.
type RemoveNode struct {
	Node ID
}

// AddModifier binds a property with its initial value to a node.
type AddModifier struct {
	Node     ID
	Property ID
	Type     ModifierType
	Value    Value
}

// UpdateProperty writes a property. With Delta set, Value is added to the
// current render-side value.
type UpdateProperty struct {
	Node     ID
	Property ID
	Value    Value
	Delta    bool
}

// CreateAnimation builds an animation from Spec, attaches it to Node and
// starts it.
type CreateAnimation struct {
	Node ID
	Spec AnimationSpec
}

// StartAnimation starts an attached animation that has not started yet.
type StartAnimation struct {
	Node, Animation ID
}

type PauseAnimation struct {
	Node, Animation ID
}

type ResumeAnimation struct {
	Node, Animation ID
}

type FinishAnimation struct {
	Node, Animation ID
}

// ReverseAnimation flips the direction of the current cycle.
type ReverseAnimation struct {
	Node, Animation ID
	Reversed        bool
}

// SetAnimationFraction moves a paused animation to Fraction.
type SetAnimationFraction struct {
	Node, Animation ID
	Fraction        float64
}

// RemoveAnimation drops a finished animation. A non-nil Final is written
// to the property.
type RemoveAnimation struct {
	Node, Animation ID
	Final           Value
}

// CancelAnimations removes every animation on Property without callbacks.
type CancelAnimations struct {
	Node, Property ID
}

// CallbackEvent is what an AnimationCallback reports.
type CallbackEvent uint8

const (
	CallbackFinished CallbackEvent = iota + 1
	CallbackRepeat
	CallbackLogicallyFinished
)

var callbackEventNames = map[CallbackEvent]string{
	CallbackFinished:          "finished",
	CallbackRepeat:            "repeat",
	CallbackLogicallyFinished: "logically-finished",
}

func (e CallbackEvent) String() string {
	if s, ok := callbackEventNames[e]; ok {
		return s
	}
	return fmt.Sprintf("event(%d)", uint8(e))
}

func parseCallbackEvent(s string) CallbackEvent {
	for e, name := range callbackEventNames {
		if name == s {
			return e
		}
	}
	return 0
}

// AnimationCallback travels from the render side to the owner of Animation.
type AnimationCallback struct {
	Node, Animation ID
	Event           CallbackEvent
}

func (*CreateNode) Op() Op           { return OpCreateNode }
func (*RemoveNode) Op() Op           { return OpRemoveNode }
func (*AddModifier) Op() Op          { return OpAddModifier }
func (*UpdateProperty) Op() Op       { return OpUpdateProperty }
func (*CreateAnimation) Op() Op      { return OpCreateAnimation }
func (*StartAnimation) Op() Op       { return OpStartAnimation }
func (*PauseAnimation) Op() Op       { return OpPauseAnimation }
func (*ResumeAnimation) Op() Op      { return OpResumeAnimation }
func (*FinishAnimation) Op() Op      { return OpFinishAnimation }
func (*ReverseAnimation) Op() Op     { return OpReverseAnimation }
func (*SetAnimationFraction) Op() Op { return OpSetAnimationFraction }
func (*RemoveAnimation) Op() Op      { return OpRemoveAnimation }
func (*CancelAnimations) Op() Op     { return OpCancelAnimations }
func (*AnimationCallback) Op() Op    { return OpAnimationCallback }

func (c *CreateNode) NodeID() ID           { return c.Node }
func (c *RemoveNode) NodeID() ID           { return c.Node }
func (c *AddModifier) NodeID() ID          { return c.Node }
func (c *UpdateProperty) NodeID() ID       { return c.Node }
func (c *CreateAnimation) NodeID() ID      { return c.Node }
func (c *StartAnimation) NodeID() ID       { return c.Node }
func (c *PauseAnimation) NodeID() ID       { return c.Node }
func (c *ResumeAnimation) NodeID() ID      { return c.Node }
func (c *FinishAnimation) NodeID() ID      { return c.Node }
func (c *ReverseAnimation) NodeID() ID     { return c.Node }
func (c *SetAnimationFraction) NodeID() ID { return c.Node }
func (c *RemoveAnimation) NodeID() ID      { return c.Node }
func (c *CancelAnimations) NodeID() ID     { return c.Node }
func (c *AnimationCallback) NodeID() ID    { return c.Node }

func (*CreateNode) command()           {}
func (*RemoveNode) command()           {}
func (*AddModifier) command()          {}
func (*UpdateProperty) command()       {}
func (*CreateAnimation) command()      {}
func (*StartAnimation) command()       {}
func (*PauseAnimation) command()       {}
func (*ResumeAnimation) command()      {}
func (*FinishAnimation) command()      {}
func (*ReverseAnimation) command()     {}
func (*SetAnimationFraction) command() {}
func (*RemoveAnimation) command()      {}
func (*CancelAnimations) command()     {}
func (*AnimationCallback) command()    {}
