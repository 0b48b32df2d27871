package sway

import (
	"encoding/json"
	"fmt"
)

// wireValue is the JSON form of a Value: {"kind":"rect","v":[0,0,10,10]}.
type wireValue struct {
	Kind string    `json:"kind"`
	V    []float64 `json:"v"`
}

func toWireValue(v Value) *wireValue {
	if v == nil {
		return nil
	}
	return &wireValue{Kind: v.Kind().String(), V: v.components()}
}

func (w *wireValue) value() (Value, error) {
	if w == nil {
		return nil, nil
	}
	return valueFromComponents(parseKind(w.Kind), w.V)
}

// MarshalValue encodes v in its wire form.
func MarshalValue(v Value) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return json.Marshal(toWireValue(v))
}

// UnmarshalValue decodes a value written by MarshalValue.
func UnmarshalValue(data []byte) (Value, error) {
	var w *wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return w.value()
}

type wireKeyframe struct {
	Fraction float64     `json:"fraction"`
	Value    *wireValue  `json:"value"`
	Curve    TimingCurve `json:"curve"`
}

type wireSpec struct {
	ID                uint64         `json:"id"`
	Kind              string         `json:"kind"`
	Property          uint64         `json:"property,omitempty"`
	Protocol          TimingProtocol `json:"protocol"`
	Curve             TimingCurve    `json:"curve"`
	Additive          bool           `json:"additive,omitempty"`
	Origin            *wireValue     `json:"origin,omitempty"`
	Start             *wireValue     `json:"start,omitempty"`
	End               *wireValue     `json:"end,omitempty"`
	Keyframes         []wireKeyframe `json:"keyframes,omitempty"`
	Path              *MotionPath    `json:"path,omitempty"`
	InitialVelocity   *wireValue     `json:"initial_velocity,omitempty"`
	ZeroThreshold     float64        `json:"zero_threshold,omitempty"`
	LogicallyFinished bool           `json:"logically_finished,omitempty"`
}

func toWireSpec(s *AnimationSpec) *wireSpec {
	w := &wireSpec{
		ID:                s.ID.Uint64(),
		Kind:              s.Kind.String(),
		Property:          s.Property.Uint64(),
		Protocol:          s.Protocol,
		Curve:             s.Curve,
		Additive:          s.Additive,
		Origin:            toWireValue(s.Origin),
		Start:             toWireValue(s.Start),
		End:               toWireValue(s.End),
		Path:              s.Path,
		InitialVelocity:   toWireValue(s.InitialVelocity),
		ZeroThreshold:     s.ZeroThreshold,
		LogicallyFinished: s.LogicallyFinished,
	}
	for _, kf := range s.Keyframes {
		w.Keyframes = append(w.Keyframes, wireKeyframe{Fraction: kf.Fraction, Value: toWireValue(kf.Value), Curve: kf.Curve})
	}
	return w
}

func (w *wireSpec) spec() (AnimationSpec, error) {
	s := AnimationSpec{
		ID:                IDFromUint64(w.ID),
		Kind:              parseAnimationKind(w.Kind),
		Property:          IDFromUint64(w.Property),
		Protocol:          w.Protocol,
		Curve:             w.Curve,
		Additive:          w.Additive,
		Path:              w.Path,
		ZeroThreshold:     w.ZeroThreshold,
		LogicallyFinished: w.LogicallyFinished,
	}
	if s.Kind == 0 {
		return s, fmt.Errorf("animation kind %q: %w", w.Kind, ErrUnknownCommand)
	}
	var err error
	for _, f := range []struct {
		dst *Value
		src *wireValue
	}{
		{&s.Origin, w.Origin},
		{&s.Start, w.Start},
		{&s.End, w.End},
		{&s.InitialVelocity, w.InitialVelocity},
	} {
		if *f.dst, err = f.src.value(); err != nil {
			return s, err
		}
	}
	for _, kf := range w.Keyframes {
		v, err := kf.Value.value()
		if err != nil {
			return s, fmt.Errorf("keyframe %.3f: %w", kf.Fraction, err)
		}
		s.Keyframes = append(s.Keyframes, Keyframe{Fraction: kf.Fraction, Value: v, Curve: kf.Curve})
	}
	return s, nil
}

// wireCommand is the flat JSON form shared by every command.
type wireCommand struct {
	Op        string     `json:"op"`
	Node      uint64     `json:"node"`
	Animation uint64     `json:"animation,omitempty"`
	Property  uint64     `json:"property,omitempty"`
	Modifier  string     `json:"modifier,omitempty"`
	Value     *wireValue `json:"value,omitempty"`
	Delta     bool       `json:"delta,omitempty"`
	Reversed  bool       `json:"reversed,omitempty"`
	Fraction  float64    `json:"fraction,omitempty"`
	Event     string     `json:"event,omitempty"`
	Spec      *wireSpec  `json:"spec,omitempty"`
}

func toWireCommand(cmd Command) (*wireCommand, error) {
	w := &wireCommand{Op: cmd.Op().String(), Node: cmd.NodeID().Uint64()}
	switch c := cmd.(type) {
	case *CreateNode, *RemoveNode:
	case *AddModifier:
		w.Property = c.Property.Uint64()
		w.Modifier = c.Type.String()
		w.Value = toWireValue(c.Value)
	case *UpdateProperty:
		w.Property = c.Property.Uint64()
		w.Value = toWireValue(c.Value)
		w.Delta = c.Delta
	case *CreateAnimation:
		w.Animation = c.Spec.ID.Uint64()
		w.Spec = toWireSpec(&c.Spec)
	case *StartAnimation:
		w.Animation = c.Animation.Uint64()
	case *PauseAnimation:
		w.Animation = c.Animation.Uint64()
	case *ResumeAnimation:
		w.Animation = c.Animation.Uint64()
	case *FinishAnimation:
		w.Animation = c.Animation.Uint64()
	case *ReverseAnimation:
		w.Animation = c.Animation.Uint64()
		w.Reversed = c.Reversed
	case *SetAnimationFraction:
		w.Animation = c.Animation.Uint64()
		w.Fraction = c.Fraction
	case *RemoveAnimation:
		w.Animation = c.Animation.Uint64()
		w.Value = toWireValue(c.Final)
	case *CancelAnimations:
		w.Property = c.Property.Uint64()
	case *AnimationCallback:
		w.Animation = c.Animation.Uint64()
		w.Event = c.Event.String()
	default:
		return nil, fmt.Errorf("encode %T: %w", cmd, ErrUnknownCommand)
	}
	return w, nil
}

func (w *wireCommand) command() (Command, error) {
	node := IDFromUint64(w.Node)
	anim := IDFromUint64(w.Animation)
	prop := IDFromUint64(w.Property)
	op := parseOp(w.Op)
	switch op {
	case OpCreateNode:
		return &CreateNode{Node: node}, nil
	case OpRemoveNode:
		return &RemoveNode{Node: node}, nil
	case OpAddModifier:
		v, err := w.Value.value()
		if err != nil {
			return nil, err
		}
		typ := parseModifierType(w.Modifier)
		if typ == 0 {
			return nil, fmt.Errorf("modifier %q: %w", w.Modifier, ErrUnknownCommand)
		}
		return &AddModifier{Node: node, Property: prop, Type: typ, Value: v}, nil
	case OpUpdateProperty:
		v, err := w.Value.value()
		if err != nil {
			return nil, err
		}
		return &UpdateProperty{Node: node, Property: prop, Value: v, Delta: w.Delta}, nil
	case OpCreateAnimation:
		if w.Spec == nil {
			return nil, fmt.Errorf("%s without spec: %w", op, ErrUnknownCommand)
		}
		spec, err := w.Spec.spec()
		if err != nil {
			return nil, err
		}
		return &CreateAnimation{Node: node, Spec: spec}, nil
	case OpStartAnimation:
		return &StartAnimation{Node: node, Animation: anim}, nil
	case OpPauseAnimation:
		return &PauseAnimation{Node: node, Animation: anim}, nil
	case OpResumeAnimation:
		return &ResumeAnimation{Node: node, Animation: anim}, nil
	case OpFinishAnimation:
		return &FinishAnimation{Node: node, Animation: anim}, nil
	case OpReverseAnimation:
		return &ReverseAnimation{Node: node, Animation: anim, Reversed: w.Reversed}, nil
	case OpSetAnimationFraction:
		return &SetAnimationFraction{Node: node, Animation: anim, Fraction: w.Fraction}, nil
	case OpRemoveAnimation:
		v, err := w.Value.value()
		if err != nil {
			return nil, err
		}
		return &RemoveAnimation{Node: node, Animation: anim, Final: v}, nil
	case OpCancelAnimations:
		return &CancelAnimations{Node: node, Property: prop}, nil
	case OpAnimationCallback:
		ev := parseCallbackEvent(w.Event)
		if ev == 0 {
			return nil, fmt.Errorf("callback event %q: %w", w.Event, ErrUnknownCommand)
		}
		return &AnimationCallback{Node: node, Animation: anim, Event: ev}, nil
	}
	return nil, fmt.Errorf("op %q: %w", w.Op, ErrUnknownCommand)
}

// EncodeCommand returns the JSON form of cmd.
func EncodeCommand(cmd Command) ([]byte, error) {
	w, err := toWireCommand(cmd)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// DecodeCommand parses a command written by EncodeCommand.
func DecodeCommand(data []byte) (Command, error) {
	var w wireCommand
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode command: %w", err)
	}
	return w.command()
}

// EncodeCommands returns the JSON array form of a batch of commands, as
// used for callbacks routed to one owner.
func EncodeCommands(cmds []Command) ([]byte, error) {
	ws := make([]*wireCommand, 0, len(cmds))
	for _, cmd := range cmds {
		w, err := toWireCommand(cmd)
		if err != nil {
			return nil, err
		}
		ws = append(ws, w)
	}
	return json.Marshal(ws)
}

// DecodeCommands parses a batch written by EncodeCommands.
func DecodeCommands(data []byte) ([]Command, error) {
	var ws []*wireCommand
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("decode commands: %w", err)
	}
	cmds := make([]Command, 0, len(ws))
	for i, w := range ws {
		if w == nil {
			return nil, fmt.Errorf("command %d: %w", i, ErrUnknownCommand)
		}
		cmd, err := w.command()
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", i, err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

type wireTransaction struct {
	ID       string         `json:"id"`
	Owner    uint32         `json:"owner"`
	Commands []*wireCommand `json:"commands"`
}

// EncodeTransaction returns the JSON form of tx.
func EncodeTransaction(tx *Transaction) ([]byte, error) {
	w := wireTransaction{ID: tx.ID, Owner: tx.Owner, Commands: make([]*wireCommand, 0, len(tx.Commands))}
	for _, cmd := range tx.Commands {
		wc, err := toWireCommand(cmd)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		w.Commands = append(w.Commands, wc)
	}
	return json.Marshal(w)
}

// DecodeTransaction parses a transaction written by EncodeTransaction. A
// command that cannot be decoded fails the whole transaction.
func DecodeTransaction(data []byte) (*Transaction, error) {
	var w wireTransaction
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	tx := &Transaction{ID: w.ID, Owner: w.Owner, Commands: make([]Command, 0, len(w.Commands))}
	for i, wc := range w.Commands {
		if wc == nil {
			return nil, fmt.Errorf("transaction %s command %d: %w", w.ID, i, ErrUnknownCommand)
		}
		cmd, err := wc.command()
		if err != nil {
			return nil, fmt.Errorf("transaction %s command %d: %w", w.ID, i, err)
		}
		tx.Commands = append(tx.Commands, cmd)
	}
	return tx, nil
}
