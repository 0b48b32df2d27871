package sway

// Modifier owns one property of a node and knows the commands that create
// and update it on the render side.
type Modifier struct {
	typ      ModifierType
	property *propertyBase
	draw     func(Value) // custom modifiers only
	dirty    bool
}

func newModifier(typ ModifierType, p *propertyBase) *Modifier {
	m := &Modifier{typ: typ, property: p}
	p.modifier = m
	return m
}

// Type returns the attribute the modifier drives.
func (m *Modifier) Type() ModifierType { return m.typ }

// PropertyID returns the id of the owned property.
func (m *Modifier) PropertyID() ID { return m.property.id }

// IsCustom reports whether the property is animated on the UI side.
func (m *Modifier) IsCustom() bool { return m.property.custom }

func (m *Modifier) addCommand(node ID) Command {
	return &AddModifier{Node: node, Property: m.property.id, Type: m.typ, Value: m.property.staging}
}

func (m *Modifier) updateCommand(node ID, v Value, delta bool) Command {
	return &UpdateProperty{Node: node, Property: m.property.id, Value: v, Delta: delta}
}

// modifierManager batches custom modifiers whose showing value changed
// until the client flushes them.
type modifierManager struct {
	dirty []*Modifier
}

func (mm *modifierManager) add(m *Modifier) {
	if m.dirty {
		return
	}
	m.dirty = true
	mm.dirty = append(mm.dirty, m)
}

func (mm *modifierManager) len() int { return len(mm.dirty) }

// flush draws every dirty modifier and returns the absolute updates that
// bring the render side in line with the showing values.
func (mm *modifierManager) flush() []Command {
	if len(mm.dirty) == 0 {
		return nil
	}
	cmds := make([]Command, 0, len(mm.dirty))
	for _, m := range mm.dirty {
		m.dirty = false
		p := m.property
		if p.node == nil || p.node.disposed {
			continue
		}
		v := p.get()
		if m.draw != nil {
			m.draw(v)
		}
		cmds = append(cmds, m.updateCommand(p.node.id, v, false))
	}
	mm.dirty = mm.dirty[:0]
	return cmds
}
