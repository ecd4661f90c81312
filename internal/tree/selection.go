package tree

// ApplyActivation updates the selected flags of parent's children after the
// child at index was activated.
//
// Exclusive mode sweeps every sibling, since more than one child may have
// been created with Selected set. Multi mode toggles only the indicated
// child. ModeNone and out-of-range indexes leave the flags untouched.
func (s *Store) ApplyActivation(parent NodeID, index int) {
	if !s.valid(parent) {
		return
	}
	p := &s.nodes[parent]
	if index < 0 || index >= len(p.children) {
		return
	}

	switch p.mode {
	case ModeExclusive:
		for i, c := range p.children {
			s.nodes[c].selected = i == index
		}
	case ModeMulti:
		c := p.children[index]
		s.nodes[c].selected = !s.nodes[c].selected
	}
}

// SelectedIndices returns the indexes of parent's selected children.
// It is empty for ModeNone parents, whose flags carry no meaning.
func (s *Store) SelectedIndices(parent NodeID) []int {
	if !s.valid(parent) || s.nodes[parent].mode == ModeNone {
		return nil
	}
	var out []int
	for i, c := range s.nodes[parent].children {
		if s.nodes[c].selected {
			out = append(out, i)
		}
	}
	return out
}
