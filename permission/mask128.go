package permission

// Mask128 is a 128-bit permission bitmask supporting up to 128 permissions.
type Mask128 struct {
	A uint64
	B uint64
}

// Has reports whether the given bit is set.
func (m *Mask128) Has(bit int) bool {
	if bit < 0 || bit >= 128 {
		return false
	}
	if bit < 64 {
		return (m.A & (1 << bit)) != 0
	}
	return (m.B & (1 << (bit - 64))) != 0
}

// Set sets the given bit in the mask.
func (m *Mask128) Set(bit int) {
	if bit < 0 || bit >= 128 {
		return
	}
	if bit < 64 {
		m.A |= (1 << bit)
	} else {
		m.B |= (1 << (bit - 64))
	}
}

// Clear clears the given bit in the mask.
func (m *Mask128) Clear(bit int) {
	if bit < 0 || bit >= 128 {
		return
	}
	if bit < 64 {
		m.A &^= (1 << bit)
	} else {
		m.B &^= (1 << (bit - 64))
	}
}

// Or merges the set bits of other into m.
func (m *Mask128) Or(other Mask) {
	if o, ok := other.(*Mask128); ok && o != nil {
		m.A |= o.A
		m.B |= o.B
	}
}

// Empty reports whether no bit is set.
func (m *Mask128) Empty() bool {
	return m.A == 0 && m.B == 0
}

// Clone returns an independent copy of the mask.
func (m *Mask128) Clone() Mask {
	return &Mask128{A: m.A, B: m.B}
}
