package permission

// Mask is the interface satisfied by all bitmask widths ([Mask64], [Mask128]).
// Or combines two masks of the same width; combining mismatched widths is a
// no-op (cannot occur for masks produced by one [Registry]).
type Mask interface {
	Has(bit int) bool
	Set(bit int)
	Clear(bit int)
	Or(other Mask)
	Empty() bool
	Clone() Mask
}
