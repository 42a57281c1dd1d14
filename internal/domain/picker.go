package domain

// PickerMode tells what a choice made in the "choose from existing" sheet
// is routed to.
type PickerMode string

// Picker modes
const (
	PickerModeGridReplace PickerMode = "grid-replace"
	PickerModeComparePick PickerMode = "compare-pick"
)

// PickerSession is the short-lived state of the chooser sheet. The zero
// value is a closed session.
//
// In grid-replace mode the target is remembered by photo ID, not only by
// index, so a resolution that happens after the collection changed still
// swaps into the photo the user actually tapped. If that photo is gone by
// then, resolving is a no-op.
type PickerSession struct {
	Open     bool       `json:"open"`
	Mode     PickerMode `json:"mode,omitempty"`
	TargetID string     `json:"targetId,omitempty"`
	Side     Side       `json:"side,omitempty"`
}

// PickerResult is the state produced by resolving a picker session.
type PickerResult struct {
	Collection Collection
	Selection  Selection
	// Swapped is true when the grid order changed and needs persisting.
	Swapped bool
}

// OpenForGrid opens the chooser to replace the grid tile at index.
// An out-of-range index leaves the session closed.
func OpenForGrid(c Collection, index int) PickerSession {
	p, ok := c.At(index)
	if !ok {
		return PickerSession{}
	}
	return PickerSession{
		Open:     true,
		Mode:     PickerModeGridReplace,
		TargetID: p.ID,
	}
}

// OpenForCompareSlot opens the chooser to fill one side of the comparison.
// An unknown side leaves the session closed.
func OpenForCompareSlot(side Side) PickerSession {
	if side != SideLeft && side != SideRight {
		return PickerSession{}
	}
	return PickerSession{
		Open: true,
		Mode: PickerModeComparePick,
		Side: side,
	}
}

// TargetIndex re-resolves the grid target against c. It returns -1 when the
// session is not a grid-replace session or the target photo is gone.
func (s PickerSession) TargetIndex(c Collection) int {
	if !s.Open || s.Mode != PickerModeGridReplace {
		return -1
	}
	return c.IndexOf(s.TargetID)
}

// DisabledID is the one photo the chooser must not offer: the current
// occupant of the grid target. It is empty in compare-pick mode.
func (s PickerSession) DisabledID(c Collection) string {
	if s.TargetIndex(c) < 0 {
		return ""
	}
	return s.TargetID
}

// Resolve applies chosenID to the state the session targets. The session is
// always closed afterwards; the caller replaces its session with the zero
// value. Choosing the target's own occupant, a photo that no longer exists,
// or resolving a closed session changes nothing.
func (s PickerSession) Resolve(c Collection, sel Selection, chosenID string) PickerResult {
	res := PickerResult{Collection: c, Selection: sel}
	if !s.Open {
		return res
	}

	switch s.Mode {
	case PickerModeGridReplace:
		idx := s.TargetIndex(c)
		if idx < 0 {
			return res
		}
		res.Collection, res.Swapped = c.Swap(idx, chosenID)
	case PickerModeComparePick:
		if c.IndexOf(chosenID) < 0 {
			return res
		}
		res.Selection = SetSlot(sel, s.Side, chosenID)
	}
	return res
}
