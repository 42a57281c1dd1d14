package domain

// Side names one slot of the before/after comparison.
type Side string

// Comparison slots
const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Selection is the two-slot comparison choice. An empty ID means the slot is
// unset. A non-empty ID always refers to a photo in the current Collection.
type Selection struct {
	LeftID  string `json:"leftId,omitempty"`
	RightID string `json:"rightId,omitempty"`
}

// Pair is the comparison selection resolved against a Collection.
// A nil side means the slot is unset.
type Pair struct {
	Left  *Photo `json:"left"`
	Right *Photo `json:"right"`
}

// Complete reports whether both sides resolved to photos.
func (p Pair) Complete() bool {
	return p.Left != nil && p.Right != nil
}

// DefaultSelection is the selection policy applied on load: left is the
// first photo, right is the second photo, falling back to the first, falling
// back to unset.
func DefaultSelection(c Collection) Selection {
	return Selection{
		LeftID:  firstID(c),
		RightID: secondID(c),
	}
}

// InitOnAdd applies the default policy after a batch was prepended, but only
// when the left slot was unset before the add. Otherwise the selection is kept.
func InitOnAdd(sel Selection, c Collection) Selection {
	if sel.LeftID != "" {
		return sel
	}
	return DefaultSelection(c)
}

// RepairOnRemoval reassigns every slot that referenced removedID using the
// load-time default policy against the collection after removal. Slots that
// did not reference removedID are kept.
func RepairOnRemoval(removedID string, c Collection, sel Selection) Selection {
	if removedID == "" {
		return sel
	}
	if sel.LeftID == removedID {
		sel.LeftID = firstID(c)
	}
	if sel.RightID == removedID {
		sel.RightID = secondID(c)
	}
	return sel
}

// SetSlot returns sel with one side replaced. The id is not validated
// against any collection; callers only pass IDs offered from a live chooser.
func SetSlot(sel Selection, side Side, id string) Selection {
	switch side {
	case SideLeft:
		sel.LeftID = id
	case SideRight:
		sel.RightID = id
	}
	return sel
}

// Derive resolves both slots against the collection. An unset or unknown ID
// resolves to nil rather than an error.
func Derive(c Collection, sel Selection) Pair {
	return Pair{
		Left:  lookup(c, sel.LeftID),
		Right: lookup(c, sel.RightID),
	}
}

// Consistent reports whether every set slot references a photo in c.
func (s Selection) Consistent(c Collection) bool {
	if s.LeftID != "" && c.IndexOf(s.LeftID) < 0 {
		return false
	}
	if s.RightID != "" && c.IndexOf(s.RightID) < 0 {
		return false
	}
	return true
}

func lookup(c Collection, id string) *Photo {
	p, ok := c.Find(id)
	if !ok {
		return nil
	}
	return &p
}

func firstID(c Collection) string {
	if len(c) == 0 {
		return ""
	}
	return c[0].ID
}

func secondID(c Collection) string {
	if len(c) > 1 {
		return c[1].ID
	}
	return firstID(c)
}
