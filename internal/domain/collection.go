package domain

// Collection is the ordered list of photos shown in the gallery grid.
// Display order is insertion order with the most recent batch first.
// All IDs are unique.
//
// Operations on a Collection never modify the receiver; they return a new
// slice so that snapshots handed to the presentation layer stay immutable.
type Collection []Photo

// Len returns the number of photos.
func (c Collection) Len() int {
	return len(c)
}

// Clone returns a copy that shares no backing array with c.
// A nil or empty collection clones to a non-nil empty one.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	copy(out, c)
	return out
}

// IndexOf returns the position of the photo with the given ID, or -1.
func (c Collection) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}

// Find looks up a photo by ID.
func (c Collection) Find(id string) (Photo, bool) {
	idx := c.IndexOf(id)
	if idx < 0 {
		return Photo{}, false
	}
	return c[idx], true
}

// At returns the photo at index i, or false if i is out of bounds.
func (c Collection) At(i int) (Photo, bool) {
	if i < 0 || i >= len(c) {
		return Photo{}, false
	}
	return c[i], true
}

// IDs returns the photo IDs in display order.
func (c Collection) IDs() []string {
	ids := make([]string, len(c))
	for i := range c {
		ids[i] = c[i].ID
	}
	return ids
}

// Prepend places batch in front of the existing photos, keeping the batch's
// relative order.
func (c Collection) Prepend(batch []Photo) Collection {
	out := make(Collection, 0, len(batch)+len(c))
	out = append(out, batch...)
	out = append(out, c...)
	return out
}

// Swap exchanges the photo at targetIndex with the photo whose ID is sourceID.
// No photo is created or destroyed, so the length never changes.
// The second return value is false (and the collection is returned unchanged)
// when targetIndex is out of bounds, sourceID is unknown, or the swap would
// exchange a photo with itself.
func (c Collection) Swap(targetIndex int, sourceID string) (Collection, bool) {
	if targetIndex < 0 || targetIndex >= len(c) {
		return c, false
	}
	sourceIndex := c.IndexOf(sourceID)
	if sourceIndex < 0 || sourceIndex == targetIndex {
		return c, false
	}

	out := c.Clone()
	out[targetIndex], out[sourceIndex] = out[sourceIndex], out[targetIndex]
	return out, true
}

// Remove deletes the photo with the given ID.
// The second return value is false if no such photo exists.
func (c Collection) Remove(id string) (Collection, bool) {
	idx := c.IndexOf(id)
	if idx < 0 {
		return c, false
	}

	out := make(Collection, 0, len(c)-1)
	out = append(out, c[:idx]...)
	out = append(out, c[idx+1:]...)
	return out, true
}

// Sanitize drops photos without an ID and keeps only the first occurrence
// of a duplicated ID, restoring the uniqueness invariant for collections
// read from storage.
func (c Collection) Sanitize() Collection {
	seen := make(map[string]struct{}, len(c))
	out := make(Collection, 0, len(c))
	for _, p := range c {
		if p.ID == "" {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
