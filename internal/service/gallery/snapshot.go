package gallery

import "github.com/phrazzld/progress-gallery/internal/domain"

// PickerView is the chooser state with everything the sheet needs to draw.
type PickerView struct {
	domain.PickerSession
	// TargetIndex is the grid position being replaced, or -1.
	TargetIndex int `json:"targetIndex"`
	// DisabledID is the photo the sheet must show as not selectable.
	DisabledID string `json:"disabledId,omitempty"`
}

// Snapshot is the immutable state handed to the presentation layer after
// every command. It needs no further derivation to render the grid, the
// compare pair, and an open chooser.
type Snapshot struct {
	Collection   domain.Collection `json:"collection"`
	Selection    domain.Selection  `json:"selection"`
	Compare      domain.Pair       `json:"compare"`
	CompareLabel string            `json:"compareLabel"`
	Picker       PickerView        `json:"picker"`
}
