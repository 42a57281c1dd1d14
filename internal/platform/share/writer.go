// Package share delivers the gallery's text share payload.
package share

import (
	"context"
	"fmt"
	"io"
)

// Writer "shares" by printing the message to an io.Writer, which is what a
// terminal has instead of a platform share sheet.
type Writer struct {
	Out io.Writer
}

// Share writes message followed by a newline.
func (w Writer) Share(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w.Out, message)
	return err
}
