// Package gallery implements the photo collection and comparison manager.
//
// A Manager owns the ordered photo collection, the before/after comparison
// selection, and the chooser (picker) session for one gallery screen. The
// presentation layer sends it commands and renders the Snapshot each command
// returns. Every collection change is written through to an injected
// store.PhotoSlot on a best-effort basis: persistence failures are logged and
// counted but never surface to the caller, and the in-memory state stays
// authoritative for the rest of the session.
package gallery
