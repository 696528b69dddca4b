// Package catalog keeps a SQLite ledger of every recording democap starts.
//
// Capture sessions insert a row in the recording state before the encoder
// launches and close it as completed, missing, or failed once stop has
// verified the artifact. The CLI reads it back for the recordings listing.
package catalog
