// Package sync moves encrypted vault snapshots to an external backup
// transport. The transport only ever receives already-encrypted bytes plus
// the salt and IV; plaintext and derived keys never cross this boundary.
package sync

import "context"

// Transport uploads one encrypted backup payload.
type Transport interface {
	Upload(ctx context.Context, encryptedBlob, iv, salt []byte) error
}
