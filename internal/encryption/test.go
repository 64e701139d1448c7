package encryption

import (
	"bytes"
	"fmt"
	"io"

	"lifeboat/internal/life"
)

// sealMarker prefixes everything the TestSealer "encrypts".
const sealMarker = "sealed:"

// TestSealer is a trivially reversible life.Sealer for tests. It prepends
// a marker on encrypt and verifies and strips it on decrypt, so tests can
// assert that data actually passed through the sealer.
type TestSealer struct{}

var _ life.Sealer = (*TestSealer)(nil)

// NewTestSealer creates a new TestSealer.
func NewTestSealer() *TestSealer { return &TestSealer{} }

func (*TestSealer) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := io.WriteString(w, sealMarker); err != nil {
		return err
	}
	_, err := io.Copy(w, r)
	return err
}

func (*TestSealer) Decrypt(r io.Reader, w io.Writer) error {
	marker := make([]byte, len(sealMarker))
	if _, err := io.ReadFull(r, marker); err != nil {
		return fmt.Errorf("reading seal marker: %w", err)
	}
	if !bytes.Equal(marker, []byte(sealMarker)) {
		return fmt.Errorf("data is not sealed")
	}
	_, err := io.Copy(w, r)
	return err
}

func (*TestSealer) Configured() bool { return true }
