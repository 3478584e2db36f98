package policy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/laughtale01/Scratch-sub001/internal/ids"
	"github.com/laughtale01/Scratch-sub001/pkg/codec"
)

// BundleVersion is the bundle format version written by EncodeBundle.
const BundleVersion = 1

// Bundle is a versioned policy set distributed to dispatch nodes.
type Bundle struct {
	Version  int      `json:"version"`
	Revision string   `json:"revision"`
	Policies []Policy `json:"policies"`
}

// NewBundle wraps policies in a bundle whose revision is stamped at now.
func NewBundle(policies []Policy, now time.Time) Bundle {
	return Bundle{Version: BundleVersion, Revision: ids.NewAt(now), Policies: policies}
}

// CreatedAt returns the instant encoded in the bundle revision.
func (b Bundle) CreatedAt() (time.Time, error) {
	return ids.Time(b.Revision)
}

// EncodeBundle serialises b deterministically.
func EncodeBundle(b Bundle) ([]byte, error) {
	data, err := codec.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encode policy bundle: %w", err)
	}
	return data, nil
}

// DecodeBundle parses a bundle and validates every policy in it.
func DecodeBundle(data []byte) (Bundle, error) {
	var b Bundle
	if err := codec.Unmarshal(data, &b); err != nil {
		return Bundle{}, fmt.Errorf("decode policy bundle: %w", err)
	}
	if b.Version != BundleVersion {
		return Bundle{}, fmt.Errorf("%w: unsupported bundle version %d", ErrInvalidPolicy, b.Version)
	}
	for i := range b.Policies {
		if err := b.Policies[i].Validate(); err != nil {
			return Bundle{}, fmt.Errorf("bundle policy #%d: %w", i+1, err)
		}
	}
	return b, nil
}

// Digest returns the hex SHA-256 of an encoded bundle.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
