// Package sessioncodec converts session records to and from their stored text form.
package sessioncodec

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/target/programme-portal/internal/data/cryptoutil"
	domainauth "github.com/target/programme-portal/internal/domain/auth"
	"github.com/target/programme-portal/internal/ports"
)

// ErrCorrupt is returned by Decode for any value that is not a valid record.
var ErrCorrupt = errors.New("corrupt session record")

var _ ports.RecordCodec = (*Codec)(nil)

// Codec serializes records as JSON and wraps the result with a Sealer.
type Codec struct {
	sealer cryptoutil.Sealer
}

// New returns a codec. A nil sealer stores plain JSON.
func New(sealer cryptoutil.Sealer) *Codec {
	return &Codec{sealer: sealer}
}

// Encode produces the stored form of rec.
func (c *Codec) Encode(rec domainauth.Identity) (string, error) {
	if !rec.Valid() {
		return "", fmt.Errorf("encode session record: invalid identity %q/%q", rec.Username, rec.Role)
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal session record: %w", err)
	}
	if c.sealer == nil {
		return string(b), nil
	}
	sealed, err := c.sealer.Seal(b)
	if err != nil {
		return "", fmt.Errorf("seal session record: %w", err)
	}
	return sealed, nil
}

// Decode parses a stored value. Every failure wraps ErrCorrupt.
func (c *Codec) Decode(raw string) (domainauth.Identity, error) {
	if raw == "" {
		return domainauth.Identity{}, fmt.Errorf("%w: empty", ErrCorrupt)
	}
	b := []byte(raw)
	if c.sealer != nil {
		opened, err := c.sealer.Open(raw)
		if err != nil {
			return domainauth.Identity{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		b = opened
	}
	var rec domainauth.Identity
	if err := json.Unmarshal(b, &rec); err != nil {
		return domainauth.Identity{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if !rec.Valid() {
		return domainauth.Identity{}, fmt.Errorf("%w: incomplete record", ErrCorrupt)
	}
	return rec, nil
}
