package secrets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"

	kerrors "github.com/env-store/envcli/internal/errors"
)

// KVPair is a single environment variable, the unit that gets sealed.
type KVPair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Marshal renders the canonical form {"key":"...","value":"..."}. Key and
// value must be valid UTF-8, since JSON cannot carry other bytes unchanged.
func (p KVPair) Marshal() ([]byte, error) {
	if p.Key == "" {
		return nil, fmt.Errorf("%w: empty key", kerrors.ErrInvalidKVPair)
	}
	if !utf8.ValidString(p.Key) {
		return nil, fmt.Errorf("%w: key is not valid UTF-8", kerrors.ErrInvalidKVPair)
	}
	if !utf8.ValidString(p.Value) {
		return nil, fmt.Errorf("%w: value of %s is not valid UTF-8", kerrors.ErrInvalidKVPair, p.Key)
	}
	return json.Marshal(p)
}

// ParseKVPair reads the canonical form back.
func ParseKVPair(data []byte) (KVPair, error) {
	var p KVPair
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return KVPair{}, fmt.Errorf("%w: %w", kerrors.ErrInvalidKVPair, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return KVPair{}, fmt.Errorf("%w: trailing data after object", kerrors.ErrInvalidKVPair)
	}
	if p.Key == "" {
		return KVPair{}, fmt.Errorf("%w: empty key", kerrors.ErrInvalidKVPair)
	}
	return p, nil
}
