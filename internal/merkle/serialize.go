package merkle

import (
	"encoding/json"
	"fmt"
)

// Serialize renders a tree to its on-wire/on-disk textual form. The proof
// format deliberately excludes the root — verification always takes the
// root from the client's own commitment, never from the blob being
// verified.
func Serialize(t *Tree) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil tree", ErrSerialize)
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	return b, nil
}

// Deserialize parses a tree previously produced by Serialize. Round-trip is
// exact: Deserialize(Serialize(t)) reproduces t's levels and index.
func Deserialize(data []byte) (*Tree, error) {
	var t Tree
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialize, err)
	}
	if len(t.Levels) == 0 {
		return nil, fmt.Errorf("%w: empty levels", ErrDeserialize)
	}
	return &t, nil
}
