package client_test

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// jsonRoundTrip marshals v and decodes it back into a generic object, which
// is what a server would see on the wire.
func jsonRoundTrip(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshal")
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(err, "unmarshal")
	}

	return out, nil
}
