package progress

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// DecodeStrict unmarshals data into v, rejecting unknown fields and trailing data.
// Validators use it so that a record written under an older schema never
// half-matches a newer one.
func DecodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "malformed record")
	}
	if dec.More() {
		return errors.New("malformed record: trailing data")
	}
	return nil
}
