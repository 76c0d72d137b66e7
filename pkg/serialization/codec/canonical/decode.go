package canonical

import (
	"bytes"
	"encoding/json"
)

// Unmarshal parses data produced by Marshal (or any JSON carrying the
// same field names) into v. Decoding does not need to be canonical; the
// round-trip guarantee is parse(canonical(x)) == x.
func Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
