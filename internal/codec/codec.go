// Package codec encodes durable records with CBOR.
//
// Encoding is Core Deterministic (RFC 8949 section 4.2) so the same record
// always produces the same bytes. Decoding ignores unknown fields, which lets
// newer versions add fields to a record without breaking older readers.
package codec

import (
	"github.com/fxamacker/cbor/v2"
)

var (
	// encMode is the deterministic encoder shared by all records.
	//nolint:gochecknoglobals // Modes are immutable once built.
	encMode cbor.EncMode
	// decMode is the lenient decoder shared by all records.
	//nolint:gochecknoglobals // Modes are immutable once built.
	decMode cbor.DecMode
)

func init() { //nolint:gochecknoinits // Modes must exist before any record is touched.
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}
