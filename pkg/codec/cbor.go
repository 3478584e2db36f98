// Package codec is the binary encoding for policy bundles shipped between
// the control plane and dispatch nodes. It uses CBOR Core Deterministic
// Encoding so equal bundles always produce equal bytes and can be compared
// or hashed directly.
package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	opts := cbor.CoreDetEncOptions()
	// Level, Decision and friends travel as their text names.
	opts.TextMarshaler = cbor.TextMarshalerTextString
	var err error
	if encMode, err = opts.EncMode(); err != nil {
		panic("codec: cbor encoder: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Condition parameters decode into map[string]any, matching what
		// the YAML loader produces.
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("codec: cbor decoder: " + err.Error())
	}
}

// Marshal encodes v deterministically.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes data into v. Unknown fields are ignored.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Diagnose renders data in CBOR diagnostic notation for inspection.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
