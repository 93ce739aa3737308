package protocol

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	jsoniter "github.com/json-iterator/go"

	"github.com/dna-dev/dna/internal/errors"
)

// Codec encodes frames for one wire format.
type Codec interface {
	// Name is the configuration name of the codec.
	Name() string

	// Binary reports whether encoded frames are binary messages.
	Binary() bool

	Encode(f *Frame) ([]byte, error)

	// Decode parses and validates one frame.
	Decode(data []byte) (*Frame, error)
}

// Codec names.
const (
	CodecJSON = "json"
	CodecCBOR = "cbor"
)

// ForName returns the codec registered under name.
func ForName(name string) (Codec, error) {
	switch name {
	case CodecJSON, "":
		return JSON, nil
	case CodecCBOR:
		return CBOR, nil
	}
	return nil, errors.New(errors.CodeConfigInvalid).
		WithSubject(name).
		WithDetail("Supported encodings are json and cbor.")
}

// JSON is the text codec.
var JSON Codec = jsonCodec{api: jsoniter.ConfigCompatibleWithStandardLibrary}

type jsonCodec struct {
	api jsoniter.API
}

func (jsonCodec) Name() string { return CodecJSON }
func (jsonCodec) Binary() bool { return false }

func (c jsonCodec) Encode(f *Frame) ([]byte, error) {
	return c.api.Marshal(f)
}

func (c jsonCodec) Decode(data []byte) (*Frame, error) {
	var f Frame
	if err := c.api.Unmarshal(data, &f); err != nil {
		return nil, errors.New(errors.CodeMalformedFrame).Wrap(err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// CBOR is the binary codec.
var CBOR Codec = newCBORCodec()

type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func newCBORCodec() cborCodec {
	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	enc, err := encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create frame CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:      cbor.DupMapKeyEnforcedAPF,
		IndefLength:    cbor.IndefLengthAllowed,
		IntDec:         cbor.IntDecConvertSigned,
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}
	dec, err := decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create frame CBOR decoder mode: %v", err))
	}
	return cborCodec{enc: enc, dec: dec}
}

func (cborCodec) Name() string { return CodecCBOR }
func (cborCodec) Binary() bool { return true }

func (c cborCodec) Encode(f *Frame) ([]byte, error) {
	return c.enc.Marshal(f)
}

func (c cborCodec) Decode(data []byte) (*Frame, error) {
	var f Frame
	if err := c.dec.Unmarshal(data, &f); err != nil {
		return nil, errors.New(errors.CodeMalformedFrame).Wrap(err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}
