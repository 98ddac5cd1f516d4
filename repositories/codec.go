package repositories

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Values stored in Badger use the protobuf wire format.
// Field numbers are part of the storage format and must never be reused.
const (
	userFieldID           protowire.Number = 1
	userFieldEmail        protowire.Number = 2
	userFieldPasswordHash protowire.Number = 3
	userFieldRoles        protowire.Number = 4
	userFieldCreatedAt    protowire.Number = 5
	userFieldUsername     protowire.Number = 6
	userFieldPhotoURL     protowire.Number = 7
	userFieldLastSeen     protowire.Number = 8

	chatFieldID        protowire.Number = 1
	chatFieldUsers     protowire.Number = 2
	chatFieldCreatedAt protowire.Number = 3

	messageFieldID              protowire.Number = 1
	messageFieldChat            protowire.Number = 2
	messageFieldAuthor          protowire.Number = 3
	messageFieldContent         protowire.Number = 4
	messageFieldPhotoURL        protowire.Number = 5
	messageFieldReceiverHasRead protowire.Number = 6
	messageFieldAt              protowire.Number = 7
)

type encoder struct {
	buf []byte
}

func (e *encoder) putString(num protowire.Number, v string) {
	if v == "" {
		return
	}
	e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
	e.buf = protowire.AppendString(e.buf, v)
}

func (e *encoder) putStrings(num protowire.Number, values []string) {
	for _, v := range values {
		e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
		e.buf = protowire.AppendString(e.buf, v)
	}
}

func (e *encoder) putInt64(num protowire.Number, v int64) {
	if v == 0 {
		return
	}
	e.buf = protowire.AppendTag(e.buf, num, protowire.VarintType)
	e.buf = protowire.AppendVarint(e.buf, uint64(v))
}

func (e *encoder) putBool(num protowire.Number, v bool) {
	if !v {
		return
	}
	e.buf = protowire.AppendTag(e.buf, num, protowire.VarintType)
	e.buf = protowire.AppendVarint(e.buf, protowire.EncodeBool(v))
}

// field is a single decoded value handed to a decode callback.
type field struct {
	num protowire.Number
	typ protowire.Type
	raw []byte
}

func (f field) asString() (string, error) {
	if f.typ != protowire.BytesType {
		return "", fmt.Errorf("field %d: unexpected wire type %d", f.num, f.typ)
	}
	v, n := protowire.ConsumeString(f.raw)
	if n < 0 {
		return "", protowire.ParseError(n)
	}
	return v, nil
}

func (f field) asInt64() (int64, error) {
	if f.typ != protowire.VarintType {
		return 0, fmt.Errorf("field %d: unexpected wire type %d", f.num, f.typ)
	}
	v, n := protowire.ConsumeVarint(f.raw)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return int64(v), nil
}

func (f field) asBool() (bool, error) {
	v, err := f.asInt64()
	return protowire.DecodeBool(uint64(v)), err
}

// decode walks every field of data. Unknown fields are skipped so that older
// binaries can read values written by newer ones.
func decode(data []byte, fn func(f field) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		size := protowire.ConsumeFieldValue(num, typ, data)
		if size < 0 {
			return protowire.ParseError(size)
		}
		if err := fn(field{num: num, typ: typ, raw: data[:size]}); err != nil {
			return err
		}
		data = data[size:]
	}
	return nil
}
