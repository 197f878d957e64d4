package entity

import (
	"fmt"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

// DefaultDataKey is read when a request does not name a datastore key.
const DefaultDataKey = "name_key"

// DatastoreQuery asks for one datastore entry of a smart contract.
type DatastoreQuery struct {
	ContractAddress string
	Key             string
	Network         NetworkSelector
}

// DatastoreResult is a matched datastore entry.
// FoundKey is the key exactly as the node listed it.
type DatastoreResult struct {
	ContractAddress string          `json:"contractAddress"`
	DataKey         string          `json:"dataKey"`
	FoundKey        string          `json:"foundKey"`
	RawValue        ByteSeq         `json:"rawValue"`
	DecodedValue    string          `json:"decodedValue"`
	Network         NetworkSelector `json:"network"`
}

// ByteSeq is a byte slice that travels as a JSON array of numbers, the way
// the node encodes datastore keys and values.
type ByteSeq []byte

func (b ByteSeq) MarshalJSON() ([]byte, error) {
	out := make([]byte, 0, 2+len(b)*4)
	out = append(out, '[')
	for i, v := range b {
		if i > 0 {
			out = append(out, ',')
		}
		out = strconv.AppendUint(out, uint64(v), 10)
	}
	return append(out, ']'), nil
}

// UnmarshalJSON accepts a number array; a plain string is taken as its UTF-8 bytes.
func (b *ByteSeq) UnmarshalJSON(data []byte) error {
	iter := jsoniter.ParseBytes(jsoniter.ConfigCompatibleWithStandardLibrary, data)
	switch iter.WhatIsNext() {
	case jsoniter.NilValue:
		*b = nil
		return nil
	case jsoniter.StringValue:
		*b = ByteSeq(iter.ReadString())
		return iter.Error
	case jsoniter.ArrayValue:
		out := ByteSeq{}
		var bad error
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			if it.WhatIsNext() != jsoniter.NumberValue {
				bad = fmt.Errorf("byte sequence element is not a number")
				return false
			}
			n := it.ReadInt64()
			if n < 0 || n > 255 {
				bad = fmt.Errorf("byte sequence element %d out of range", n)
				return false
			}
			out = append(out, byte(n))
			return true
		})
		if bad != nil {
			return bad
		}
		if iter.Error != nil {
			return iter.Error
		}
		*b = out
		return nil
	}
	return fmt.Errorf("byte sequence must be an array of numbers")
}
