package entity

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	domain "massa_gateway/internal/domain/entity"
	"massa_gateway/internal/pkg/utils"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// AddressInfo is one element of the get_addresses result array.
// Fields the gateway does not read are skipped.
type AddressInfo struct {
	Address                string        `json:"address"`
	CandidateBalance       NumericString `json:"candidate_balance"`
	FinalBalance           NumericString `json:"final_balance"`
	CandidateSCELedgerInfo *LedgerInfo   `json:"candidate_sce_ledger_info"`
	FinalSCELedgerInfo     *LedgerInfo   `json:"final_sce_ledger_info"`
}

// LedgerInfo is a smart-contract ledger view (candidate or final) of an address.
type LedgerInfo struct {
	Balance   NumericString `json:"balance"`
	Datastore *Datastore    `json:"datastore"`
}

// DatastoreView returns the candidate datastore, or the final one when the
// candidate view carries none. Nil means the address has no datastore.
func (a *AddressInfo) DatastoreView() *Datastore {
	if a.CandidateSCELedgerInfo != nil && a.CandidateSCELedgerInfo.Datastore != nil {
		return a.CandidateSCELedgerInfo.Datastore
	}
	if a.FinalSCELedgerInfo != nil && a.FinalSCELedgerInfo.Datastore != nil {
		return a.FinalSCELedgerInfo.Datastore
	}
	return nil
}

// NumericString holds a balance that the node may send either quoted or as a bare number.
type NumericString string

func (n *NumericString) UnmarshalJSON(data []byte) error {
	iter := jsoniter.ParseBytes(jsonAPI, data)
	switch iter.WhatIsNext() {
	case jsoniter.NilValue:
		*n = ""
		return nil
	case jsoniter.StringValue:
		*n = NumericString(iter.ReadString())
		return iter.Error
	case jsoniter.NumberValue:
		num := iter.ReadNumber()
		// A bare number runs to the end of the buffer, which the iterator reports as io.EOF.
		if iter.Error != nil && !errors.Is(iter.Error, io.EOF) {
			return iter.Error
		}
		*n = NumericString(num.String())
		return nil
	}
	return fmt.Errorf("balance must be a string or number")
}

// DatastoreEntry is one key/value pair of a contract datastore.
// RawKey is the key as listed by the node; Key is its decoded bytes.
type DatastoreEntry struct {
	RawKey string
	Key    []byte
	Value  domain.ByteSeq
}

// Datastore keeps entries in the order the node sent them.
type Datastore struct {
	Entries []DatastoreEntry
}

// RawKeys lists every raw key, never nil.
func (d *Datastore) RawKeys() []string {
	keys := make([]string, 0, len(d.Entries))
	for _, e := range d.Entries {
		keys = append(keys, e.RawKey)
	}
	return keys
}

// Lookup returns the first entry whose decoded key equals key.
func (d *Datastore) Lookup(key string) (DatastoreEntry, bool) {
	for _, e := range d.Entries {
		if utils.DecodeUTF8(e.Key) == key {
			return e, true
		}
	}
	return DatastoreEntry{}, false
}

type wireDatastoreEntry struct {
	Key   domain.ByteSeq `json:"key"`
	Value domain.ByteSeq `json:"value"`
}

// UnmarshalJSON accepts the object form {"110,97": [1,2]} and the array form
// [{"key": [110,97], "value": [1,2]}].
func (d *Datastore) UnmarshalJSON(data []byte) error {
	iter := jsoniter.ParseBytes(jsonAPI, data)
	entries := []DatastoreEntry{}
	switch iter.WhatIsNext() {
	case jsoniter.NilValue:
		d.Entries = entries
		return nil
	case jsoniter.ObjectValue:
		iter.ReadObjectCB(func(it *jsoniter.Iterator, rawKey string) bool {
			var value domain.ByteSeq
			it.ReadVal(&value)
			key, _ := utils.DecodeDatastoreKey(rawKey)
			entries = append(entries, DatastoreEntry{RawKey: rawKey, Key: key, Value: value})
			return it.Error == nil
		})
	case jsoniter.ArrayValue:
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			var wire wireDatastoreEntry
			it.ReadVal(&wire)
			entries = append(entries, DatastoreEntry{RawKey: utils.JoinBytes(wire.Key), Key: wire.Key, Value: wire.Value})
			return it.Error == nil
		})
	default:
		return fmt.Errorf("datastore must be an object or an array, got %s", strconv.Quote(string(data)))
	}
	if iter.Error != nil {
		return fmt.Errorf("decode datastore: %w", iter.Error)
	}
	d.Entries = entries
	return nil
}

// GoalsReply is the raw answer of a course goals webhook.
type GoalsReply struct {
	StatusCode int
	Status     string
	Body       []byte
}

// OK reports a 2xx status.
func (r *GoalsReply) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
