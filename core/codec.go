// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"math"
	"slices"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// IDMUS is the MUS serializer for ID.
var IDMUS = idMUS{}

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	return ID(tmp), n, err
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

// DocumentMUS is the MUS serializer for Document. Field order:
// Id, ContentHash, Content, Metadata (sorted by key), Vector, InsertedAt, UpdatedAt.
var DocumentMUS = documentMUS{}

type documentMUS struct{}

func (s documentMUS) Marshal(v Document, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.ContentHash, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += marshalMetadata(v.Metadata, bs[n:])
	n += marshalVector(v.Vector, bs[n:])
	n += marshalTime(v.InsertedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return
}

func (s documentMUS) Unmarshal(bs []byte) (v Document, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.ContentHash, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Metadata, n1, err = unmarshalMetadata(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = unmarshalVector(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (s documentMUS) Size(v Document) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.ContentHash)
	size += ord.String.Size(v.Content)
	size += sizeMetadata(v.Metadata)
	size += sizeVector(v.Vector)
	size += sizeTime(v.InsertedAt)
	size += sizeTime(v.UpdatedAt)
	return
}

func marshalMetadata(m map[string]string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(m), bs)
	for _, k := range sortedKeys(m) {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(m[k], bs[n:])
	}
	return
}

func unmarshalMetadata(bs []byte) (m map[string]string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	if length < 0 {
		err = ErrCorruptRecord
		return
	}
	if length == 0 {
		return
	}
	m = make(map[string]string, length)
	var (
		n1   int
		k, v string
	)
	for range length {
		k, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		v, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		m[k] = v
	}
	return
}

func sizeMetadata(m map[string]string) (size int) {
	size = varint.Int.Size(len(m))
	for k, v := range m {
		size += ord.String.Size(k) + ord.String.Size(v)
	}
	return
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Vector components are stored as the varint of their IEEE 754 bits.
func marshalVector(vec []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(vec), bs)
	for _, f := range vec {
		n += varint.Uint32.Marshal(math.Float32bits(f), bs[n:])
	}
	return
}

func unmarshalVector(bs []byte) (vec []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	if length < 0 {
		err = ErrCorruptRecord
		return
	}
	if length == 0 {
		return
	}
	vec = make([]float32, length)
	var (
		n1   int
		bits uint32
	)
	for i := range vec {
		bits, n1, err = varint.Uint32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		vec[i] = math.Float32frombits(bits)
	}
	return
}

func sizeVector(vec []float32) (size int) {
	size = varint.Int.Size(len(vec))
	for _, f := range vec {
		size += varint.Uint32.Size(math.Float32bits(f))
	}
	return
}

// Times are stored as UTC Unix microseconds; the zero time round-trips as zero.
func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(timeToMicros(t), bs)
}

func unmarshalTime(bs []byte) (t time.Time, n int, err error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return
	}
	if micros != 0 {
		t = time.UnixMicro(micros).UTC()
	}
	return
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(timeToMicros(t))
}

func timeToMicros(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}
