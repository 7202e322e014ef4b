// Package encoding implements the single self-describing, order-preserving
// key encoding shared by the MVCC layer (internal/mvcc) and the SQL
// keyspace (internal/sqlengine), per the order invariants the MVCC keyspace
// must hold: NextVersion sorts as its own singleton, TxnActive(*) and
// TxnWrite(v, *) are each prefix-scannable as one contiguous range, and
// Version(raw, *) is contiguous and ordered by version ascending for a
// fixed raw key.
//
// Byte strings are encoded escaped-and-terminated (0x00 -> 0x00 0xFF, then a
// 0x00 0x00 terminator) so that no encoded byte string is ever a
// byte-for-byte prefix of another's encoding; integers that must sort
// numerically are encoded as fixed-width big-endian. This is the standard
// technique for building composite order-preserving keys and is what lets a
// single tag byte plus a handful of encoded fields double as both a SQL key
// and an MVCC key without the two colliding.
package encoding

import (
	"encoding/binary"

	"govetachun/kvsql/internal/dberrors"
)

// Kind tags the six logical key kinds. A decoded MVCCKey holds one of the
// first four; Table and Row are SQL raw keys that DecodeMVCCKey rejects.
type Kind byte

const (
	KindNextVersion Kind = 1
	KindTxnActive   Kind = 2
	KindTxnWrite    Kind = 3
	KindVersion     Kind = 4
	KindTable       Kind = 5
	KindRow         Kind = 6
)

// EncodeBytes escapes raw so that the 0x00 byte - which terminates the
// encoding - cannot appear unescaped, then appends the terminator. The
// result compares byte-for-byte in the same order as raw under
// lexicographic comparison, for any two byte strings.
func EncodeBytes(raw []byte) []byte {
	out := make([]byte, 0, len(raw)+2)
	for _, b := range raw {
		if b == 0x00 {
			out = append(out, 0x00, 0xFF)
		} else {
			out = append(out, b)
		}
	}
	return append(out, 0x00, 0x00)
}

// EncodeBytesPrefix escapes raw the same way EncodeBytes does but omits the
// terminator. Because the escaping is applied byte by byte with no
// lookahead, EncodeBytesPrefix(raw) is always a true byte-prefix of
// EncodeBytes(longer) for any longer byte string that starts with raw. This
// is what lets a raw-key prefix such as Row(table, *) be turned into a
// prefix over the escaped, terminated encodings Version(raw, v) uses.
func EncodeBytesPrefix(raw []byte) []byte {
	out := make([]byte, 0, len(raw))
	for _, b := range raw {
		if b == 0x00 {
			out = append(out, 0x00, 0xFF)
		} else {
			out = append(out, b)
		}
	}
	return out
}

// DecodeBytes reverses EncodeBytes, returning the decoded value and
// whatever bytes follow the terminator.
func DecodeBytes(buf []byte) (value []byte, rest []byte, err error) {
	var out []byte
	for i := 0; i < len(buf); i++ {
		if buf[i] != 0x00 {
			out = append(out, buf[i])
			continue
		}
		if i+1 >= len(buf) {
			return nil, nil, dberrors.Internalf("truncated byte string in key")
		}
		switch buf[i+1] {
		case 0xFF:
			out = append(out, 0x00)
			i++
		case 0x00:
			return out, buf[i+2:], nil
		default:
			return nil, nil, dberrors.Internalf("invalid escape sequence in key")
		}
	}
	return nil, nil, dberrors.Internalf("unterminated byte string in key")
}

// EncodeUint64 encodes v as 8 big-endian bytes, so numeric order and byte
// order agree.
func EncodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

// DecodeUint64 reads the 8 big-endian bytes encoded by EncodeUint64.
func DecodeUint64(buf []byte) (uint64, []byte, error) {
	if len(buf) < 8 {
		return 0, nil, dberrors.Internalf("truncated version in key")
	}
	return binary.BigEndian.Uint64(buf[:8]), buf[8:], nil
}

// MVCCKey is the decoded form of any of the four MVCC-owned key kinds.
// Version and Raw are populated only for the kinds that carry them.
type MVCCKey struct {
	Kind    Kind
	Version uint64
	Raw     []byte
}

// EncodeNextVersion returns the singleton key holding the next version
// counter.
func EncodeNextVersion() []byte {
	return []byte{byte(KindNextVersion)}
}

// EncodeTxnActive encodes the marker recording that version v is live.
func EncodeTxnActive(v uint64) []byte {
	buf := []byte{byte(KindTxnActive)}
	return append(buf, EncodeUint64(v)...)
}

// TxnActivePrefix is the contiguous range prefix for {TxnActive(*)}.
func TxnActivePrefix() []byte {
	return []byte{byte(KindTxnActive)}
}

// EncodeTxnWrite encodes the undo-log entry recording that version v wrote
// raw key raw.
func EncodeTxnWrite(v uint64, raw []byte) []byte {
	buf := []byte{byte(KindTxnWrite)}
	buf = append(buf, EncodeUint64(v)...)
	return append(buf, EncodeBytes(raw)...)
}

// TxnWritePrefix is the contiguous range prefix for {TxnWrite(v, *)}.
func TxnWritePrefix(v uint64) []byte {
	buf := []byte{byte(KindTxnWrite)}
	return append(buf, EncodeUint64(v)...)
}

// EncodeVersion encodes one version of raw key raw.
func EncodeVersion(raw []byte, v uint64) []byte {
	buf := []byte{byte(KindVersion)}
	buf = append(buf, EncodeBytes(raw)...)
	return append(buf, EncodeUint64(v)...)
}

// VersionLowerBound is Version(raw, 0), the inclusive low end of the
// contiguous, version-ascending range for raw.
func VersionLowerBound(raw []byte) []byte {
	return EncodeVersion(raw, 0)
}

// VersionUpperBound is Version(raw, v), the inclusive high end of the range
// visible to a transaction at version v.
func VersionUpperBound(raw []byte, v uint64) []byte {
	return EncodeVersion(raw, v)
}

// VersionPrefix is the contiguous range prefix for {Version(raw, *)},
// regardless of version.
func VersionPrefix(raw []byte) []byte {
	buf := []byte{byte(KindVersion)}
	return append(buf, EncodeBytes(raw)...)
}

// VersionRawKeyPrefix is the engine-level prefix matching Version(raw, v)
// for every raw key that starts with rawPrefix, at every version. The MVCC
// layer's raw scan_prefix operation (which does not filter by visibility)
// and its visibility-aware SQL-facing counterpart both scan this prefix.
func VersionRawKeyPrefix(rawPrefix []byte) []byte {
	buf := []byte{byte(KindVersion)}
	return append(buf, EncodeBytesPrefix(rawPrefix)...)
}

// DecodeMVCCKey decodes any key produced by the Encode* functions above.
func DecodeMVCCKey(buf []byte) (MVCCKey, error) {
	if len(buf) == 0 {
		return MVCCKey{}, dberrors.Internalf("empty key")
	}
	kind := Kind(buf[0])
	rest := buf[1:]
	switch kind {
	case KindNextVersion:
		return MVCCKey{Kind: kind}, nil
	case KindTxnActive:
		v, _, err := DecodeUint64(rest)
		if err != nil {
			return MVCCKey{}, err
		}
		return MVCCKey{Kind: kind, Version: v}, nil
	case KindTxnWrite:
		v, rest, err := DecodeUint64(rest)
		if err != nil {
			return MVCCKey{}, err
		}
		raw, _, err := DecodeBytes(rest)
		if err != nil {
			return MVCCKey{}, err
		}
		return MVCCKey{Kind: kind, Version: v, Raw: raw}, nil
	case KindVersion:
		raw, rest, err := DecodeBytes(rest)
		if err != nil {
			return MVCCKey{}, err
		}
		v, _, err := DecodeUint64(rest)
		if err != nil {
			return MVCCKey{}, err
		}
		return MVCCKey{Kind: kind, Version: v, Raw: raw}, nil
	default:
		return MVCCKey{}, dberrors.Internalf("unexpected key kind %d", kind)
	}
}

// EncodeOptionalBytes wraps an MVCC value so that an absent value (a
// tombstone) is distinguishable from a present, possibly empty, one.
func EncodeOptionalBytes(value []byte, present bool) []byte {
	if !present {
		return []byte{0x00}
	}
	return append([]byte{0x01}, value...)
}

// DecodeOptionalBytes reverses EncodeOptionalBytes.
func DecodeOptionalBytes(buf []byte) (value []byte, present bool, err error) {
	if len(buf) == 0 {
		return nil, false, dberrors.Internalf("empty optional value")
	}
	switch buf[0] {
	case 0x00:
		return nil, false, nil
	case 0x01:
		return buf[1:], true, nil
	default:
		return nil, false, dberrors.Internalf("invalid optional-value tag")
	}
}

// EncodeTable encodes the SQL catalog key Table(name).
func EncodeTable(name string) []byte {
	buf := []byte{byte(KindTable)}
	return append(buf, EncodeBytes([]byte(name))...)
}

// EncodeRowPrefix is the contiguous range prefix for {Row(table, *)}.
func EncodeRowPrefix(table string) []byte {
	buf := []byte{byte(KindRow)}
	return append(buf, EncodeBytes([]byte(table))...)
}

// EncodeRow encodes the SQL row key Row(table, primary_key), where pk is
// the already-encoded primary key value (see sqltypes.EncodeValue).
func EncodeRow(table string, pk []byte) []byte {
	buf := EncodeRowPrefix(table)
	return append(buf, pk...)
}
