package credential

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
)

const (
	tableSchemaVersionCurrent = 2
	tableSchemaVersionV1      = 1
)

// Decode guards against forged length prefixes in corrupted blobs. Session
// tables are small (bounded by logged-in users), so these caps are generous.
const (
	maxEncodedRecords = 1024
	maxEncodedScopes  = 256
	maxEncodedString  = 1 << 20
)

// ErrUnsupportedSchema is returned when a persisted blob carries a schema
// version this build does not understand.
var ErrUnsupportedSchema = errors.New("unsupported credential schema version")

// Encode serializes a full session table to its persistable byte form.
// Records are written in sessionID order so equal tables produce equal bytes.
func Encode(table map[string]*Record) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(tableSchemaVersionCurrent)

	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	writeUvarint(&buf, uint64(len(ids)))

	for _, id := range ids {
		rec := table[id]
		if rec == nil {
			return nil, fmt.Errorf("nil record for session %q", id)
		}
		if rec.SessionID != id {
			return nil, fmt.Errorf("record keyed by %q carries session id %q", id, rec.SessionID)
		}
		if err := encodeRecord(&buf, rec); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// Decode parses a persisted table blob. Malformed bytes produce an error,
// never a panic; callers treat any error as "no sessions available".
func Decode(data []byte) (map[string]*Record, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != tableSchemaVersionCurrent && version != tableSchemaVersionV1 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSchema, version)
	}

	count, err := readUvarint(reader, maxEncodedRecords)
	if err != nil {
		return nil, err
	}

	table := make(map[string]*Record, count)
	for i := uint64(0); i < count; i++ {
		rec, err := decodeRecord(reader, version)
		if err != nil {
			return nil, err
		}
		if rec.SessionID == "" {
			return nil, errors.New("decoded record missing session id")
		}
		if _, dup := table[rec.SessionID]; dup {
			return nil, fmt.Errorf("duplicate session id %q in blob", rec.SessionID)
		}
		table[rec.SessionID] = rec
	}

	return table, nil
}

func encodeRecord(buf *bytes.Buffer, r *Record) error {
	for _, s := range []string{
		r.SessionID, r.UserID,
		r.AccessToken, r.RefreshToken, r.UserName,
	} {
		if err := writeString(buf, s); err != nil {
			return err
		}
	}

	if len(r.Scopes) > maxEncodedScopes {
		return fmt.Errorf("too many scopes: %d", len(r.Scopes))
	}
	writeUvarint(buf, uint64(len(r.Scopes)))
	for _, scope := range r.Scopes {
		if err := writeString(buf, scope); err != nil {
			return err
		}
	}

	for _, s := range []string{r.MailboxPassword, r.PasswordKeySalt, r.PrivateKey} {
		if err := writeString(buf, s); err != nil {
			return err
		}
	}

	buf.WriteByte(byte(r.Module))

	// v2: credential-less flag.
	if r.CredentialLess {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}

	return nil
}

func decodeRecord(reader *bytes.Reader, version byte) (*Record, error) {
	r := &Record{}

	var err error
	if r.SessionID, err = readString(reader); err != nil {
		return nil, err
	}
	if r.UserID, err = readString(reader); err != nil {
		return nil, err
	}
	if r.AccessToken, err = readString(reader); err != nil {
		return nil, err
	}
	if r.RefreshToken, err = readString(reader); err != nil {
		return nil, err
	}
	if r.UserName, err = readString(reader); err != nil {
		return nil, err
	}

	scopeCount, err := readUvarint(reader, maxEncodedScopes)
	if err != nil {
		return nil, err
	}
	if scopeCount > 0 {
		r.Scopes = make([]string, 0, scopeCount)
		for i := uint64(0); i < scopeCount; i++ {
			scope, err := readString(reader)
			if err != nil {
				return nil, err
			}
			r.Scopes = append(r.Scopes, scope)
		}
	}

	if r.MailboxPassword, err = readString(reader); err != nil {
		return nil, err
	}
	if r.PasswordKeySalt, err = readString(reader); err != nil {
		return nil, err
	}
	if r.PrivateKey, err = readString(reader); err != nil {
		return nil, err
	}

	module, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	r.Module = Module(module)

	if version >= tableSchemaVersionCurrent {
		flag, err := reader.ReadByte()
		if err != nil {
			return nil, err
		}
		r.CredentialLess = flag == 1
	}

	return r, nil
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func readUvarint(reader *bytes.Reader, max uint64) (uint64, error) {
	v, err := binary.ReadUvarint(reader)
	if err != nil {
		return 0, err
	}
	if v > max {
		return 0, fmt.Errorf("length prefix %d exceeds limit %d", v, max)
	}
	return v, nil
}

func writeString(buf *bytes.Buffer, s string) error {
	if len(s) > maxEncodedString {
		return fmt.Errorf("string too long: %d bytes", len(s))
	}
	writeUvarint(buf, uint64(len(s)))
	buf.WriteString(s)
	return nil
}

func readString(reader *bytes.Reader) (string, error) {
	n, err := readUvarint(reader, maxEncodedString)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	raw := make([]byte, n)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return "", err
	}
	return string(raw), nil
}
