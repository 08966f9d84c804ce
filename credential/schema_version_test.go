package credential

import (
	"bytes"
	"strings"
	"testing"
)

func TestDecodeRejectsUnsupportedSchemaVersion(t *testing.T) {
	_, err := Decode([]byte{99})
	if err == nil || !strings.Contains(err.Error(), "unsupported credential schema version") {
		t.Fatalf("expected unsupported schema version error, got %v", err)
	}
}

// encodeLegacyV1Table writes a table in the v1 layout, which predates the
// credential-less flag.
func encodeLegacyV1Table(t *testing.T, records []*Record) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteByte(tableSchemaVersionV1)
	writeUvarint(&buf, uint64(len(records)))

	for _, r := range records {
		for _, s := range []string{r.SessionID, r.UserID, r.AccessToken, r.RefreshToken, r.UserName} {
			if err := writeString(&buf, s); err != nil {
				t.Fatalf("write string: %v", err)
			}
		}
		writeUvarint(&buf, uint64(len(r.Scopes)))
		for _, scope := range r.Scopes {
			if err := writeString(&buf, scope); err != nil {
				t.Fatalf("write scope: %v", err)
			}
		}
		for _, s := range []string{r.MailboxPassword, r.PasswordKeySalt, r.PrivateKey} {
			if err := writeString(&buf, s); err != nil {
				t.Fatalf("write string: %v", err)
			}
		}
		buf.WriteByte(byte(r.Module))
	}

	return buf.Bytes()
}

func TestDecodeAcceptsLegacyV1Blob(t *testing.T) {
	rec := sampleRecord("sid-legacy", "u-legacy")
	blob := encodeLegacyV1Table(t, []*Record{rec})

	decoded, err := Decode(blob)
	if err != nil {
		t.Fatalf("decode legacy blob: %v", err)
	}

	got := decoded["sid-legacy"]
	if got == nil {
		t.Fatal("legacy record missing after decode")
	}
	if got.AccessToken != rec.AccessToken || got.PrivateKey != rec.PrivateKey {
		t.Fatalf("legacy fields lost: %+v", got)
	}
	// The v1 layout has no credential-less flag; decoded records default to false.
	if got.CredentialLess {
		t.Fatal("legacy record unexpectedly flagged credential-less")
	}
}

func TestReencodedLegacyBlobIsCurrentVersion(t *testing.T) {
	blob := encodeLegacyV1Table(t, []*Record{sampleRecord("s1", "u1")})
	decoded, err := Decode(blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	upgraded, err := Encode(decoded)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if len(upgraded) == 0 || upgraded[0] != tableSchemaVersionCurrent {
		t.Fatalf("expected current schema byte %d, got %v", tableSchemaVersionCurrent, upgraded[:1])
	}
}
