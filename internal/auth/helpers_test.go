package auth

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Unix(1_700_000_000, 0)

func fixedClock() time.Time { return fixedNow }

func encodeSegment(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(b)
}

// rawToken builds an unsigned header.payload.signature string around payload.
func rawToken(t *testing.T, payload any) string {
	t.Helper()
	header := map[string]any{"alg": "HS256", "typ": "JWT"}
	return encodeSegment(t, header) + "." + encodeSegment(t, payload) + ".c2lnbmF0dXJl"
}

// tokenFor builds a token valid for an hour after fixedNow unless exp is given.
func tokenFor(t *testing.T, role any, exp ...int64) string {
	t.Helper()
	expiry := fixedNow.Add(time.Hour).Unix()
	if len(exp) > 0 {
		expiry = exp[0]
	}
	return rawToken(t, map[string]any{"role": role, "exp": expiry, "funcionarioId": "42"})
}
