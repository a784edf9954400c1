package webauthnx

import (
	"crypto/rand"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBase64URL_RoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 15, 16, 17, 32} {
		t.Run(fmt.Sprintf("len=%d", n), func(t *testing.T) {
			buf := make([]byte, n)
			_, err := rand.Read(buf)
			require.NoError(t, err)

			got, err := DecodeBase64URL(EncodeBase64URL(buf))
			require.NoError(t, err)
			require.Equal(t, buf, got)
		})
	}
}

func TestBase64URL_NoStandardAlphabet(t *testing.T) {
	// bytes whose standard base64 encoding contains '+' and '/'
	buf := []byte{0xfb, 0xff, 0xbf, 0xef, 0xfe}
	s := EncodeBase64URL(buf)

	require.False(t, strings.ContainsAny(s, "+/="), "encoded form %q must be URL-safe and unpadded", s)

	got, err := DecodeBase64URL(s)
	require.NoError(t, err)
	require.Equal(t, buf, got)
}

func TestDecodeBase64URL_AcceptsPadding(t *testing.T) {
	got, err := DecodeBase64URL("AQID" + "AA==")
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 0}, got)
}

func TestDecodeBase64URL_RejectsGarbage(t *testing.T) {
	_, err := DecodeBase64URL("not base64url!!!")
	require.Error(t, err)
}
