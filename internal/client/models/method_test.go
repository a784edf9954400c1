package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPatternPoints(t *testing.T) {
	require.Equal(t, 0, PatternPoints(nil))
	require.Equal(t, 0, PatternPoints([]byte("")))
	require.Equal(t, 0, PatternPoints([]byte("-")))
	require.Equal(t, 1, PatternPoints([]byte("5")))
	require.Equal(t, 2, PatternPoints([]byte("1-5")))
	require.Equal(t, 3, PatternPoints([]byte("1-5-9")))
	require.Equal(t, 4, PatternPoints([]byte("1-2-3-6")))
}

func TestMethod_SecretLen(t *testing.T) {
	// patterns are measured in connected points, not serialized bytes: a
	// 2-point path is 3 bytes long and must still come up short of the
	// 3-point minimum
	require.Equal(t, 2, MethodPattern.SecretLen([]byte("1-5")))
	require.Less(t, MethodPattern.SecretLen([]byte("1-5")), MethodPattern.MinSecretLen())
	require.Equal(t, 3, MethodPattern.SecretLen([]byte("1-5-9")))

	require.Equal(t, 4, MethodPin.SecretLen([]byte("1234")))
	require.Equal(t, 7, MethodPassword.SecretLen([]byte("hunter2")))
}
