package models

import "strings"

// Method identifies a secondary-gate authentication method.
type Method string

const (
	MethodPin       Method = "pin"
	MethodPassword  Method = "password"
	MethodPattern   Method = "pattern"
	MethodBiometric Method = "biometric"
)

// Methods lists all known methods in ascending priority (last-enabled-wins
// order for the non-biometric ones). Biometric sits apart: the gate attempts
// it silently before showing any challenge.
var Methods = []Method{MethodPin, MethodPassword, MethodPattern, MethodBiometric}

// challengePriority orders the methods the gate can challenge interactively,
// highest priority first.
var challengePriority = []Method{MethodPattern, MethodPassword, MethodPin}

func (m Method) Valid() bool {
	switch m {
	case MethodPin, MethodPassword, MethodPattern, MethodBiometric:
		return true
	}
	return false
}

// MinSecretLen returns the minimum accepted secret length for the method, in
// the unit SecretLen measures. Biometric takes no secret and returns 0.
func (m Method) MinSecretLen() int {
	switch m {
	case MethodPin:
		return 4
	case MethodPassword:
		return 6
	case MethodPattern:
		return 3 // connected points
	default:
		return 0
	}
}

// SecretLen measures a candidate secret for the method: pattern secrets are
// dash-separated point paths ("1-5-9") measured in connected points, every
// other method is measured in bytes.
func (m Method) SecretLen(secret []byte) int {
	if m == MethodPattern {
		return PatternPoints(secret)
	}
	return len(secret)
}

// PatternPoints counts the points in a dash-separated pattern path.
func PatternPoints(pattern []byte) int {
	s := strings.Trim(string(pattern), "-")
	if s == "" {
		return 0
	}
	return len(strings.Split(s, "-"))
}
