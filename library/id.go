package library

import "math/rand"

// idDigits is the length of the numeric part of an account ID.
const idDigits = 12

// GenerateUniqueID draws random 12-digit numeric strings until one is not in
// existing, and returns it with a "#" marker prefix. Collision avoidance is
// the only requirement; the IDs are human-readable labels, not secrets.
func GenerateUniqueID(existing map[string]struct{}) string {
	digits := make([]byte, idDigits)
	for {
		for i := range digits {
			digits[i] = byte('0' + rand.Intn(10))
		}
		id := "#" + string(digits)
		if _, taken := existing[id]; !taken {
			return id
		}
	}
}
