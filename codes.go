package server

import "math/rand"

// roomCodeAlphabet deliberately omits glyphs that read ambiguously when
// typed from a screen: I, L, O, 0 and 1.
const roomCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const roomCodeLength = 5

func newRoomCode(rng *rand.Rand) string {
	code := make([]byte, roomCodeLength)
	for i := range code {
		code[i] = roomCodeAlphabet[rng.Intn(len(roomCodeAlphabet))]
	}
	return string(code)
}
