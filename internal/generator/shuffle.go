package generator

// Shuffle permutes options deterministically from seed and returns the
// permutation plus the new index of the option at correctIndex.
//
// The arithmetic matches the web client's seeded shuffle exactly: a 32-bit
// wrapping string hash feeds a linear-congruential step
// (h = (h*9301 + 49297) mod 233280) that drives Fisher–Yates from the last
// index down to 1. Regenerating the same (loop, index) must reproduce the
// same integer sequence on every platform, so the constants and the signed
// 32-bit wrap are load-bearing. Do not swap in math/rand.
func Shuffle(options []string, correctIndex int, seed string) ([]string, int) {
	shuffled := make([]string, len(options))
	copy(shuffled, options)
	newCorrect := correctIndex

	h := int64(hashSeed(seed))
	for i := len(shuffled) - 1; i >= 1; i-- {
		h = (h*9301 + 49297) % 233280
		j := h
		if j < 0 {
			j = -j
		}
		j %= int64(i + 1)

		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		switch newCorrect {
		case i:
			newCorrect = int(j)
		case int(j):
			newCorrect = i
		}
	}

	return shuffled, newCorrect
}

// hashSeed folds the seed into a signed 32-bit integer, wrapping on overflow
// the way a JS `(h*31 + c) | 0` does.
func hashSeed(seed string) int32 {
	var h int32
	for i := 0; i < len(seed); i++ {
		h = h*31 + int32(seed[i])
	}
	return h
}
