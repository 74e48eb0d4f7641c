package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

var (
	NanoidSize     = 16
	nanoidAlphabet = "0123456789abcdef"
)

// NanoID returns a lowercase hex random string, used for object key suffixes.
func NanoID() string {
	return NanoIDSize(NanoidSize)
}

func NanoIDSize(size int) string {
	if size == 0 {
		size = NanoidSize
	}

	return gonanoid.MustGenerate(nanoidAlphabet, size)
}
