// Package common holds small helpers shared across client layers.
package common

// WipeByteArray zeroes the buffer in place. Used to scrub password bytes
// once they are no longer needed. Nil-safe.
func WipeByteArray(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
