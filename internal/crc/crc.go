// Package crc implements the streaming CRC-32 used by the SPIKE App 3
// file-transfer messages.
package crc

import "hash/crc32"

// Checksum returns the CRC-32 (IEEE) of data zero-padded to the next 4-byte
// boundary, continued from seed. Seed is 0 for the first call, or a previous
// return value to continue a running checksum. Because padding is applied
// per call, chaining over successive chunks matches a single whole-buffer
// call only when every chunk except the last is a multiple of 4 bytes long.
// The hub reports max_chunk_size as a multiple of 4.
func Checksum(data []byte, seed uint32) uint32 {
	sum := crc32.Update(seed, crc32.IEEETable, data)
	if rem := len(data) % 4; rem != 0 {
		var pad [3]byte
		sum = crc32.Update(sum, crc32.IEEETable, pad[:4-rem])
	}
	return sum
}
