// Package spv loads and validates compiled SPIR-V shader bytecode.
package spv

import (
	"encoding/binary"
	"os"

	"github.com/cockroachdb/errors"
)

// magic is the SPIR-V magic number in the file's little-endian word order.
const magic = 0x07230203

// Load reads a SPIR-V binary from disk and validates its framing.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "spv: read %s", path)
	}
	if err := Validate(data); err != nil {
		return nil, errors.Wrapf(err, "spv: %s", path)
	}
	return data, nil
}

// Validate checks that data is plausibly a SPIR-V module: a whole number of
// 32-bit words, at least a full 5-word header, starting with the magic number.
func Validate(data []byte) error {
	if len(data) < 20 {
		return errors.Newf("truncated module, %d bytes", len(data))
	}
	if len(data)%4 != 0 {
		return errors.Newf("module size %d is not a multiple of 4", len(data))
	}
	if got := binary.LittleEndian.Uint32(data); got != magic {
		return errors.Newf("bad magic number 0x%08x", got)
	}
	return nil
}

// Words reinterprets validated bytecode as the 32-bit words the Vulkan API
// consumes.
func Words(data []byte) []uint32 {
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return words
}
