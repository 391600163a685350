package wire

import "math"

// Float32 decodes 4 bytes in little-endian order as an IEEE-754 float32.
// b must have at least 4 bytes.
func Float32(b []byte) float32 {
	_ = b[3]
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits)
}

// PutFloat32 encodes v into the first 4 bytes of b in little-endian order.
func PutFloat32(b []byte, v float32) {
	_ = b[3]
	bits := math.Float32bits(v)
	b[0] = byte(bits)
	b[1] = byte(bits >> 8)
	b[2] = byte(bits >> 16)
	b[3] = byte(bits >> 24)
}

// AppendFloat32 appends the little-endian encoding of v.
func AppendFloat32(dst []byte, v float32) []byte {
	bits := math.Float32bits(v)
	return append(dst, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
}
