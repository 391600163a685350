package wire

// CRC16 computes CRC-16/CCITT-FALSE (poly 0x1021, init 0xffff) over p.
func CRC16(p []byte) uint16 {
	return updateCRC16(crcInit, p...)
}

const crcInit uint16 = 0xffff

func updateCRC16(crc uint16, p ...byte) uint16 {
	for _, b := range p {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
