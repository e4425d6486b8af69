package uvarint

// EncodeUint8 encodes v into buf and returns the slice of encoded bytes.
func EncodeUint8(v uint8, buf *[Uint8Len]byte) []byte { return Encode(v, buf[:]) }

// EncodeUint16 encodes v into buf and returns the slice of encoded bytes.
func EncodeUint16(v uint16, buf *[Uint16Len]byte) []byte { return Encode(v, buf[:]) }

// EncodeUint32 encodes v into buf and returns the slice of encoded bytes.
func EncodeUint32(v uint32, buf *[Uint32Len]byte) []byte { return Encode(v, buf[:]) }

// EncodeUint64 encodes v into buf and returns the slice of encoded bytes.
func EncodeUint64(v uint64, buf *[Uint64Len]byte) []byte { return Encode(v, buf[:]) }

// EncodeUint encodes v into buf and returns the slice of encoded bytes.
func EncodeUint(v uint, buf *[UintLen]byte) []byte { return Encode(v, buf[:]) }

// EncodeUint128 encodes v into buf and returns the slice of encoded bytes.
func EncodeUint128(v Uint128, buf *[Uint128Len]byte) []byte {
	i := 0
	for v.Hi != 0 || v.Lo >= 0x80 {
		buf[i] = byte(v.Lo) | 0x80
		v = v.shr7()
		i++
	}
	buf[i] = byte(v.Lo)
	return buf[:i+1]
}
