package uvarint

// DecodeUint8 decodes a uint8 from buf and returns it with the remaining bytes.
func DecodeUint8(buf []byte) (uint8, []byte, error) { return Decode[uint8](buf) }

// DecodeUint16 decodes a uint16 from buf and returns it with the remaining bytes.
func DecodeUint16(buf []byte) (uint16, []byte, error) { return Decode[uint16](buf) }

// DecodeUint32 decodes a uint32 from buf and returns it with the remaining bytes.
func DecodeUint32(buf []byte) (uint32, []byte, error) { return Decode[uint32](buf) }

// DecodeUint64 decodes a uint64 from buf and returns it with the remaining bytes.
func DecodeUint64(buf []byte) (uint64, []byte, error) { return Decode[uint64](buf) }

// DecodeUint decodes a uint from buf and returns it with the remaining bytes.
func DecodeUint(buf []byte) (uint, []byte, error) { return Decode[uint](buf) }

// DecodeUint128 decodes a Uint128 from buf and returns it with the remaining
// bytes.
func DecodeUint128(buf []byte) (Uint128, []byte, error) {
	var v Uint128
	for i, b := range buf {
		shift := uint(i * 7)
		if b&0x80 == 0 && i == Uint128Len-1 && b>>(128-shift) != 0 {
			return Uint128{}, nil, ErrOverflow
		}
		v = v.or7(b&0x7f, shift)
		if b&0x80 == 0 {
			return v, buf[i+1:], nil
		}
		if i == Uint128Len-1 {
			return Uint128{}, nil, ErrOverflow
		}
	}
	return Uint128{}, nil, ErrInsufficient
}
