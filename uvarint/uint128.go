package uvarint

import "math/big"

// Uint128 is an unsigned 128-bit integer split into two 64-bit halves.
type Uint128 struct {
	Hi, Lo uint64
}

// MaxUint128 is the largest Uint128.
var MaxUint128 = Uint128{Hi: ^uint64(0), Lo: ^uint64(0)}

// Uint128From64 widens v.
func Uint128From64(v uint64) Uint128 { return Uint128{Lo: v} }

func (u Uint128) shr7() Uint128 {
	return Uint128{Hi: u.Hi >> 7, Lo: u.Lo>>7 | u.Hi<<57}
}

// or7 sets the seven bits k at bit offset shift.
func (u Uint128) or7(k byte, shift uint) Uint128 {
	g := uint64(k)
	switch {
	case shift >= 64:
		u.Hi |= g << (shift - 64)
	default:
		u.Lo |= g << shift
		if shift > 57 {
			u.Hi |= g >> (64 - shift)
		}
	}
	return u
}

// Big returns u as a big.Int.
func (u Uint128) Big() *big.Int {
	b := new(big.Int).SetUint64(u.Hi)
	b.Lsh(b, 64)
	return b.Or(b, new(big.Int).SetUint64(u.Lo))
}

func (u Uint128) String() string { return u.Big().String() }
