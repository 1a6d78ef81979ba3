package common

import (
	"math/big"

	flowerrors "flowkernel/core/errors"
)

// MaxUint256 is the ceiling every accumulator in the kernel (pulled_total,
// accrued, spent_this_epoch, moved_so_far) is bound by: all monetary
// amounts are unsigned 256-bit integers.
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// CheckedAdd returns a+b, or flowerrors.ErrArithmeticOverflow if the result
// would exceed MaxUint256. Overflow here is a fatal protocol error: the
// call aborts with no state change, it is never saturated or wrapped.
func CheckedAdd(a, b *big.Int) (*big.Int, error) {
	if a == nil {
		a = big.NewInt(0)
	}
	if b == nil {
		b = big.NewInt(0)
	}
	sum := new(big.Int).Add(a, b)
	if sum.Cmp(MaxUint256) > 0 {
		return nil, flowerrors.ErrArithmeticOverflow
	}
	return sum, nil
}
