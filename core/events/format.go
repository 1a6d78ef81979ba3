package events

import (
	"encoding/hex"
	"math/big"

	"flowkernel/crypto"
)

func formatAddress(a crypto.Address) string { return a.String() }

func formatHash(h crypto.Hash) string { return hex.EncodeToString(h[:]) }

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func formatUint64(v uint64) string {
	return new(big.Int).SetUint64(v).String()
}

func formatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
