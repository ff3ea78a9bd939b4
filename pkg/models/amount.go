package models

import "strconv"

// NanoWitsPerWit is the number of nano-wit units in one WIT, the
// fixed-point denomination every on-chain amount (reputation rewards,
// collateral balances) is expressed in.
const NanoWitsPerWit = 1_000_000_000

// WitAmount is an amount of WIT expressed in nano-wits, the protocol's
// smallest indivisible unit. It is a plain int64: unlike a satoshi-based
// amount type, a nano-wit amount does not fit btcutil.Amount's hardcoded
// 1e8 conversion factor, so it is not built on top of it.
type WitAmount int64

// Wits converts n whole WIT to a WitAmount.
func Wits(n int64) WitAmount {
	return WitAmount(n * NanoWitsPerWit)
}

// ToWits returns the amount as a floating-point WIT value, for display
// only — never for further arithmetic.
func (w WitAmount) ToWits() float64 {
	return float64(w) / NanoWitsPerWit
}

// ToCollateralUnits normalizes a nano-wit amount into the plain-integer
// collateral units the ARS engine's ledgers operate in, per spec.md §6's
// "normalized by dividing by 10^9" requirement. Recorded CSV collateral
// stays in nano-wits end to end until it crosses into the engine.
func (w WitAmount) ToCollateralUnits() int64 {
	return int64(w) / NanoWitsPerWit
}

func (w WitAmount) String() string {
	return strconv.FormatInt(int64(w), 10) + "nWIT"
}
