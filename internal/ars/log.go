package ars

import "log"

// Debug enables verbose per-identity logging. It is off by default: a
// simulation with thousands of identities would otherwise drown its own
// warnings in ledger-mutation noise. cmd/simulate flips it on with -v.
var Debug = false

func debugf(format string, args ...interface{}) {
	if Debug {
		log.Printf("[ARS] "+format, args...)
	}
}
