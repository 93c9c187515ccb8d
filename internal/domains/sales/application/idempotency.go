package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
)

type normalizedCreateOrder struct {
	PetIDs []int64 `json:"petIds"`
}

// FingerprintCreateOrder hashes the request payload, excluding the idempotency key.
func FingerprintCreateOrder(petIDs []int64) (string, error) {
	payload, err := json.Marshal(normalizedCreateOrder{PetIDs: dedupe(petIDs)})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// dedupe returns the distinct ids in ascending order.
func dedupe(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
