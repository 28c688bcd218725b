package models

import (
	"fmt"
	"strings"
)

const (
	SideLH = "LH"
	SideRH = "RH"
)

// VariantName builds the ledger key for a part and an optional side.
func VariantName(partDescription, side string) string {
	if strings.TrimSpace(side) != "" {
		return partDescription + " " + side
	}
	return partDescription
}

// ParseVariantName splits a ledger key into its part description and side.
func ParseVariantName(variant string) (partDescription, side string) {
	idx := strings.LastIndex(variant, " ")
	if idx > 0 {
		suffix := variant[idx+1:]
		if suffix == SideLH || suffix == SideRH {
			return variant[:idx], suffix
		}
	}
	return variant, ""
}

// NormalizeSide upper-cases a side value and rejects anything but LH, RH or blank.
func NormalizeSide(side string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(side))
	switch s {
	case "", SideLH, SideRH:
		return s, nil
	default:
		return "", Errorf(ErrValidation, "invalid side %q: must be LH, RH or empty", side)
	}
}

// MonthKey formats a plan month as YYYY-MM.
func MonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
