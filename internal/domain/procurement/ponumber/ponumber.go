// Package ponumber encodes and decodes purchase order numbers.
//
// A number packs the purchasing leader, the division, the work order and the
// purchase sequence within that work order into a short identifier:
//
//	01CP0012-1     current format (v2)
//	01CP0012-1bn23 legacy format (v1), trailing supplier confirmation code
//
// Decoding accepts both formats. Invalid input never panics; it reports ok == false.
package ponumber

import (
	"fmt"
	"regexp"
	"strconv"
)

// Version identifies which historical format a number was written in
type Version int

const (
	// VersionLegacy is the v1 format with a 4-character supplier confirmation suffix
	VersionLegacy Version = 1
	// VersionCurrent is the v2 fixed-width format
	VersionCurrent Version = 2
)

// Limits of the encoded fields
const (
	LeaderIDLength      = 2
	MinDivisionLength   = 2
	MaxDivisionLength   = 3
	MaxWorkOrderNumber  = 9999
	MinPurchaseSequence = 1
	MaxPurchaseSequence = 999999999
	ConfirmationLength  = 4
	workOrderDigits     = 4
	sequenceSeparator   = "-"
	maxSequenceDigits   = 9
)

var (
	currentPattern = regexp.MustCompile(`^([A-Za-z0-9]{2})([A-Za-z0-9]{2,3})(\d{4})-(\d+)$`)
	legacyPattern  = regexp.MustCompile(`^([A-Za-z0-9]{2})([A-Za-z0-9]{2,3})(\d{4})-(\d+)([a-z0-9]{4})$`)
	leaderPattern  = regexp.MustCompile(`^[A-Za-z0-9]{2}$`)
	divisionRe     = regexp.MustCompile(`^[A-Za-z0-9]{2,3}$`)
	confirmationRe = regexp.MustCompile(`^[a-z0-9]{4}$`)
	hasLetterRe    = regexp.MustCompile(`[a-z]`)
)

// Number holds the logical fields of a PO number
type Number struct {
	LeaderID         string `json:"leader_id"`
	DivisionCode     string `json:"division_code"`
	WorkOrderNumber  int    `json:"work_order_number"`
	PurchaseSequence int    `json:"purchase_sequence"`
}

// Decoded is the result of Inspect: the logical fields plus format details
type Decoded struct {
	Number
	Version Version
	// Suffix is the supplier confirmation code of a legacy number, empty for v2
	Suffix string
}

// Validate checks that every field fits the encoded layout
func (n Number) Validate() error {
	if !leaderPattern.MatchString(n.LeaderID) {
		return fmt.Errorf("leader id %q must be %d alphanumeric characters", n.LeaderID, LeaderIDLength)
	}
	if !divisionRe.MatchString(n.DivisionCode) {
		return fmt.Errorf("division code %q must be %d-%d alphanumeric characters", n.DivisionCode, MinDivisionLength, MaxDivisionLength)
	}
	if n.WorkOrderNumber < 0 || n.WorkOrderNumber > MaxWorkOrderNumber {
		return fmt.Errorf("work order number %d out of range 0-%d", n.WorkOrderNumber, MaxWorkOrderNumber)
	}
	if n.PurchaseSequence < MinPurchaseSequence || n.PurchaseSequence > MaxPurchaseSequence {
		return fmt.Errorf("purchase sequence %d out of range %d-%d", n.PurchaseSequence, MinPurchaseSequence, MaxPurchaseSequence)
	}
	return nil
}

// String renders the number in the current format without validating it
func (n Number) String() string {
	return fmt.Sprintf("%s%s%0*d%s%d", n.LeaderID, n.DivisionCode, workOrderDigits, n.WorkOrderNumber, sequenceSeparator, n.PurchaseSequence)
}

// Encode renders n in the current (v2) format
func Encode(n Number) (string, error) {
	if err := n.Validate(); err != nil {
		return "", err
	}
	return n.String(), nil
}

// EncodeLegacy renders n in the legacy (v1) format with a supplier confirmation suffix
func EncodeLegacy(n Number, confirmation string) (string, error) {
	if err := n.Validate(); err != nil {
		return "", err
	}
	if !IsConfirmationCode(confirmation) {
		return "", fmt.Errorf("confirmation code %q must be %d lowercase alphanumeric characters with at least one letter", confirmation, ConfirmationLength)
	}
	return n.String() + confirmation, nil
}

// IsConfirmationCode reports whether s is usable as a legacy supplier confirmation suffix.
// An all-digit code would decode as part of a v2 purchase sequence, so at least
// one letter is required.
func IsConfirmationCode(s string) bool {
	return confirmationRe.MatchString(s) && hasLetterRe.MatchString(s)
}

// Decode extracts the logical fields from a v2 or v1 number
func Decode(s string) (Number, bool) {
	d, ok := Inspect(s)
	if !ok {
		return Number{}, false
	}
	return d.Number, true
}

// Inspect decodes s and reports which format it was written in.
// The current format is tried first, so a legacy suffix made only of digits
// reads as part of a v2 purchase sequence.
func Inspect(s string) (Decoded, bool) {
	if m := currentPattern.FindStringSubmatch(s); m != nil {
		n, ok := fromMatch(m)
		if !ok {
			return Decoded{}, false
		}
		return Decoded{Number: n, Version: VersionCurrent}, true
	}
	if m := legacyPattern.FindStringSubmatch(s); m != nil {
		n, ok := fromMatch(m)
		if !ok {
			return Decoded{}, false
		}
		return Decoded{Number: n, Version: VersionLegacy, Suffix: m[5]}, true
	}
	return Decoded{}, false
}

func fromMatch(m []string) (Number, bool) {
	wo, err := strconv.Atoi(m[3])
	if err != nil {
		return Number{}, false
	}
	if len(m[4]) > maxSequenceDigits {
		return Number{}, false
	}
	seq, err := strconv.Atoi(m[4])
	if err != nil {
		return Number{}, false
	}
	return Number{
		LeaderID:         m[1],
		DivisionCode:     m[2],
		WorkOrderNumber:  wo,
		PurchaseSequence: seq,
	}, true
}
