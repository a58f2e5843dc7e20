package domain

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ethereum/go-ethereum/common"
)

// ZeroAddress is what the name registry returns for unregistered names.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// DefaultNameSuffix is the reserved suffix of Base names.
const DefaultNameSuffix = ".base"

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// IdentifierKind tells how a principal identifier must be handled.
type IdentifierKind int

const (
	KindInvalid IdentifierKind = iota
	KindAddress
	KindName
)

func (k IdentifierKind) String() string {
	switch k {
	case KindAddress:
		return "address"
	case KindName:
		return "name"
	default:
		return "invalid"
	}
}

// IsAddress reports whether s is a 0x-prefixed 20-byte hex address. Mixed-case
// input must carry a valid EIP-55 checksum; all-lower or all-upper input is
// accepted as is.
func IsAddress(s string) bool {
	if !addressPattern.MatchString(s) {
		return false
	}
	hex := s[2:]
	if hex == strings.ToLower(hex) || hex == strings.ToUpper(hex) {
		return true
	}
	return common.HexToAddress(s).Hex() == s
}

// IsName reports whether s looks like a registry name: non-empty, longer than
// the suffix, no whitespace anywhere, ending in suffix.
func IsName(s, suffix string) bool {
	if suffix == "" || len(s) <= len(suffix) || !strings.HasSuffix(s, suffix) {
		return false
	}
	return strings.IndexFunc(s, unicode.IsSpace) < 0
}

// Classify decides how raw (already trimmed) must be treated. Names are
// checked first so a name never reaches the address validator.
func Classify(raw, suffix string) IdentifierKind {
	switch {
	case raw == "":
		return KindInvalid
	case IsName(raw, suffix):
		return KindName
	case IsAddress(raw):
		return KindAddress
	default:
		return KindInvalid
	}
}

// CanonicalAddress returns the EIP-55 form of a valid address.
func CanonicalAddress(s string) string {
	return common.HexToAddress(s).Hex()
}

// IsZeroAddress reports whether s is the unregistered-name sentinel.
func IsZeroAddress(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), ZeroAddress) || strings.TrimSpace(s) == ""
}
