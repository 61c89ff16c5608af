package model

import "strings"

// Address is a wallet address in canonical form: lowercase, 0x-prefixed.
type Address string

// CanonicalAddress trims, lowercases and 0x-prefixes an address token.
func CanonicalAddress(token string) Address {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return ""
	}
	if !strings.HasPrefix(token, "0x") {
		token = "0x" + token
	}
	return Address(token)
}

func (a Address) String() string {
	return string(a)
}
