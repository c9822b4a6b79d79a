package models

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Fixed-width byte strings used by proof records. They encode as lowercase
// hex in JSON and in storage.
type (
	Bytes32 [32]byte
	Bytes33 [33]byte
	Bytes64 [64]byte
)

// HexBytes is a variable-length byte string decoded from hex. Request fields
// use it so that length violations surface as registry reasons rather than
// decode errors.
type HexBytes []byte

func decodeHex(text []byte) ([]byte, error) {
	s := strings.TrimPrefix(strings.TrimPrefix(string(text), "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return b, nil
}

func decodeFixed(dst []byte, text []byte) error {
	b, err := decodeHex(text)
	if err != nil {
		return err
	}
	if len(b) != len(dst) {
		return fmt.Errorf("expected %d bytes, got %d", len(dst), len(b))
	}
	copy(dst, b)
	return nil
}

func (b Bytes32) String() string { return hex.EncodeToString(b[:]) }
func (b Bytes33) String() string { return hex.EncodeToString(b[:]) }
func (b Bytes64) String() string { return hex.EncodeToString(b[:]) }
func (b HexBytes) String() string {
	return hex.EncodeToString(b)
}

func (b Bytes32) MarshalText() ([]byte, error) { return []byte(b.String()), nil }
func (b Bytes33) MarshalText() ([]byte, error) { return []byte(b.String()), nil }
func (b Bytes64) MarshalText() ([]byte, error) { return []byte(b.String()), nil }
func (b HexBytes) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Bytes32) UnmarshalText(text []byte) error { return decodeFixed(b[:], text) }
func (b *Bytes33) UnmarshalText(text []byte) error { return decodeFixed(b[:], text) }
func (b *Bytes64) UnmarshalText(text []byte) error { return decodeFixed(b[:], text) }

// UnmarshalText never fails on length. An empty string decodes to a present,
// zero-length value.
func (b *HexBytes) UnmarshalText(text []byte) error {
	raw, err := decodeHex(text)
	if err != nil {
		return err
	}
	if raw == nil {
		raw = []byte{}
	}
	*b = raw
	return nil
}

// ParseBytes32 decodes a hex string into a Bytes32.
func ParseBytes32(s string) (Bytes32, error) {
	var b Bytes32
	err := b.UnmarshalText([]byte(s))
	return b, err
}

// MustBytes33 decodes a hex literal and panics on malformed input. It is
// meant for package-level constants.
func MustBytes33(s string) Bytes33 {
	var b Bytes33
	if err := b.UnmarshalText([]byte(s)); err != nil {
		panic(err)
	}
	return b
}

// MustBytes32 is MustBytes33 for 32-byte literals.
func MustBytes32(s string) Bytes32 {
	var b Bytes32
	if err := b.UnmarshalText([]byte(s)); err != nil {
		panic(err)
	}
	return b
}

// toBytes32 copies raw into a Bytes32. ok is false on a length mismatch.
func toBytes32(raw []byte) (Bytes32, bool) {
	var b Bytes32
	if len(raw) != len(b) {
		return b, false
	}
	copy(b[:], raw)
	return b, true
}

func toBytes33(raw []byte) (Bytes33, bool) {
	var b Bytes33
	if len(raw) != len(b) {
		return b, false
	}
	copy(b[:], raw)
	return b, true
}

func toBytes64(raw []byte) (Bytes64, bool) {
	var b Bytes64
	if len(raw) != len(b) {
		return b, false
	}
	copy(b[:], raw)
	return b, true
}
