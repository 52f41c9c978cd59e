package download

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	ckerrors "github.com/provide-io/craftkit/pkg/errors"
)

// ChecksumAlgorithm represents supported checksum algorithms.
// Checksum strings use the prefixed format "algorithm:hexvalue"
// (e.g. "sha1:2d6e...", "sha256:c0ffee...").
type ChecksumAlgorithm int

const (
	ChecksumSHA1 ChecksumAlgorithm = iota
	ChecksumSHA256
	ChecksumSHA512
)

func (c ChecksumAlgorithm) String() string {
	switch c {
	case ChecksumSHA1:
		return "sha1"
	case ChecksumSHA256:
		return "sha256"
	case ChecksumSHA512:
		return "sha512"
	default:
		return "unknown"
	}
}

// New returns a fresh hash for the algorithm.
func (c ChecksumAlgorithm) New() hash.Hash {
	switch c {
	case ChecksumSHA256:
		return sha256.New()
	case ChecksumSHA512:
		return sha512.New()
	default:
		return sha1.New()
	}
}

// ParseChecksum parses a checksum string that may or may not have a prefix
func ParseChecksum(checksumStr string) (ChecksumAlgorithm, string, error) {
	if algoName, value, ok := strings.Cut(checksumStr, ":"); ok {
		var algo ChecksumAlgorithm
		switch algoName {
		case "sha1":
			algo = ChecksumSHA1
		case "sha256":
			algo = ChecksumSHA256
		case "sha512":
			algo = ChecksumSHA512
		default:
			return ChecksumSHA1, "", fmt.Errorf("unknown checksum algorithm: %s", algoName)
		}
		return algo, strings.ToLower(value), nil
	}

	// Bare hex - guess based on length. Mojang and Maven metadata ship bare sha1.
	var algo ChecksumAlgorithm
	switch len(checksumStr) {
	case 64:
		algo = ChecksumSHA256
	case 128:
		algo = ChecksumSHA512
	default:
		algo = ChecksumSHA1
	}
	return algo, strings.ToLower(checksumStr), nil
}

// CalculateChecksum calculates checksum with prefix
func CalculateChecksum(data []byte, algorithm ChecksumAlgorithm) string {
	h := algorithm.New()
	h.Write(data)
	return algorithm.String() + ":" + hex.EncodeToString(h.Sum(nil))
}

// VerifyChecksum verifies data against a checksum string
func VerifyChecksum(data []byte, checksumStr string) (bool, error) {
	algo, expected, err := ParseChecksum(checksumStr)
	if err != nil {
		return false, err
	}

	actual := CalculateChecksum(data, algo)
	_, actualHex, _ := strings.Cut(actual, ":")
	return actualHex == expected, nil
}

// Verify checks data against checksum. An empty checksum always passes; a
// mismatch matches ErrChecksumMismatch.
func Verify(data []byte, checksum string) error {
	if checksum == "" {
		return nil
	}
	ok, err := VerifyChecksum(data, checksum)
	if err != nil {
		return err
	}
	if !ok {
		algo, expected, _ := ParseChecksum(checksum)
		return fmt.Errorf("%w: expected %s:%s, got %s", ckerrors.ErrChecksumMismatch, algo, expected, CalculateChecksum(data, algo))
	}
	return nil
}
