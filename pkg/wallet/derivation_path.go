package wallet

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// DerivationPath is the internal representation of a hierarchical
// deterministic wallet account
type DerivationPath []uint32

var (
	// DefaultBaseDerivationPath m/44'/195'
	DefaultBaseDerivationPath = DerivationPath{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + 195,
	}
)

// ParseDerivationPath converts a derivation path string to the
// internal binary representation. Both absolute (m/...) and relative paths
// are accepted, "m" alone refers to the root node itself.
func ParseDerivationPath(strPath string) (DerivationPath, error) {
	path := DerivationPath{}

	if strings.TrimSpace(strPath) == "" {
		return nil, newPathParseError(strPath, "", ErrNullDerivationPath)
	}

	elems := strings.Split(strPath, "/")
	if strings.TrimSpace(elems[0]) == "m" {
		elems = elems[1:]
		if len(elems) == 0 {
			return path, nil
		}
	}
	if containsEmptyString(elems) {
		return nil, newPathParseError(strPath, "", ErrMalformedDerivationPath)
	}

	// all remaining elems are relative, append one by one
	for _, elem := range elems {
		component := strings.TrimSpace(elem)
		var value uint32

		if strings.HasSuffix(component, "'") {
			value = hdkeychain.HardenedKeyStart
			component = strings.TrimSpace(strings.TrimSuffix(component, "'"))
		}

		// use big int for convertion
		bigval, ok := new(big.Int).SetString(component, 0)
		if !ok {
			return nil, newPathParseError(
				strPath, elem, fmt.Errorf("%w: not a number", ErrInvalidDerivationPathElem),
			)
		}

		max := math.MaxUint32 - value
		if bigval.Sign() < 0 || bigval.Cmp(big.NewInt(int64(max))) > 0 {
			if value == 0 {
				return nil, newPathParseError(strPath, elem, fmt.Errorf(
					"%w: must be in range [0, %d]", ErrInvalidDerivationPathElem, max,
				))
			}
			return nil, newPathParseError(strPath, elem, fmt.Errorf(
				"%w: must be in hardened range [0, %d]", ErrInvalidDerivationPathElem, max,
			))
		}
		value += uint32(bigval.Uint64())

		path = append(path, value)
	}

	return path, nil
}

// String converts a binary derivation path to its canonical representation
func (path DerivationPath) String() string {
	result := "m"
	for _, component := range path {
		result = fmt.Sprintf("%s/%s", result, formatIndex(component))
	}
	return result
}

// Append returns a new path made of path followed by the given components.
func (path DerivationPath) Append(components ...uint32) DerivationPath {
	out := make(DerivationPath, 0, len(path)+len(components))
	out = append(out, path...)
	return append(out, components...)
}

func formatIndex(index uint32) string {
	if index >= hdkeychain.HardenedKeyStart {
		return fmt.Sprintf("%d'", index-hdkeychain.HardenedKeyStart)
	}
	return fmt.Sprintf("%d", index)
}

func containsEmptyString(composedPath []string) bool {
	for _, s := range composedPath {
		if strings.TrimSpace(s) == "" {
			return true
		}
	}
	return false
}
