package address_test

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tronkit/pkg/address"
)

const (
	testPubkey = "04a28b4f721f0e040c1c7a8d08f1c0bf41491c2179193076b9f400bed5e2225cde0fe1ccf531273a7041c921c3ab36af3dcf3333b786fa262d27bc006671cbfb75"
)

func TestFromPublicKey(t *testing.T) {
	pubkey, _ := hex.DecodeString(testPubkey)

	addr, err := address.FromPublicKey(pubkey)
	require.NoError(t, err)
	require.Equal(t, "TNxg4zPNzQRnVt6JFHRwc6Wf1LepSkhB3H", addr.String())
	require.Equal(t, address.MainnetPrefix, addr.Prefix())

	// same result without the format byte
	other, err := address.FromPublicKey(pubkey[1:])
	require.NoError(t, err)
	require.Equal(t, addr, other)
}

func TestFailingFromPublicKey(t *testing.T) {
	pubkey, _ := hex.DecodeString(testPubkey)
	compressed := append([]byte{0x02}, pubkey[1:33]...)
	badFormat := append([]byte{0x05}, pubkey[1:]...)

	tests := [][]byte{nil, compressed, badFormat, pubkey[:40]}
	for _, tt := range tests {
		_, err := address.FromPublicKey(tt)
		require.Error(t, err)
		require.True(t, address.IsFormatError(err))
	}
}

func TestHexConversion(t *testing.T) {
	tests := []struct {
		text string
		hex  string
	}{
		{"TWjkoz18Y48SgWoxEeGG11ezCCzee8wo1A", "41e3cf5eefe3a2abf35a344ae8a3b2f4bb29810cbd"},
		{"TEW23SjDRLibvD1cm4MBZSpk74FdmRP6o3", "4131b43ffc5e49b4202f3b6e7640af9e719af71bc0"},
	}

	for _, tt := range tests {
		addr, err := address.FromBase58(tt.text)
		require.NoError(t, err)
		require.Equal(t, tt.hex, addr.Hex())

		fromHex, err := address.FromHex(tt.hex)
		require.NoError(t, err)
		require.Equal(t, tt.text, fromHex.String())
		require.Equal(t, addr, fromHex)

		withPrefix, err := address.FromHex("0x" + tt.hex)
		require.NoError(t, err)
		require.Equal(t, addr, withPrefix)
	}
}

func TestHexRoundTripWithoutChecksum(t *testing.T) {
	// any well formed hex round trips, whatever the prefix byte
	str := "00ffeeddccbbaa99887766554433221100ffeeddcc"
	addr, err := address.FromHex(str)
	require.NoError(t, err)
	require.Equal(t, str, addr.Hex())
}

func TestChecksumRoundTrip(t *testing.T) {
	tests := []string{
		"TNxg4zPNzQRnVt6JFHRwc6Wf1LepSkhB3H",
		"TWjkoz18Y48SgWoxEeGG11ezCCzee8wo1A",
		"TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t",
		"TMkySan3Duinty1fRDSRw3KzW6ciq4DNFT",
	}
	for _, tt := range tests {
		addr, err := address.FromBase58(tt)
		require.NoError(t, err)
		require.Equal(t, tt, addr.String())

		again, err := address.FromBase58(addr.String())
		require.NoError(t, err)
		require.Equal(t, addr, again)
		require.True(t, address.IsValid(tt))
	}
}

func TestFailingFromBase58(t *testing.T) {
	valid := "TNxg4zPNzQRnVt6JFHRwc6Wf1LepSkhB3H"
	raw := base58.Decode(valid)
	raw[len(raw)-1] ^= 0xff
	tampered := base58.Encode(raw)

	t.Run("tampered checksum", func(t *testing.T) {
		_, err := address.FromBase58(tampered)
		require.Error(t, err)
		require.True(t, address.IsChecksumError(err))
		require.False(t, address.IsValid(tampered))
	})

	formatTests := []string{
		"",
		"TNxg4zPNzQRnVt6JFHRwc6Wf1LepSkhB30", // 0 is not in the alphabet
		"TNxg4zPNzQRnVt6JFHRwc6Wf1LepSkhB3HI",
		base58.CheckEncode(make([]byte, 19), address.MainnetPrefix),
		base58.CheckEncode(make([]byte, 20), 0x00),
	}
	for _, tt := range formatTests {
		_, err := address.FromBase58(tt)
		require.Error(t, err, tt)
		assert.True(t, address.IsFormatError(err), tt)
		assert.False(t, address.IsValid(tt))
	}
}

func TestFailingFromHex(t *testing.T) {
	tests := []string{
		"",
		"41e3cf5eefe3a2abf35a344ae8a3b2f4bb29810c",
		"41e3cf5eefe3a2abf35a344ae8a3b2f4bb29810cbdaa",
		"41e3cf5eefe3a2abf35a344ae8a3b2f4bb29810czz",
	}
	for _, tt := range tests {
		_, err := address.FromHex(tt)
		require.Error(t, err)
		require.True(t, address.IsFormatError(err))
	}
}

func TestParse(t *testing.T) {
	a, err := address.Parse("TWjkoz18Y48SgWoxEeGG11ezCCzee8wo1A")
	require.NoError(t, err)
	b, err := address.Parse(" 41e3cf5eefe3a2abf35a344ae8a3b2f4bb29810cbd ")
	require.NoError(t, err)
	require.True(t, a.Equal(b))
	require.Len(t, a.Payload(), address.PayloadLength)
	require.Len(t, a.Bytes(), address.Length)
}

func TestTextMarshaling(t *testing.T) {
	type account struct {
		Owner address.Address `json:"owner"`
	}
	addr, _ := address.FromBase58("TWjkoz18Y48SgWoxEeGG11ezCCzee8wo1A")

	buf, err := json.Marshal(account{addr})
	require.NoError(t, err)
	require.JSONEq(t, `{"owner":"TWjkoz18Y48SgWoxEeGG11ezCCzee8wo1A"}`, string(buf))

	var decoded account
	require.NoError(t, json.Unmarshal(buf, &decoded))
	require.Equal(t, addr, decoded.Owner)
	require.False(t, decoded.Owner.IsZero())
}
