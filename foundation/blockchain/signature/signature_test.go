package signature_test

import (
	"strings"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	pkHexKey    = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	otherHexKey = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
)

// =============================================================================

func Test_Canonical(t *testing.T) {
	value1 := struct {
		Recipient string  `json:"recipient"`
		Amount    uint64  `json:"amount"`
		TimeStamp float64 `json:"timestamp"`
	}{
		Recipient: "B",
		Amount:    10,
		TimeStamp: 1700000000.25,
	}

	value2 := struct {
		TimeStamp float64 `json:"timestamp"`
		Amount    uint64  `json:"amount"`
		Recipient string  `json:"recipient"`
	}{
		TimeStamp: 1700000000.25,
		Amount:    10,
		Recipient: "B",
	}

	data, err := signature.Canonical(value1)
	if err != nil {
		t.Fatalf("Should be able to encode the value: %s", err)
	}

	exp := `{"amount":10,"recipient":"B","timestamp":1700000000.25}`
	if string(data) != exp {
		t.Logf("got: %s", data)
		t.Logf("exp: %s", exp)
		t.Fatalf("Should get back keys in lexicographic order.")
	}

	if signature.Hash(value1) != signature.Hash(value2) {
		t.Fatalf("Should get the same hash regardless of field order.")
	}
}

func Test_Hash(t *testing.T) {
	value := struct {
		Name string
	}{
		Name: "Bill",
	}

	h := signature.Hash(value)
	if len(h) != 66 || !strings.HasPrefix(h, "0x") {
		t.Fatalf("Should get back a 0x prefixed sha256 hex string: %s", h)
	}

	if h != signature.Hash(value) {
		t.Fatalf("Should get back the same hash twice.")
	}

	value.Name = "Jill"
	if h == signature.Hash(value) {
		t.Fatalf("Should get back a different hash for a different value.")
	}
}

func Test_SignVerify(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	other, err := crypto.HexToECDSA(otherHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	signer := signature.NewSigner(pk)

	const message = "1700000000.25"
	sig, err := signer.Sign(message)
	if err != nil {
		t.Fatalf("Should be able to sign the message: %s", err)
	}

	ok, err := signature.Verify(signer.PublicKey(), message, sig)
	if err != nil {
		t.Fatalf("Should be able to verify the signature: %s", err)
	}
	if !ok {
		t.Fatalf("Should verify the signature with the signing key.")
	}

	ok, err = signature.Verify(signer.PublicKey(), "1700000000.26", sig)
	if err != nil {
		t.Fatalf("Should be able to verify the signature: %s", err)
	}
	if ok {
		t.Fatalf("Should not verify the signature for a different message.")
	}

	ok, err = signature.Verify(signature.PublicKeyString(other.PublicKey), message, sig)
	if err != nil {
		t.Fatalf("Should be able to verify the signature: %s", err)
	}
	if ok {
		t.Fatalf("Should not verify the signature with a different key.")
	}

	if _, err := signature.Verify("zz", message, sig); err == nil {
		t.Fatalf("Should not accept a malformed public key.")
	}
}
