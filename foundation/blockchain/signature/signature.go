// Package signature provides helper functions for handling the blockchain
// hashing and signature needs.
package signature

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// ledgerStamp is embedded into every signed message so signatures produced
// by a node can't be replayed as signatures for some other system.
const ledgerStamp = "\x19Ledger Signed Message:\n32"

// =============================================================================

// Canonical returns the JSON encoding of the value with every object's keys
// in lexicographic order. The encoding does not depend on the field order of
// the Go types being marshaled.
func Canonical(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	// Decoding into a generic value turns every object into a map, and maps
	// are marshaled with sorted keys. UseNumber keeps the numeric text
	// exactly as it was first encoded.
	var generic any
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&generic); err != nil {
		return nil, err
	}

	return json.Marshal(generic)
}

// Hash returns a unique string for the value using its canonical encoding.
func Hash(value any) string {
	data, err := Canonical(value)
	if err != nil {
		return ZeroHash
	}

	hash := sha256.Sum256(data)
	return hexutil.Encode(hash[:])
}

// =============================================================================

// Sign uses the specified private key to sign the message. The signature is
// returned as a hex string in the [R|S|V] format.
func Sign(privateKey *ecdsa.PrivateKey, message string) (string, error) {
	sig, err := crypto.Sign(stamp(message), privateKey)
	if err != nil {
		return "", err
	}

	return hexutil.Encode(sig), nil
}

// Verify checks the signature of the message was produced by the private key
// that belongs to the specified public key.
func Verify(publicKey string, message string, sig string) (bool, error) {
	pub, err := hexutil.Decode(publicKey)
	if err != nil {
		return false, fmt.Errorf("decode public key: %w", err)
	}

	if _, err := crypto.UnmarshalPubkey(pub); err != nil {
		return false, fmt.Errorf("unmarshal public key: %w", err)
	}

	sigBytes, err := hexutil.Decode(sig)
	if err != nil {
		return false, fmt.Errorf("decode signature: %w", err)
	}

	if len(sigBytes) != crypto.SignatureLength {
		return false, errors.New("invalid signature length")
	}

	// Drop the recovery id, VerifySignature wants the 64 byte [R|S] form.
	rs := sigBytes[:crypto.RecoveryIDOffset]

	return crypto.VerifySignature(pub, stamp(message), rs), nil
}

// PublicKeyString returns the hex encoding of the uncompressed public key.
func PublicKeyString(publicKey ecdsa.PublicKey) string {
	return hexutil.Encode(crypto.FromECDSAPub(&publicKey))
}

// =============================================================================

// Signer provides signing with a private key held by the node.
type Signer struct {
	privateKey *ecdsa.PrivateKey
}

// NewSigner constructs a signer for the specified private key.
func NewSigner(privateKey *ecdsa.PrivateKey) *Signer {
	return &Signer{
		privateKey: privateKey,
	}
}

// Sign signs the message with the node's private key.
func (s *Signer) Sign(message string) (string, error) {
	return Sign(s.privateKey, message)
}

// PublicKey returns the public key of the node as a hex string.
func (s *Signer) PublicKey() string {
	return PublicKeyString(s.privateKey.PublicKey)
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents this message with
// the ledger stamp embedded into the final hash.
func stamp(message string) []byte {

	// Hash the message into a 32 byte array. This will provide
	// a data length consistency with all messages.
	msgHash := crypto.Keccak256([]byte(message))

	// Hash the stamp and msgHash together in a final 32 byte array
	// that represents the message.
	return crypto.Keccak256([]byte(ledgerStamp), msgHash)
}
