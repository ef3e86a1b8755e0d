// Package proof implements the identity possession proof: the claimed
// username is encrypted under the service public key and verified by
// decrypt-and-compare.
//
// This is deliberately not a challenge/response scheme — a proof carries no
// nonce and is replayable for as long as the key pair lives. The contract is
// VerifyProof(GenerateProof(x), x) == true and false for everything else.
package proof

import (
	"crypto/subtle"
	"errors"

	"github.com/Varunv003/chatroom-zkp-protocol/internal/keys"
)

var ErrIdentityTooLong = errors.New("identity exceeds cipher plaintext domain")

// Proof wraps the ciphertext asserting possession of an identity. Transient:
// generated per join attempt, used once, never persisted.
type Proof struct {
	EncryptedIdentity []byte `json:"encrypted_identity"`
}

type Service struct {
	kp *keys.KeyPair
}

func NewService(kp *keys.KeyPair) *Service { return &Service{kp: kp} }

// GenerateProof encrypts identity under the service public key.
func (s *Service) GenerateProof(identity string) (Proof, error) {
	if len(identity) > s.kp.MaxPlaintext() {
		return Proof{}, ErrIdentityTooLong
	}
	ct, err := s.kp.Encrypt([]byte(identity))
	if err != nil {
		return Proof{}, err
	}
	return Proof{EncryptedIdentity: ct}, nil
}

// VerifyProof decrypts the proof and compares against claimedIdentity.
// Malformed ciphertext, a foreign key pair, or any mismatch all yield false,
// never an error.
func (s *Service) VerifyProof(p Proof, claimedIdentity string) bool {
	pt, err := s.kp.Decrypt(p.EncryptedIdentity)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(pt, []byte(claimedIdentity)) == 1
}
