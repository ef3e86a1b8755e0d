// Package keys owns the process-wide key pair used by the proof protocol.
// The private key never leaves this package; callers get encrypt/decrypt
// capabilities instead.
package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
)

const keyBits = 2048

type KeyPair struct {
	priv *rsa.PrivateKey
}

// Generate creates the service key pair. Called exactly once at startup;
// the service must not boot without one.
func Generate() (*KeyPair, error) {
	priv, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return nil, err
	}
	return &KeyPair{priv: priv}, nil
}

func (k *KeyPair) Public() *rsa.PublicKey { return &k.priv.PublicKey }

// Encrypt seals plaintext under the service public key (RSA-OAEP/SHA-256).
func (k *KeyPair) Encrypt(plaintext []byte) ([]byte, error) {
	return rsa.EncryptOAEP(sha256.New(), rand.Reader, &k.priv.PublicKey, plaintext, nil)
}

// Decrypt opens ciphertext produced by Encrypt. Fails on ciphertext from a
// different key pair or tampered bytes.
func (k *KeyPair) Decrypt(ciphertext []byte) ([]byte, error) {
	return rsa.DecryptOAEP(sha256.New(), rand.Reader, k.priv, ciphertext, nil)
}

// MaxPlaintext is the largest identity (in bytes) the cipher can seal.
func (k *KeyPair) MaxPlaintext() int {
	return k.priv.PublicKey.Size() - 2*sha256.Size - 2
}
