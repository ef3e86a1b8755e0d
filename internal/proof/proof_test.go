package proof_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Varunv003/chatroom-zkp-protocol/internal/keys"
	"github.com/Varunv003/chatroom-zkp-protocol/internal/proof"
)

func newService(t *testing.T) *proof.Service {
	t.Helper()
	kp, err := keys.Generate()
	require.NoError(t, err)
	return proof.NewService(kp)
}

func TestGenerateVerifyRoundTrip(t *testing.T) {
	svc := newService(t)

	for _, identity := range []string{"alice", "Bob", "héloïse", "a b c", ""} {
		p, err := svc.GenerateProof(identity)
		require.NoError(t, err, "identity %q", identity)
		assert.True(t, svc.VerifyProof(p, identity), "identity %q", identity)
	}
}

func TestVerifyRejectsDifferentIdentity(t *testing.T) {
	svc := newService(t)

	p, err := svc.GenerateProof("alice")
	require.NoError(t, err)

	assert.False(t, svc.VerifyProof(p, "bob"))
	assert.False(t, svc.VerifyProof(p, "Alice"))
	assert.False(t, svc.VerifyProof(p, "alice "))
	assert.False(t, svc.VerifyProof(p, ""))
}

func TestVerifyRejectsForeignKeyPair(t *testing.T) {
	svcA := newService(t)
	svcB := newService(t)

	p, err := svcA.GenerateProof("alice")
	require.NoError(t, err)

	// A proof generated under a different key pair must fail, not error.
	assert.False(t, svcB.VerifyProof(p, "alice"))
}

func TestVerifyToleratesMalformedCiphertext(t *testing.T) {
	svc := newService(t)

	assert.False(t, svc.VerifyProof(proof.Proof{}, "alice"))
	assert.False(t, svc.VerifyProof(proof.Proof{EncryptedIdentity: []byte("garbage")}, "alice"))

	p, err := svc.GenerateProof("alice")
	require.NoError(t, err)
	p.EncryptedIdentity[0] ^= 0xff
	assert.False(t, svc.VerifyProof(p, "alice"))
}

func TestGenerateRejectsOversizedIdentity(t *testing.T) {
	svc := newService(t)

	huge := make([]byte, 4096)
	for i := range huge {
		huge[i] = 'x'
	}
	_, err := svc.GenerateProof(string(huge))
	assert.ErrorIs(t, err, proof.ErrIdentityTooLong)
}

func TestProofsAreTransientlyUnique(t *testing.T) {
	svc := newService(t)

	// OAEP is randomized: two proofs for the same identity differ on the wire
	// but both verify.
	p1, err := svc.GenerateProof("alice")
	require.NoError(t, err)
	p2, err := svc.GenerateProof("alice")
	require.NoError(t, err)

	assert.NotEqual(t, p1.EncryptedIdentity, p2.EncryptedIdentity)
	assert.True(t, svc.VerifyProof(p1, "alice"))
	assert.True(t, svc.VerifyProof(p2, "alice"))
}
