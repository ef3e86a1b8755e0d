package roomhandler

// HomeBody is the entry-point form: a display name plus either a join intent
// (with a room code) or a create intent (any supplied code is ignored).
type HomeBody struct {
	Name   string `json:"name"   example:"alice"`
	Code   string `json:"code"   example:"ABCD"`
	Join   bool   `json:"join"   example:"true"`
	Create bool   `json:"create" example:"false"`
}

// EnterRoomBody carries the proof back when (re)loading a room view.
type EnterRoomBody struct {
	Name  string     `json:"name"  binding:"required"`
	Proof ProofField `json:"proof" binding:"required"`
}

// ProofField mirrors proof.Proof on the wire (base64 ciphertext).
type ProofField struct {
	EncryptedIdentity []byte `json:"encrypted_identity" binding:"required"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
