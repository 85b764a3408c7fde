// Package qkd simulates a BB84 quantum key exchange and provides the sealing
// primitive used to lock clinical content while it travels between
// facilities. The simulation is presentational: it yields a real symmetric
// key and honest exchange statistics, but makes no end-to-end security claim.
package qkd

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const (
	// ProtocolName identifies the simulated exchange in envelope metadata.
	ProtocolName = "BB84"

	// keyBits is the sifted key length required to seal a payload.
	keyBits = 256
)

// Session is the outcome of one simulated key exchange.
type Session struct {
	Key           []byte // 32-byte sifted key
	BitsExchanged int    // raw qubits sent before sifting
}

// SimulateExchange performs a BB84-style key agreement: the sender emits
// random bits in random bases, the receiver measures in random bases, and
// both keep only the positions where the bases happened to match. Roughly
// half the raw bits survive sifting.
func SimulateExchange() (*Session, error) {
	var (
		rawBits int
		bitBuf  [3]byte // bit, sender basis, receiver basis per round
	)

	bits := make([]byte, 0, keyBits)
	for len(bits) < keyBits {
		if _, err := rand.Read(bitBuf[:]); err != nil {
			return nil, fmt.Errorf("qkd exchange: read randomness: %w", err)
		}
		rawBits++

		bit := bitBuf[0] & 1
		senderBasis := bitBuf[1] & 1
		receiverBasis := bitBuf[2] & 1
		if senderBasis == receiverBasis {
			bits = append(bits, bit)
		}
	}

	sifted := make([]byte, keyBits/8)
	for i, b := range bits {
		if b == 1 {
			sifted[i/8] |= 1 << (7 - i%8)
		}
	}

	return &Session{Key: sifted, BitsExchanged: rawBits}, nil
}

// KeyHash returns a short stable digest of the session key, safe to expose
// in envelope metadata and audit entries.
func (s *Session) KeyHash() string {
	sum := sha256.Sum256(s.Key)
	return hex.EncodeToString(sum[:8])
}
