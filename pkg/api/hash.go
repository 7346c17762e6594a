package api

import (
	"encoding/hex"
	"strconv"

	"github.com/zeebo/blake3"
)

// Hash returns a deterministic BLAKE3 hash of the conversation content.
// It covers Title, Bot and every turn (role, content, confidence) in order;
// the ID and timestamps are excluded so identical snapshots hash alike.
func (c Conversation) Hash() string {
	h := blake3.New()

	h.Write([]byte(c.Title))
	h.Write([]byte{0})

	h.Write([]byte(c.Bot))
	h.Write([]byte{0})

	for _, t := range c.Turns {
		h.Write([]byte(t.Role))
		h.Write([]byte{0})
		h.Write([]byte(t.Content))
		h.Write([]byte{0})
		if t.Confidence != nil {
			h.Write([]byte(strconv.FormatFloat(*t.Confidence, 'g', -1, 64)))
		}
		h.Write([]byte{0})
	}
	h.Write([]byte{0}) // End of turns

	return hex.EncodeToString(h.Sum(nil))
}

// Digest returns the BLAKE3 hex digest of an arbitrary byte slice.
func Digest(b []byte) string {
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:])
}
