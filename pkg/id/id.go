// Package id generates the identifiers used across the platform: ULIDs for
// messages and requests, and opaque hex capability strings for embed tokens.
package id

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// EmbedTokenLen is the length of an embed token string.
const EmbedTokenLen = 24

// ErrInvalidEmbedToken indicates a malformed embed token string.
var ErrInvalidEmbedToken = errors.New("id: invalid embed token")

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewULID returns a new ULID string. ULIDs from the same process are
// monotonically increasing within a millisecond.
func NewULID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// NewMessageID returns an id for a chat message.
func NewMessageID() string {
	return "msg_" + NewULID()
}

// NewRequestID returns an id for an HTTP request.
func NewRequestID() string {
	return "req_" + NewULID()
}

// NewConversationID returns an id for a widget conversation.
func NewConversationID() string {
	return "conv_" + NewULID()
}

// NewEmbedToken returns a 24-character lowercase hex capability string.
// Tokens carry no structure; possession is the only credential.
func NewEmbedToken() (string, error) {
	var buf [EmbedTokenLen / 2]byte
	if _, err := io.ReadFull(rand.Reader, buf[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf[:]), nil
}

// ValidateEmbedToken checks the shape of an embed token string. It says
// nothing about whether the token exists; that is the server's call.
func ValidateEmbedToken(s string) error {
	if len(s) != EmbedTokenLen {
		return ErrInvalidEmbedToken
	}
	if _, err := hex.DecodeString(s); err != nil {
		return ErrInvalidEmbedToken
	}
	return nil
}
