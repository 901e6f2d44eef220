package utils

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mr-tron/base58"
)

// LoginMessagePrefix starts every message a wallet signs to open a session.
const LoginMessagePrefix = "Sign in to Academy: "

var (
	ErrInvalidWallet    = errors.New("invalid wallet address")
	ErrInvalidSignature = errors.New("invalid wallet signature")
	ErrStaleLogin       = errors.New("login message expired")
)

// ValidWallet reports whether wallet is a base58 ed25519 public key.
func ValidWallet(wallet string) bool {
	key, err := base58.Decode(wallet)
	return err == nil && len(key) == ed25519.PublicKeySize
}

// VerifyWalletSignature checks a base58 signature of message by wallet.
func VerifyWalletSignature(wallet, message, signature string) error {
	key, err := base58.Decode(wallet)
	if err != nil || len(key) != ed25519.PublicKeySize {
		return ErrInvalidWallet
	}
	sig, err := base58.Decode(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return ErrInvalidSignature
	}
	if !ed25519.Verify(ed25519.PublicKey(key), []byte(message), sig) {
		return ErrInvalidSignature
	}
	return nil
}

// CheckLoginMessage validates the "<prefix><unix seconds>" format and that
// the timestamp is within maxSkew of now.
func CheckLoginMessage(message string, now time.Time, maxSkew time.Duration) error {
	raw, ok := strings.CutPrefix(message, LoginMessagePrefix)
	if !ok {
		return fmt.Errorf("%w: unexpected message", ErrInvalidSignature)
	}
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
	}
	skew := now.Sub(time.Unix(ts, 0))
	if skew < -maxSkew || skew > maxSkew {
		return ErrStaleLogin
	}
	return nil
}

// LoginMessage builds the message a wallet signs at t.
func LoginMessage(t time.Time) string {
	return LoginMessagePrefix + strconv.FormatInt(t.Unix(), 10)
}
