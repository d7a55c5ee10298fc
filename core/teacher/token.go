package teacher

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	tokenSalt   = []byte("mwalimu.core.teacher.token")
	tsEncoding  = base32.StdEncoding.WithPadding(base32.NoPadding)
	tokenEpoch  = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)
	day         = 24 * time.Hour

	// errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// EncodeUID base64 encodes the teacher's ID.
func EncodeUID(t Teacher) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(t.ID)))
}

// DecodeUID returns the teacher ID encoded by EncodeUID.
func DecodeUID(uid string) (int, error) {
	b, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return 0, ErrInvalidToken
	}
	id, err := strconv.Atoi(string(b))
	if err != nil || id <= 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// ResetTokens makes & checks password reset tokens.
// A token is signed over the password hash & last login of the teacher, so it is spent as soon as
// the password changes or the teacher logs in.
type ResetTokens struct {
	key         [sha256.Size]byte
	timeoutDays int
}

func NewResetTokens(secretKey string, timeout time.Duration) *ResetTokens {
	return &ResetTokens{
		key:         sha256.Sum256(append(append([]byte(nil), tokenSalt...), secretKey...)),
		timeoutDays: int(timeout / day),
	}
}

// Make generates a password reset token for t.
func (rt *ResetTokens) Make(t Teacher) string {
	return rt.makeWithTimestamp(t, daysSinceEpoch(nowFunc()))
}

// Verify checks that token is a valid password reset token for t.
func (rt *ResetTokens) Verify(t Teacher, token string) error {
	parts := strings.SplitN(token, "-", 2)
	if len(parts) < 2 {
		return ErrInvalidToken
	}
	data, err := tsEncoding.DecodeString(parts[0])
	if err != nil {
		return ErrInvalidToken
	}
	ts, err := strconv.Atoi(string(data))
	if err != nil {
		return ErrInvalidToken
	}

	// check that token has not been tampered with
	if subtle.ConstantTimeCompare([]byte(rt.makeWithTimestamp(t, ts)), []byte(token)) == 0 {
		return ErrInvalidToken
	}

	// check that the timestamp is within limit
	if daysSinceEpoch(nowFunc())-ts > rt.timeoutDays {
		return ErrTokenExpired
	}
	return nil
}

func (rt *ResetTokens) makeWithTimestamp(t Teacher, ts int) string {
	h := hmac.New(sha256.New, rt.key[:])
	_, _ = h.Write(hashValue(t, ts))
	sig := base64.RawURLEncoding.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s-%s", tsEncoding.EncodeToString([]byte(strconv.Itoa(ts))), sig)
}

func daysSinceEpoch(t time.Time) int {
	return int(math.Ceil(t.Sub(tokenEpoch).Hours() / 24))
}

func hashValue(t Teacher, ts int) []byte {
	var val bytes.Buffer
	val.WriteString(strconv.Itoa(t.ID))
	val.Write(t.PasswordHash)
	if t.LastLogin.Valid {
		val.WriteString(t.LastLogin.Time.UTC().Format(time.RFC3339Nano))
	}
	val.WriteString(strconv.Itoa(ts))
	return val.Bytes()
}
