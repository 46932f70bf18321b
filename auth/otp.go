package auth

import (
	"crypto/hmac"
	cryptorand "crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/rand"
)

var (
	ErrOTPExpired = errors.New("OTP Expired")
	ErrOTPInvalid = errors.New("Invalid OTP")
)

const otpDigits = "0123456789"

// OTPService issues and verifies short-lived one-time codes without any
// server-side storage: the challenge returned from Create carries the
// HMAC-signed expiry, so Verify only needs the secret.
type OTPService struct {
	secret     []byte
	ttl        time.Duration
	codeLength int

	mu  sync.Mutex
	rng *rand.Rand
}

func NewOTPService(secret string) *OTPService {
	// Seed from the OS entropy pool; codes must not repeat across restarts
	var seed [8]byte
	if _, err := cryptorand.Read(seed[:]); err != nil {
		panic("otp: cannot seed code generator: " + err.Error())
	}
	return &OTPService{
		secret:     []byte(secret),
		ttl:        5 * time.Minute,
		codeLength: 4,
		rng:        rand.New(rand.NewSource(binary.BigEndian.Uint64(seed[:]))),
	}
}

// Create generates a numeric code and its challenge. The code goes to the
// user out of band (SMS is an external collaborator); the challenge goes
// back to the client and must be echoed into Verify.
func (s *OTPService) Create(phone string) (code string, challenge string) {
	var b strings.Builder
	s.mu.Lock()
	for i := 0; i < s.codeLength; i++ {
		b.WriteByte(otpDigits[s.rng.Intn(len(otpDigits))])
	}
	s.mu.Unlock()
	code = b.String()

	expiry := time.Now().Add(s.ttl).UnixMilli()
	challenge = fmt.Sprintf("%s.%d", s.sign(phone, code, expiry), expiry)
	return code, challenge
}

// Verify checks the submitted code against the challenge issued by Create.
func (s *OTPService) Verify(phone, code, challenge string) error {
	parts := strings.Split(challenge, ".")
	if len(parts) != 2 {
		return ErrOTPInvalid
	}
	expiry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return ErrOTPInvalid
	}
	if time.Now().UnixMilli() > expiry {
		return ErrOTPExpired
	}

	expected := s.sign(phone, code, expiry)
	// hmac.Equal keeps the comparison constant-time
	if !hmac.Equal([]byte(expected), []byte(parts[0])) {
		return ErrOTPInvalid
	}
	return nil
}

func (s *OTPService) sign(phone, code string, expiry int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s.%s.%d", phone, code, expiry)
	return hex.EncodeToString(mac.Sum(nil))
}
