package quiz

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhisek/quizwise/internal/mastery"
)

// Sealer issues and checks tamper-evidence tokens for quiz sessions, so an
// issued quiz can travel through the client instead of living in server
// memory.
type Sealer struct {
	key []byte
}

// NewSealer creates a Sealer keyed with secret.
func NewSealer(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	return &Sealer{key: []byte(secret)}, nil
}

type sealedPayload struct {
	Version    int                `json:"v"`
	LearnerID  string             `json:"learner"`
	Topic      string             `json:"topic"`
	Difficulty mastery.Difficulty `json:"difficulty"`
	Questions  []Question         `json:"questions"`
}

// Seal returns the token binding s to learnerID.
func (k *Sealer) Seal(learnerID string, s *Session) (string, error) {
	mac, err := k.mac(learnerID, s)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(mac), nil
}

// Verify checks token against s. A mismatch is reported as
// *ErrMalformedSubmission.
func (k *Sealer) Verify(learnerID string, s *Session, token string) error {
	got, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || token == "" {
		return malformed("invalid session token")
	}
	want, err := k.mac(learnerID, s)
	if err != nil {
		return err
	}
	if !hmac.Equal(got, want) {
		return malformed("session token does not match the submitted quiz")
	}
	return nil
}

func (k *Sealer) mac(learnerID string, s *Session) ([]byte, error) {
	payload, err := json.Marshal(sealedPayload{
		Version:    1,
		LearnerID:  learnerID,
		Topic:      s.Topic,
		Difficulty: s.Difficulty,
		Questions:  s.Questions,
	})
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	h := hmac.New(sha256.New, k.key)
	h.Write(payload)
	return h.Sum(nil), nil
}
