package fetch

import (
	"math/rand/v2"
	"net/http"
	"time"
)

// RotationProbability is the chance that a request uses a freshly generated identity.
const RotationProbability = 0.3

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.0.0",
}

var acceptLanguages = []string{
	"en-US,en;q=0.9",
	"en-GB,en;q=0.8",
	"en-US,en;q=0.5",
}

// Random is the source of randomness used for delays and identity rotation.
// *rand.Rand satisfies it.
type Random interface {
	Float64() float64
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }
func (globalRandom) IntN(n int) int   { return rand.IntN(n) }

// DefaultRandom uses the process-wide generator.
var DefaultRandom Random = globalRandom{}

// RequestConfig is the client identity attached to a single request.
// It is a value; rotating produces a new one and never mutates the old.
type RequestConfig struct {
	UserAgent      string
	Accept         string
	AcceptLanguage string
	AcceptEncoding string
	Timeout        time.Duration
}

// NewRequestConfig generates a fresh identity.
func NewRequestConfig(rnd Random) RequestConfig {
	if rnd == nil {
		rnd = DefaultRandom
	}
	return RequestConfig{
		UserAgent:      userAgents[rnd.IntN(len(userAgents))],
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		AcceptLanguage: acceptLanguages[rnd.IntN(len(acceptLanguages))],
		AcceptEncoding: "gzip, deflate",
		Timeout:        DefaultTimeout,
	}
}

// Rotate returns prev unchanged, or with probability RotationProbability a new identity.
// A zero-value prev always yields a new identity.
func Rotate(prev RequestConfig, rnd Random) RequestConfig {
	if rnd == nil {
		rnd = DefaultRandom
	}
	if prev.UserAgent != "" && rnd.Float64() >= RotationProbability {
		return prev
	}
	next := NewRequestConfig(rnd)
	if prev.Timeout > 0 {
		next.Timeout = prev.Timeout
	}
	return next
}

// apply sets the identity headers on req.
func (c RequestConfig) apply(req *http.Request) {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", c.Accept)
	req.Header.Set("Accept-Language", c.AcceptLanguage)
	if c.AcceptEncoding != "" {
		req.Header.Set("Accept-Encoding", c.AcceptEncoding)
	}
	req.Header.Set("Connection", "keep-alive")
}
