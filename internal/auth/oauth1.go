package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"xplore/internal/credentials"
)

// OAuth1Strategy signs requests with OAuth 1.0a HMAC-SHA1. Signing is a
// pure function of the request plus a fresh nonce and timestamp, so the
// strategy itself is stateless and safe for concurrent use.
type OAuth1Strategy struct {
	consumerKey    string
	consumerSecret string
	accessToken    string
	tokenSecret    string

	// Injection points for tests; production uses crypto/rand and the clock.
	nonce func() (string, error)
	now   func() time.Time
}

// NewOAuth1Strategy creates an OAuth 1.0a signing strategy from the
// resolved credentials.
func NewOAuth1Strategy(creds credentials.Credentials) *OAuth1Strategy {
	return &OAuth1Strategy{
		consumerKey:    creds.APIKey,
		consumerSecret: creds.APISecret,
		accessToken:    creds.AccessToken,
		tokenSecret:    creds.AccessTokenSecret,
		nonce:          generateNonce,
		now:            time.Now,
	}
}

// Method returns MethodOAuth1.
func (s *OAuth1Strategy) Method() Method {
	return MethodOAuth1
}

// SupportsUserContext reports true: OAuth 1.0a carries full user context.
func (s *OAuth1Strategy) SupportsUserContext() bool {
	return true
}

// Prepare computes the OAuth 1.0a Authorization header for the request.
// Query parameters are included in the signature base automatically.
func (s *OAuth1Strategy) Prepare(req *http.Request) error {
	nonce, err := s.nonce()
	if err != nil {
		return &AuthError{Op: "sign", Reason: err}
	}
	timestamp := strconv.FormatInt(s.now().Unix(), 10)

	header := s.authorizationHeader(req.Method, req.URL, nonce, timestamp)
	req.Header.Set("Authorization", header)
	return nil
}

// authorizationHeader builds the Authorization header value for the given
// request line, nonce, and timestamp. Pure: identical inputs always produce
// an identical header.
func (s *OAuth1Strategy) authorizationHeader(method string, u *url.URL, nonce, timestamp string) string {
	oauthParams := [][2]string{
		{"oauth_consumer_key", s.consumerKey},
		{"oauth_nonce", nonce},
		{"oauth_signature_method", "HMAC-SHA1"},
		{"oauth_timestamp", timestamp},
		{"oauth_token", s.accessToken},
		{"oauth_version", "1.0"},
	}

	signature := s.sign(signatureBase(method, u, oauthParams))

	header := append(oauthParams, [2]string{"oauth_signature", signature})
	sortParams(header)

	parts := make([]string, len(header))
	for i, p := range header {
		parts[i] = fmt.Sprintf("%s=%q", percentEncode(p[0]), percentEncode(p[1]))
	}
	return "OAuth " + strings.Join(parts, ", ")
}

// sign computes HMAC-SHA1 over the signature base string. The key is the
// percent-encoded consumer secret and token secret joined with '&'.
func (s *OAuth1Strategy) sign(base string) string {
	key := percentEncode(s.consumerSecret) + "&" + percentEncode(s.tokenSecret)
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// signatureBase builds the OAuth 1.0a signature base string:
// METHOD & encoded-base-URL & encoded-sorted-parameter-string.
// The parameter string covers both the oauth_* parameters and any query
// parameters on the URL, percent-encoded and sorted lexicographically.
func signatureBase(method string, u *url.URL, oauthParams [][2]string) string {
	all := make([][2]string, 0, len(oauthParams)+4)
	all = append(all, oauthParams...)
	for key, values := range u.Query() {
		for _, v := range values {
			all = append(all, [2]string{key, v})
		}
	}
	sortParams(all)

	pairs := make([]string, len(all))
	for i, p := range all {
		pairs[i] = percentEncode(p[0]) + "=" + percentEncode(p[1])
	}
	paramString := strings.Join(pairs, "&")

	baseURL := u.Scheme + "://" + u.Host + u.EscapedPath()

	return strings.ToUpper(method) + "&" + percentEncode(baseURL) + "&" + percentEncode(paramString)
}

func sortParams(params [][2]string) {
	sort.Slice(params, func(i, j int) bool {
		if params[i][0] != params[j][0] {
			return params[i][0] < params[j][0]
		}
		return params[i][1] < params[j][1]
	})
}

// percentEncode applies RFC 3986 percent encoding. Only the unreserved
// characters (ALPHA / DIGIT / "-" / "." / "_" / "~") pass through;
// everything else is encoded, including space as %20.
func percentEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '-' || c == '.' || c == '_' || c == '~':
			b.WriteByte(c)
		default:
			b.WriteString(fmt.Sprintf("%%%02X", c))
		}
	}
	return b.String()
}

// generateNonce returns 16 random bytes hex-encoded. Uniqueness per request
// comes from crypto/rand; collisions within a process lifetime are not a
// practical concern at 128 bits.
func generateNonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
