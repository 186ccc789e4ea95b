// Package sanitize normalizes and defends against malformed or hostile text
// and image payloads before they reach storage or fan-out. Text sanitization
// is defense-in-depth only; parameterized queries in the repositories remain
// the primary injection defense.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/dmitrijs2005/duochat/internal/common"
)

// MaxMessageTextLen is the post-sanitization length ceiling for message
// bodies, counted in runes.
const MaxMessageTextLen = 2000

var (
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
	scriptPattern  = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	xssPattern     = regexp.MustCompile(`(?i)(javascript:|vbscript:|onload=|onerror=|onclick=)`)
	sqlPattern     = regexp.MustCompile(`(?i)\b(select|insert|update|delete|drop|create|alter|exec|union|script)\b`)
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	dataURIPattern = regexp.MustCompile(`^data:([A-Za-z+/-]+);base64,(.+)$`)

	lowerPattern = regexp.MustCompile(`[a-z]`)
	upperPattern = regexp.MustCompile(`[A-Z]`)
	digitPattern = regexp.MustCompile(`\d`)
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
)

// allowedImageTypes is the attachment mime allow-list.
var allowedImageTypes = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Input strips HTML tags, script blocks and known XSS trigger substrings
// from free-form single-line input such as display names, then trims
// surrounding whitespace. It never fails: hostile input comes back reduced,
// harmless input comes back unchanged, empty stays empty.
func Input(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = scriptPattern.ReplaceAllString(s, "")
	s = xssPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// MessageText sanitizes a message body: script blocks, HTML tags, XSS
// trigger substrings and SQL keyword patterns are removed, whitespace is
// trimmed, and the result is truncated to MaxMessageTextLen runes. The
// output is always a string, possibly empty; sanitization never errors.
func MessageText(s string) string {
	s = scriptPattern.ReplaceAllString(s, "")
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = xssPattern.ReplaceAllString(s, "")
	s = sqlPattern.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	runes := []rune(s)
	if len(runes) > MaxMessageTextLen {
		return string(runes[:MaxMessageTextLen])
	}
	return s
}

// Email lower-cases and trims an email address and validates it against a
// permissive local@domain.tld pattern. It returns the empty string when the
// address is invalid, signaling the caller to reject the request.
func Email(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(normalized) {
		return ""
	}
	return normalized
}

// ImageInfo is the parsed result of a valid inline image payload.
type ImageInfo struct {
	MimeType string
	// Ext is the file extension derived from the mime type.
	Ext string
	// Size is the exact decoded byte size of the payload.
	Size int64
	// Base64Data is the raw encoded payload for downstream decoding.
	Base64Data string
}

// Image validates an inline encoded image payload of the form
// "data:<mime>;base64,<payload>". It rejects payloads that do not match the
// pattern, carry a mime type outside the jpeg/png/gif/webp allow-list, or
// decode to more than maxBytes. The returned errors unwrap to
// common.ErrorValidation.
func Image(data string, maxBytes int64) (*ImageInfo, error) {
	if data == "" {
		return nil, common.NewValidationError("image", "invalid image data")
	}

	matches := dataURIPattern.FindStringSubmatch(data)
	if len(matches) != 3 {
		return nil, common.NewValidationError("image", "invalid image format")
	}

	mimeType := matches[1]
	base64Data := matches[2]

	ext, ok := allowedImageTypes[mimeType]
	if !ok {
		return nil, common.NewValidationError("image", "image type not allowed")
	}

	size := decodedSize(base64Data)
	if size > maxBytes {
		return nil, common.NewValidationError("image", "image size too large")
	}

	return &ImageInfo{
		MimeType:   mimeType,
		Ext:        ext,
		Size:       size,
		Base64Data: base64Data,
	}, nil
}

// decodedSize computes the exact decoded byte size of a standard base64
// payload from its encoded length and padding.
func decodedSize(b64 string) int64 {
	pad := int64(0)
	if strings.HasSuffix(b64, "==") {
		pad = 2
	} else if strings.HasSuffix(b64, "=") {
		pad = 1
	}
	return int64(len(b64))*3/4 - pad
}

// Password checks the password policy: 6..128 characters with at least one
// lowercase letter, one uppercase letter and one digit.
func Password(password string) error {
	verr := &common.ValidationError{}

	switch {
	case password == "":
		verr.Add("password", "password is required")
	case len(password) < 6:
		verr.Add("password", "password must be at least 6 characters long")
	case len(password) > 128:
		verr.Add("password", "password is too long")
	default:
		if !lowerPattern.MatchString(password) {
			verr.Add("password", "password must contain at least one lowercase letter")
		}
		if !upperPattern.MatchString(password) {
			verr.Add("password", "password must contain at least one uppercase letter")
		}
		if !digitPattern.MatchString(password) {
			verr.Add("password", "password must contain at least one number")
		}
	}

	if verr.Empty() {
		return nil
	}
	return verr
}

// FullName sanitizes a display name and checks the signup rules: 2..50
// characters, letters and spaces only.
func FullName(name string) (string, error) {
	name = Input(name)

	switch {
	case len(name) < 2 || len(name) > 50:
		return "", common.NewValidationError("fullName", "full name must be between 2 and 50 characters")
	case !namePattern.MatchString(name):
		return "", common.NewValidationError("fullName", "full name can only contain letters and spaces")
	}
	return name, nil
}
