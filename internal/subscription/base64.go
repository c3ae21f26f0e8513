package subscription

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// decodeBase64Lossy decodes b after discarding every byte outside the
// standard and URL-safe alphabets and re-padding to a multiple of four.
func decodeBase64Lossy(b []byte) ([]byte, error) {
	clean := make([]byte, 0, len(b))
	for _, c := range b {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '+', c == '/':
			clean = append(clean, c)
		case c == '-':
			clean = append(clean, '+')
		case c == '_':
			clean = append(clean, '/')
		}
	}

	if len(clean) == 0 || len(clean)%4 == 1 {
		return nil, ErrMalformedBase64
	}
	if pad := len(clean) % 4; pad != 0 {
		clean = append(clean, strings.Repeat("=", 4-pad)...)
	}

	out, err := base64.StdEncoding.DecodeString(string(clean))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBase64, err)
	}
	return out, nil
}

// lossyText drops invalid UTF-8 sequences.
func lossyText(b []byte) string {
	return strings.ToValidUTF8(string(b), "")
}

// percentDecode unescapes %XX sequences and leaves malformed ones as they
// are. Plus signs are kept.
func percentDecode(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			sb.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		sb.WriteByte(s[i])
	}
	return strings.ToValidUTF8(sb.String(), "�")
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
