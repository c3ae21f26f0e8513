package validator

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/JulianoL13/app-node-engine/internal/subscription"
)

// Inspection is what a syntactic look at a node URI reveals.
type Inspection struct {
	Protocol subscription.Protocol
	Address  string
	Name     string
}

// Inspect extracts the protocol, the host:port endpoint and the display name
// of uri without contacting the node.
func Inspect(uri string) (Inspection, error) {
	uri = strings.TrimSpace(uri)
	p, ok := subscription.ProtocolOf(uri)
	if !ok {
		return Inspection{}, ErrUnknownScheme
	}

	body, fragment, _ := strings.Cut(uri[len(p)+len("://"):], "#")
	name, err := url.PathUnescape(fragment)
	if err != nil {
		name = fragment
	}

	var in Inspection
	switch p {
	case subscription.VMess:
		in, err = inspectVMess(body)
	case subscription.SSR:
		in, err = inspectSSR(body)
	case subscription.SS:
		in, err = inspectSS(body)
	default:
		in, err = inspectAuthority(body)
	}
	if err != nil {
		return Inspection{}, fmt.Errorf("%s: %w", p, err)
	}

	in.Protocol = p
	if name != "" {
		in.Name = name
	}
	return in, nil
}

func inspectAuthority(body string) (Inspection, error) {
	u, err := url.Parse("node://" + body)
	if err != nil {
		return Inspection{}, fmt.Errorf("%w: %w", ErrMalformedNode, err)
	}
	addr, err := joinEndpoint(u.Hostname(), u.Port())
	if err != nil {
		return Inspection{}, err
	}
	return Inspection{Address: addr}, nil
}

type vmessBody struct {
	Add  string          `json:"add"`
	Port json.RawMessage `json:"port"`
	PS   string          `json:"ps"`
}

func inspectVMess(body string) (Inspection, error) {
	raw, err := decodeBase64(body)
	if err != nil {
		return Inspection{}, err
	}

	var v vmessBody
	if err := json.Unmarshal(raw, &v); err != nil {
		return Inspection{}, fmt.Errorf("%w: %w", ErrMalformedNode, err)
	}

	addr, err := joinEndpoint(v.Add, strings.Trim(string(v.Port), `"`))
	if err != nil {
		return Inspection{}, err
	}
	return Inspection{Address: addr, Name: v.PS}, nil
}

// inspectSS accepts both the SIP002 form and the legacy fully encoded form.
func inspectSS(body string) (Inspection, error) {
	body, _, _ = strings.Cut(body, "?")
	if strings.Contains(body, "@") {
		return inspectAuthority(body)
	}

	raw, err := decodeBase64(strings.TrimSuffix(body, "/"))
	if err != nil {
		return Inspection{}, err
	}
	at := strings.LastIndex(string(raw), "@")
	if at < 0 {
		return Inspection{}, fmt.Errorf("%w: no endpoint", ErrMalformedNode)
	}
	return inspectAuthority(string(raw[at+1:]))
}

// inspectSSR reads server:port:protocol:method:obfs:password, either in the
// clear or base64 wrapped.
func inspectSSR(body string) (Inspection, error) {
	if strings.Count(body, ":") < 5 {
		raw, err := decodeBase64(body)
		if err != nil {
			return Inspection{}, err
		}
		body = string(raw)
	}

	head, rawQuery, _ := strings.Cut(body, "?")
	head = strings.TrimSuffix(head, "/")

	parts := strings.Split(head, ":")
	if len(parts) < 6 {
		return Inspection{}, fmt.Errorf("%w: short ssr head", ErrMalformedNode)
	}
	host := strings.Join(parts[:len(parts)-5], ":")
	addr, err := joinEndpoint(strings.Trim(host, "[]"), parts[len(parts)-5])
	if err != nil {
		return Inspection{}, err
	}

	in := Inspection{Address: addr}
	if remarks, err := decodeBase64(rawParam(rawQuery, "remarks")); err == nil {
		in.Name = string(remarks)
	}
	return in, nil
}

// rawParam reads key from q without unescaping; ssr params carry base64
// where '+' is significant.
func rawParam(q, key string) string {
	for _, pair := range strings.Split(q, "&") {
		if k, v, ok := strings.Cut(pair, "="); ok && k == key {
			return v
		}
	}
	return ""
}

func joinEndpoint(host, port string) (string, error) {
	if host == "" {
		return "", fmt.Errorf("%w: missing host", ErrMalformedNode)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return "", fmt.Errorf("%w: bad port %q", ErrMalformedNode, port)
	}
	return net.JoinHostPort(host, port), nil
}

var encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedNode)
	}
	for _, enc := range encodings {
		if raw, err := enc.DecodeString(s); err == nil {
			return raw, nil
		}
	}
	return nil, fmt.Errorf("%w: payload is not base64", ErrMalformedNode)
}
