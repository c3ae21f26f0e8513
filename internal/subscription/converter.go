package subscription

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Converter renders Clash-style descriptors as share URIs. It holds no
// state and is safe for concurrent use.
type Converter struct{}

func NewConverter() Converter {
	return Converter{}
}

// ConvertDescriptor is Convert with every failure folded into ok=false.
func (c Converter) ConvertDescriptor(d Descriptor) (string, bool) {
	uri, err := c.Convert(d)
	return uri, err == nil
}

// Convert returns the canonical URI for d. Unknown types fail with
// ErrUnsupportedType, descriptors missing required fields with
// ErrIncompleteDescriptor, both wrapped in a *ConvertError.
func (c Converter) Convert(d Descriptor) (string, error) {
	t := d.Type()

	var (
		uri string
		ok  bool
	)

	switch Protocol(t) {
	case VMess:
		uri, ok = convertVMess(d)
	case VLESS:
		uri, ok = convertVLESS(d)
	case Trojan:
		uri, ok = convertTrojan(d)
	case SS:
		uri, ok = convertSS(d)
	case SSR:
		uri, ok = convertSSR(d)
	case Hysteria, Hysteria2:
		uri, ok = convertHysteria(d, Protocol(t))
	case SOCKS5:
		uri, ok = convertSOCKS5(d)
	case Reality:
		uri, ok = convertReality(d)
	default:
		return "", &ConvertError{Type: t, Err: ErrUnsupportedType}
	}

	if !ok {
		return "", &ConvertError{Type: t, Err: ErrIncompleteDescriptor}
	}
	return uri, nil
}

type query []string

func (q *query) add(key, value string) {
	if value == "" {
		return
	}
	*q = append(*q, key+"="+value)
}

func (q query) encode() string {
	if len(q) == 0 {
		return ""
	}
	return "?" + strings.Join(q, "&")
}

func withName(uri, name string) string {
	if name == "" {
		return uri
	}
	return uri + "#" + name
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func endpoint(d Descriptor) string {
	return d.String("server") + ":" + d.String("port")
}

// addWebSocket appends host and path from ws-opts when network is ws.
func addWebSocket(q *query, d Descriptor, network string) {
	if network != "ws" {
		return
	}
	opts := d.Map("ws-opts")
	q.add("host", opts.Map("headers").String("Host"))
	q.add("path", opts.String("path"))
}

type vmessConfig struct {
	V    string `json:"v"`
	PS   string `json:"ps"`
	Add  string `json:"add"`
	Port string `json:"port"`
	ID   string `json:"id"`
	AID  any    `json:"aid"`
	Net  string `json:"net"`
	Type string `json:"type"`
	Host string `json:"host"`
	Path string `json:"path"`
	TLS  string `json:"tls"`
}

func convertVMess(d Descriptor) (string, bool) {
	aid := d["alterId"]
	if aid == nil {
		aid = 0
	}

	tls := ""
	if d.Bool("tls") {
		tls = "tls"
	}

	cfg := vmessConfig{
		V:    "2",
		PS:   d.String("name"),
		Add:  d.String("server"),
		Port: d.String("port"),
		ID:   d.First("uuid", "id"),
		AID:  aid,
		Net:  d.StringOr("network", "tcp"),
		Type: d.StringOr("cipher", "auto"),
		Host: d.String("servername"),
		Path: d.String("path"),
		TLS:  tls,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(cfg); err != nil {
		return "", false
	}
	body := escapeNonASCII(bytes.TrimRight(buf.Bytes(), "\n"))

	return withName("vmess://"+base64.StdEncoding.EncodeToString(body), d.String("name")), true
}

// escapeNonASCII rewrites every non-ASCII rune of an encoded JSON document
// as a lowercase \uXXXX escape, using surrogate pairs above the BMP.
func escapeNonASCII(doc []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(doc))
	for _, r := range string(doc) {
		if r < utf8.RuneSelf {
			out.WriteRune(r)
			continue
		}
		if r1, r2 := utf16.EncodeRune(r); r1 != utf8.RuneError {
			fmt.Fprintf(&out, `\u%04x\u%04x`, r1, r2)
			continue
		}
		fmt.Fprintf(&out, `\u%04x`, r)
	}
	return out.Bytes()
}

func convertVLESS(d Descriptor) (string, bool) {
	network := d.StringOr("network", "tcp")

	security := d.String("security")
	if security == "" && d.Bool("tls") {
		security = "tls"
	}

	var q query
	q.add("type", network)
	q.add("security", security)
	q.add("encryption", d.StringOr("encryption", "none"))
	q.add("sni", d.String("servername"))
	q.add("fp", d.String("client-fingerprint"))

	switch network {
	case "ws":
		addWebSocket(&q, d, network)
	case "grpc":
		q.add("serviceName", d.Map("grpc-opts").String("grpc-service-name"))
	}

	uri := "vless://" + d.String("uuid") + "@" + endpoint(d) + q.encode()
	return withName(uri, d.String("name")), true
}

func convertTrojan(d Descriptor) (string, bool) {
	password := d.String("password")
	if !d.Has("server") || !d.Has("port") || password == "" {
		return "", false
	}

	var q query
	q.add("sni", d.First("sni", "servername"))
	if d.Bool("skip-cert-verify") {
		q.add("allowInsecure", "1")
	}
	addWebSocket(&q, d, d.StringOr("network", "tcp"))

	uri := "trojan://" + password + "@" + endpoint(d) + q.encode()
	return withName(uri, d.String("name")), true
}

func convertSS(d Descriptor) (string, bool) {
	method := d.First("cipher", "method")
	if method == "" {
		method = "aes-256-gcm"
	}
	password := d.String("password")
	if !d.Has("server") || !d.Has("port") || password == "" {
		return "", false
	}

	uri := "ss://" + b64(method+":"+password) + "@" + endpoint(d)

	if plugin := d.String("plugin"); plugin != "" {
		params := "plugin=" + plugin
		switch opts := d["plugin-opts"].(type) {
		case map[string]any, map[any]any, Descriptor:
			m := asDescriptor(opts)
			for _, k := range m.SortedKeys() {
				params += ";" + k + "=" + m.String(k)
			}
		default:
			if s := stringify(opts); s != "" {
				params += ";" + s
			}
		}
		uri += "?" + params
	}

	return withName(uri, d.String("name")), true
}

func convertSSR(d Descriptor) (string, bool) {
	password := d.String("password")
	if !d.Has("server") || !d.Has("port") || password == "" {
		return "", false
	}

	obfs := d.StringOr("obfs", "plain")
	head := strings.Join([]string{
		endpoint(d),
		d.StringOr("protocol", "origin"),
		d.StringOr("cipher", "aes-256-cfb"),
		obfs,
		b64(password),
	}, ":")

	var q query
	if obfs != "plain" {
		if p := d.String("obfs-param"); p != "" {
			q.add("obfsparam", b64(p))
		}
	}
	if p := d.String("protocol-param"); p != "" {
		q.add("protoparam", b64(p))
	}
	if r := d.String("remarks"); r != "" {
		q.add("remarks", b64(r))
	}
	if network := d.StringOr("network", "tcp"); network != "tcp" {
		q.add("network", network)
	}

	return withName("ssr://"+head+q.encode(), d.String("name")), true
}

func convertHysteria(d Descriptor, p Protocol) (string, bool) {
	if !d.Has("server") || !d.Has("port") {
		return "", false
	}

	password := strings.ReplaceAll(url.QueryEscape(d.First("password", "auth")), "+", "%20")

	var q query
	q.add("sni", d.First("sni", "servername"))
	if d.Bool("skip-cert-verify") {
		q.add("insecure", "1")
	}
	if p == Hysteria2 {
		q.add("upload", d.String("upload"))
		q.add("download", d.String("download"))
	}
	if protocol := d.StringOr("protocol", "udp"); protocol != "udp" {
		q.add("protocol", protocol)
	}
	q.add("obfs", d.String("obfs"))

	uri := string(p) + "://" + password + "@" + endpoint(d) + q.encode()
	return withName(uri, d.String("name")), true
}

func convertSOCKS5(d Descriptor) (string, bool) {
	if !d.Has("server") || !d.Has("port") {
		return "", false
	}

	userinfo := ""
	username, password := d.String("username"), d.String("password")
	if username != "" && password != "" {
		userinfo = b64(username+":"+password) + "@"
	}

	return withName("socks5://"+userinfo+endpoint(d), d.String("name")), true
}

// convertReality emits a vless reality URI. pbk stays empty unless the
// descriptor carries a public key.
func convertReality(d Descriptor) (string, bool) {
	uuid := d.String("uuid")
	sni := d.First("sni", "servername")
	shortID := d.First("short-id")
	opts := d.Map("reality-opts")
	if shortID == "" {
		shortID = opts.String("short-id")
	}

	if !d.Has("server") || !d.Has("port") || uuid == "" || sni == "" || shortID == "" {
		return "", false
	}

	publicKey := d.String("public-key")
	if publicKey == "" {
		publicKey = opts.String("public-key")
	}

	q := query{"security=reality", "type=tcp", "sni=" + sni, "pbk=" + publicKey, "sid=" + shortID}
	q.add("fp", d.First("fp", "client-fingerprint"))

	uri := "vless://" + uuid + "@" + endpoint(d) + q.encode()
	return withName(uri, d.String("name")), true
}
