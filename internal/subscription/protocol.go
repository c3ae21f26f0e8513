package subscription

import "strings"

type Protocol string

const (
	VMess     Protocol = "vmess"
	VLESS     Protocol = "vless"
	Trojan    Protocol = "trojan"
	SS        Protocol = "ss"
	SSR       Protocol = "ssr"
	Hysteria  Protocol = "hysteria"
	Hysteria2 Protocol = "hysteria2"
	SOCKS5    Protocol = "socks5"
	Reality   Protocol = "reality"
)

// Protocols lists every scheme the scanner recognises.
var Protocols = []Protocol{VMess, VLESS, Trojan, SS, SSR, Hysteria, Hysteria2, SOCKS5, Reality}

// ProtocolOf returns the protocol named by the scheme of uri.
func ProtocolOf(uri string) (Protocol, bool) {
	i := strings.Index(uri, "://")
	if i <= 0 {
		return "", false
	}
	scheme := Protocol(strings.ToLower(uri[:i]))
	for _, p := range Protocols {
		if p == scheme {
			return p, true
		}
	}
	return "", false
}
