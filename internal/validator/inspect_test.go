package validator_test

import (
	"testing"

	"github.com/JulianoL13/app-node-engine/internal/subscription"
	"github.com/JulianoL13/app-node-engine/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want validator.Inspection
	}{
		{
			name: "trojan",
			uri:  "trojan://pw@t.example.com:443?sni=t.example.com#JP%2001",
			want: validator.Inspection{Protocol: subscription.Trojan, Address: "t.example.com:443", Name: "JP 01"},
		},
		{
			name: "vless with ipv6 host",
			uri:  "vless://uuid@[2001:db8::1]:8443?type=ws&security=tls",
			want: validator.Inspection{Protocol: subscription.VLESS, Address: "[2001:db8::1]:8443"},
		},
		{
			name: "hysteria2 with emoji name",
			uri:  "hysteria2://pw@h.example.com:443?sni=x#%F0%9F%87%BA%F0%9F%87%B8US",
			want: validator.Inspection{Protocol: subscription.Hysteria2, Address: "h.example.com:443", Name: "🇺🇸US"},
		},
		{
			name: "vmess name from body",
			uri:  "vmess://eyJ2IjoiMiIsInBzIjoidm0tbm9kZSIsImFkZCI6InYuZXhhbXBsZS5jb20iLCJwb3J0IjoiNDQzIiwiaWQiOiJ1dWlkIiwibmV0Ijoid3MifQ==",
			want: validator.Inspection{Protocol: subscription.VMess, Address: "v.example.com:443", Name: "vm-node"},
		},
		{
			name: "vmess url-safe body numeric port and fragment name",
			uri:  "vmess://eyJhZGQiOiJ2Mi5leGFtcGxlLmNvbSIsInBvcnQiOjg0NDMsInBzIjoibiJ9#custom",
			want: validator.Inspection{Protocol: subscription.VMess, Address: "v2.example.com:8443", Name: "custom"},
		},
		{
			name: "ss sip002",
			uri:  "ss://YWVzLTI1Ni1nY206cHc=@s.example.com:8388#sip",
			want: validator.Inspection{Protocol: subscription.SS, Address: "s.example.com:8388", Name: "sip"},
		},
		{
			name: "ss legacy encoded",
			uri:  "ss://YWVzLTI1Ni1nY206cHdAcy5leGFtcGxlLmNvbTo4Mzg4#legacy",
			want: validator.Inspection{Protocol: subscription.SS, Address: "s.example.com:8388", Name: "legacy"},
		},
		{
			name: "ssr positional",
			uri:  "ssr://r.example.com:9000:origin:aes-256-cfb:plain:cGFzcw==?remarks=SEs+Pw==",
			want: validator.Inspection{Protocol: subscription.SSR, Address: "r.example.com:9000", Name: "HK>?"},
		},
		{
			name: "ssr base64 wrapped",
			uri:  "ssr://ci5leGFtcGxlLmNvbTo5MDAwOm9yaWdpbjphZXMtMjU2LWNmYjpwbGFpbjpjR0Z6Y3c9PS8_cmVtYXJrcz02YWFaNXJpdjZJcUM1NEs1",
			want: validator.Inspection{Protocol: subscription.SSR, Address: "r.example.com:9000", Name: "香港节点"},
		},
		{
			name: "socks5 uppercase scheme",
			uri:  "SOCKS5://user:pw@127.0.0.1:1080",
			want: validator.Inspection{Protocol: subscription.SOCKS5, Address: "127.0.0.1:1080"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validator.Inspect(tt.uri)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInspect_Errors(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want error
	}{
		{"http link", "https://example.com/sub.txt", validator.ErrUnknownScheme},
		{"no scheme", "just text", validator.ErrUnknownScheme},
		{"missing port", "trojan://pw@t.example.com", validator.ErrMalformedNode},
		{"port out of range", "vless://uuid@v.example.com:70000", validator.ErrMalformedNode},
		{"missing host", "hysteria://:443", validator.ErrMalformedNode},
		{"vmess not base64", "vmess://not*base64", validator.ErrMalformedNode},
		{"vmess not json", "vmess://aGVsbG8=", validator.ErrMalformedNode},
		{"ss without endpoint", "ss://YWVzLTI1Ni1nY206cHc=", validator.ErrMalformedNode},
		{"ssr short head", "ssr://a:b", validator.ErrMalformedNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validator.Inspect(tt.uri)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
