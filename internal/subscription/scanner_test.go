package subscription_test

import (
	"testing"

	"github.com/JulianoL13/app-node-engine/internal/subscription"
	"github.com/stretchr/testify/assert"
)

func TestScanner_Scan(t *testing.T) {
	scanner := subscription.NewScanner(subscription.DefaultMinLength)

	t.Run("extracts mixed protocols in order", func(t *testing.T) {
		text := "vmess://abcdefghijklmnopqrstuvwxyz\n" +
			"trojan://password@t.example.com:443#t\n" +
			"ssr://r.example.com:8989:origin:aes-256-cfb:plain:cHc=\n" +
			"hysteria2://pw@h.example.com:443#h2"

		assert.Equal(t, []string{
			"vmess://abcdefghijklmnopqrstuvwxyz",
			"trojan://password@t.example.com:443#t",
			"ssr://r.example.com:8989:origin:aes-256-cfb:plain:cHc=",
			"hysteria2://pw@h.example.com:443#h2",
		}, scanner.Scan(text))
	})

	t.Run("stops at html tags and quotes", func(t *testing.T) {
		text := `<p>vmess://abcdefghijklmnopqrstuvwxyz</p><a href="trojan://pw@t.example.com:443">x</a>`

		assert.Equal(t, []string{
			"vmess://abcdefghijklmnopqrstuvwxyz",
			"trojan://pw@t.example.com:443",
		}, scanner.Scan(text))
	})

	t.Run("stops at unicode spaces", func(t *testing.T) {
		text := "trojan://password@t1.example.com:443#a\u00a0说明文字\u3000更多"

		assert.Equal(t, []string{"trojan://password@t1.example.com:443#a"}, scanner.Scan(text))
	})

	t.Run("does not split a vmess link into an ss link", func(t *testing.T) {
		nodes := scanner.Scan("vmess://abcdefghijklmnopqrstuvwxyz")
		assert.Len(t, nodes, 1)
	})

	t.Run("matches scheme case-insensitively", func(t *testing.T) {
		nodes := scanner.Scan("VLESS://uuid@v.example.com:443?type=tcp")
		assert.Equal(t, []string{"VLESS://uuid@v.example.com:443?type=tcp"}, nodes)
	})

	t.Run("drops short candidates", func(t *testing.T) {
		assert.Empty(t, scanner.Scan("ss://short and socks5://a:1"))
	})

	t.Run("deduplicates", func(t *testing.T) {
		line := "trojan://password@t.example.com:443#t"
		nodes := scanner.Scan(line + "\n" + line + "  " + line)
		assert.Equal(t, []string{line}, nodes)
	})

	t.Run("empty and unrelated text", func(t *testing.T) {
		assert.Empty(t, scanner.Scan(""))
		assert.Empty(t, scanner.Scan("http://example.com/not-a-node and plain words"))
	})

	t.Run("honours custom minimum length", func(t *testing.T) {
		uri := "trojan://password@t.example.com:443#t"
		for _, min := range []int{1, len(uri), len(uri) + 1} {
			nodes := subscription.NewScanner(min).Scan(uri)
			if min > len(uri) {
				assert.Empty(t, nodes)
			} else {
				assert.Equal(t, []string{uri}, nodes)
			}
		}
	})
}
