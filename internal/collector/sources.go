package collector

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/JulianoL13/app-node-engine/internal/subscription"
	"gopkg.in/yaml.v3"
)

// Source is one subscription endpoint. URL may carry date placeholders
// ({YYYY}, {MM}, {DD}, {MMDD}, {YYYYMMDD}) for feeds that rotate daily.
type Source struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Disabled bool   `yaml:"disabled"`
}

// Resolve expands the date placeholders of URL for t.
func (s Source) Resolve(t time.Time) string {
	if !strings.Contains(s.URL, "{") {
		return s.URL
	}
	r := strings.NewReplacer(
		"{YYYYMMDD}", t.Format("20060102"),
		"{MMDD}", t.Format("0102"),
		"{YYYY}", t.Format("2006"),
		"{MM}", t.Format("01"),
		"{DD}", t.Format("02"),
	)
	return r.Replace(s.URL)
}

type sourcesFile struct {
	Sources []Source `yaml:"sources"`
}

type SourceLogger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

func DefaultSources() []Source {
	return []Source{
		{Name: "xinye", URL: "https://raw.githubusercontent.com/xinyex/jds/main/wl{MMDD}u.txt"},
		{Name: "freeclashnode", URL: "https://node.freeclashnode.com/uploads/{YYYY}/{MM}/0-{YYYYMMDD}.txt"},
		{Name: "pawdroid", URL: "https://raw.githubusercontent.com/Pawdroid/Free-servers/main/sub"},
		{Name: "ermaozi", URL: "https://raw.githubusercontent.com/ermaozi/get_subscribe/main/subscribe/v2ray.txt"},
		{Name: "aiboboxx", URL: "https://raw.githubusercontent.com/aiboboxx/v2rayfree/main/v2"},
		{Name: "mfuu", URL: "https://raw.githubusercontent.com/mfuu/v2ray/master/clash.yaml"},
	}
}

// LoadSources reads the sources file at path. An empty path or a missing
// file yields DefaultSources. Disabled entries and URLs that do not look
// like subscriptions are dropped.
func LoadSources(path string, logger SourceLogger) ([]Source, error) {
	sources, err := readSources(path)
	if err != nil {
		return nil, err
	}
	if sources == nil {
		logger.Info("using default sources", "count", len(DefaultSources()))
		sources = DefaultSources()
	}

	usable := make([]Source, 0, len(sources))
	for _, src := range sources {
		if src.Disabled {
			continue
		}
		if !subscription.IsSubscriptionLink(src.Resolve(time.Now())) {
			logger.Warn("dropping source", "name", src.Name, "url", src.URL)
			continue
		}
		if src.Name == "" {
			src.Name = hostOf(src.URL)
		}
		usable = append(usable, src)
	}

	return usable, nil
}

func readSources(path string) ([]Source, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSources, err)
	}
	if len(file.Sources) == 0 {
		return nil, nil
	}

	return file.Sources, nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}
