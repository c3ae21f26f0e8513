package subscription

import (
	"strings"
	"unicode/utf8"
)

// minPayloadLength is the shortest payload worth decoding.
const minPayloadLength = 10

type DescriptorConverter interface {
	Convert(d Descriptor) (string, error)
}

type DecoderLogger interface {
	Debug(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

type Option func(*Decoder)

func WithMinLength(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.scanner.MinLength = n
		}
	}
}

func WithLogger(l DecoderLogger) Option {
	return func(d *Decoder) {
		if l != nil {
			d.logger = l
		}
	}
}

// Decoder turns a subscription payload of unknown encoding into node URIs.
// It keeps no state between calls.
type Decoder struct {
	converter DescriptorConverter
	scanner   Scanner
	logger    DecoderLogger
}

func NewDecoder(converter DescriptorConverter, opts ...Option) *Decoder {
	d := &Decoder{
		converter: converter,
		scanner:   NewScanner(DefaultMinLength),
		logger:    nopLogger{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Decoder) MinLength() int {
	return d.scanner.MinLength
}

// ForMinLength returns a copy of d filtering at n characters.
func (d *Decoder) ForMinLength(n int) *Decoder {
	cp := *d
	WithMinLength(n)(&cp)
	return &cp
}

// Decode returns the deduplicated node URIs found in raw, or nothing.
func (d *Decoder) Decode(raw string) []string {
	return d.DecodeOutcome(raw).Nodes
}

type step struct {
	strategy Strategy
	run      func(string) ([]string, error)
}

// DecodeOutcome tries structured, base64, percent and direct decoding in
// that order and stops at the first that yields a node.
func (d *Decoder) DecodeOutcome(raw string) Outcome {
	if utf8.RuneCountInString(raw) < minPayloadLength {
		return NoMatch
	}

	steps := []step{
		{StrategyStructured, d.decodeStructured},
		{StrategyBase64, d.decodeBase64},
		{StrategyPercent, d.decodePercent},
		{StrategyDirect, d.decodeDirect},
	}

	for _, s := range steps {
		nodes, err := s.run(raw)
		if err != nil {
			d.logger.Debug("decode strategy skipped", "error", &DecodeError{Strategy: s.strategy, Err: err})
			continue
		}
		if out := matched(s.strategy, normalize(nodes, d.scanner.MinLength)); out.Matched() {
			return out
		}
	}
	return NoMatch
}

func (d *Decoder) decodeBase64(raw string) ([]string, error) {
	first, err := decodeBase64Lossy([]byte(strings.TrimSpace(raw)))
	if err != nil {
		return nil, err
	}
	if nodes := d.scanner.Scan(lossyText(first)); len(nodes) > 0 {
		return nodes, nil
	}

	second, err := decodeBase64Lossy(first)
	if err != nil {
		return nil, err
	}
	if nodes := d.scanner.Scan(lossyText(second)); len(nodes) > 0 {
		return nodes, nil
	}
	return nil, ErrNoNodes
}

func (d *Decoder) decodePercent(raw string) ([]string, error) {
	decoded := percentDecode(raw)
	if decoded == raw {
		return nil, ErrUnchanged
	}
	if countSchemes(decoded) <= countSchemes(raw) {
		return nil, ErrNoHiddenNodes
	}
	if nodes := d.scanner.Scan(decoded); len(nodes) > 0 {
		return nodes, nil
	}
	return nil, ErrNoNodes
}

func (d *Decoder) decodeDirect(raw string) ([]string, error) {
	if nodes := d.scanner.Scan(raw); len(nodes) > 0 {
		return nodes, nil
	}
	return nil, ErrNoNodes
}
