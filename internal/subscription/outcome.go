package subscription

// Strategy names the decode step that produced an Outcome.
type Strategy string

const (
	StrategyNone       Strategy = ""
	StrategyStructured Strategy = "structured"
	StrategyBase64     Strategy = "base64"
	StrategyPercent    Strategy = "percent"
	StrategyDirect     Strategy = "direct"
)

func (s Strategy) String() string {
	if s == StrategyNone {
		return "none"
	}
	return string(s)
}

// Outcome is either a match carrying at least one node, or NoMatch.
type Outcome struct {
	Strategy Strategy
	Nodes    []string
}

var NoMatch = Outcome{}

func matched(s Strategy, nodes []string) Outcome {
	if len(nodes) == 0 {
		return NoMatch
	}
	return Outcome{Strategy: s, Nodes: nodes}
}

func (o Outcome) Matched() bool {
	return len(o.Nodes) > 0
}
