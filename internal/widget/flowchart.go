package widget

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrUnsupportedDiagram = errors.New("unsupported diagram")
	ErrNoEdges            = errors.New("diagram has no edges")
)

var (
	flowArrow = regexp.MustCompile(`\s*(-\.->|==>|-->|---)\s*(?:\|([^|]*)\|)?\s*`)
	flowNode  = regexp.MustCompile(`^([\w-]+)\s*(?:[\[\(\{]+\s*"?(.*?)"?\s*[\]\)\}]+)?$`)
)

var arrowGlyphs = map[string]string{
	"-->":  "→",
	"---":  "─",
	"-.->": "⇢",
	"==>":  "⇒",
}

// FlowchartRenderer renders mermaid flowcharts as one edge per line,
// using node labels where declared.
type FlowchartRenderer struct{}

type flowEdge struct {
	from, to, arrow, label string
}

func (FlowchartRenderer) Render(ctx context.Context, lang, source string) (string, error) {
	if lang != "mermaid" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDiagram, lang)
	}

	lines := strings.Split(source, "\n")
	header := -1
	for i, line := range lines {
		if t := strings.TrimSpace(line); t != "" && !strings.HasPrefix(t, "%%") {
			header = i
			break
		}
	}
	if header < 0 {
		return "", ErrNoEdges
	}
	kind := strings.Fields(lines[header])[0]
	if kind != "graph" && kind != "flowchart" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDiagram, kind)
	}

	labels := map[string]string{}
	var edges []flowEdge
	for _, line := range lines[header+1:] {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		line = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), ";"))
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}

		arrows := flowArrow.FindAllStringSubmatchIndex(line, -1)
		var ids []string
		prev := 0
		for _, a := range arrows {
			ids = append(ids, declareNode(labels, line[prev:a[0]]))
			prev = a[1]
		}
		ids = append(ids, declareNode(labels, line[prev:]))

		for i, a := range arrows {
			if ids[i] == "" || ids[i+1] == "" {
				continue
			}
			e := flowEdge{from: ids[i], to: ids[i+1], arrow: line[a[2]:a[3]]}
			if a[4] >= 0 {
				e.label = strings.TrimSpace(line[a[4]:a[5]])
			}
			edges = append(edges, e)
		}
	}
	if len(edges) == 0 {
		return "", ErrNoEdges
	}

	var b strings.Builder
	for i, e := range edges {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s %s", labels[e.from], arrowGlyphs[e.arrow], labels[e.to])
		if e.label != "" {
			fmt.Fprintf(&b, " (%s)", e.label)
		}
	}
	return b.String(), nil
}

// declareNode parses a node token, records its label and returns its id.
func declareNode(labels map[string]string, token string) string {
	m := flowNode.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return ""
	}
	id := m[1]
	if m[2] != "" {
		if _, ok := labels[id]; !ok || labels[id] == id {
			labels[id] = m[2]
		}
	} else if _, ok := labels[id]; !ok {
		labels[id] = id
	}
	return id
}
