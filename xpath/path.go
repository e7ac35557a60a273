// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package xpath

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Path is the structured form of a leafref path argument (RFC 7950
// sec 9.9.2): either absolute, or relative with a run of "../" steps,
// followed by a descendant path whose steps may carry key predicates.
type Path struct {
	Absolute bool
	Up       int
	Steps    []PathStep
}

// PathStep is one node of a leafref path. Name.Space holds the prefix as
// written; predicates are kept as parsed expressions for the data
// validator.
type PathStep struct {
	Name       xml.Name
	Predicates []Expr
}

func (p *Path) String() string {
	var b strings.Builder
	if p.Absolute {
		b.WriteString("/")
	}
	for i := 0; i < p.Up; i++ {
		b.WriteString("../")
	}
	for i, s := range p.Steps {
		if i > 0 {
			b.WriteString("/")
		}
		if s.Name.Space != "" {
			b.WriteString(s.Name.Space + ":")
		}
		b.WriteString(s.Name.Local)
	}
	return b.String()
}

// ParsePath parses a leafref path argument. Prefixes are checked against
// mapFn; the target node is resolved later, once the whole working set
// has been compiled.
func ParsePath(pathArg string, mapFn PrefixMapFn) (*Path, error) {
	p := &exprParser{lex: &exprLexer{input: pathArg}, mapFn: mapFn}
	out := &Path{}

	t, err := p.peek()
	if err != nil {
		return nil, err
	}
	switch t.typ {
	case tokSlash:
		out.Absolute = true
		p.next()
	case tokDotDot:
		for {
			t, err := p.peek()
			if err != nil {
				return nil, err
			}
			if t.typ != tokDotDot {
				break
			}
			p.next()
			out.Up++
			if _, err := p.expect(tokSlash, "'/'"); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("%s: leafref path must be absolute or start with '..'", pathArg)
	}

	for {
		nt, err := p.expect(tokName, "node identifier")
		if err != nil {
			return nil, fmt.Errorf("%s: %s", pathArg, err)
		}
		name, err := p.qname(nt.val)
		if err != nil {
			return nil, fmt.Errorf("%s: %s", pathArg, err)
		}
		step, err := p.predicates(Step{Name: name})
		if err != nil {
			return nil, fmt.Errorf("%s: %s", pathArg, err)
		}
		out.Steps = append(out.Steps, PathStep{
			Name:       step.Name,
			Predicates: step.Predicates,
		})

		t, err := p.next()
		if err != nil {
			return nil, fmt.Errorf("%s: %s", pathArg, err)
		}
		if t.typ == tokEOF {
			break
		}
		if t.typ != tokSlash {
			return nil, fmt.Errorf("%s: unexpected %s in path", pathArg, t)
		}
	}
	if len(out.Steps) == 0 {
		return nil, fmt.Errorf("%s: empty leafref path", pathArg)
	}
	return out, nil
}
