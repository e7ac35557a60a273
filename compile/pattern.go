// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package compile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/iptecharch/yang-compiler/parse"
	"github.com/iptecharch/yang-compiler/schema"
)

// RegexProvider abstracts the regex engine behind pattern restrictions.
// CheckPattern with keep=false only validates the syntax and releases the
// scratch compilation straight away; keep=true returns the compiled form
// for the schema to hold on to.
type RegexProvider interface {
	CheckPattern(pattern string, keep bool) (schema.Matcher, error)
}

//Extra character classes from the XML Schema spec, translated to normal
//character classes.
var patternReplacements = map[string]string{
	"\\p{IsBasicLatin}": "[\\x{0000}-\\x{007F}]",
}

// goRegexProvider backs pattern restrictions with the standard engine.
// YANG patterns are XSD regexps, implicitly anchored to the whole value;
// the engine doesn't anchor, so the pattern gets parenthesised and
// anchored explicitly before compilation.
type goRegexProvider struct{}

func (goRegexProvider) CheckPattern(pattern string, keep bool) (schema.Matcher, error) {
	s := pattern
	for k, v := range patternReplacements {
		s = strings.Replace(s, k, v, -1)
	}
	s = "^(" + s + ")$"
	re, err := regexp.Compile(s)
	if err != nil {
		return nil, err
	}
	if !keep {
		return nil, nil
	}
	return re, nil
}

// DefaultRegexProvider returns the stdlib-backed provider used unless the
// configuration supplies another engine.
func DefaultRegexProvider() RegexProvider {
	return goRegexProvider{}
}

// checkPatternSyntax validates a pattern without retaining the compiled
// form; a pattern that fails to compile fails the whole type.
func (c *Compiler) checkPatternSyntax(n parse.Node, pattern string) {
	if _, err := c.regexes.CheckPattern(pattern, false); err != nil {
		c.error(n, fmt.Errorf("invalid pattern %q: %s", pattern, err))
	}
}

// buildPatterns compiles the pattern restrictions of one type statement
// and appends them to the inherited base patterns. The result list is
// cumulative: a value must match every pattern, with invert-match applied
// to the individual pattern carrying it. Base patterns are shared, not
// copied, so typedef chains hold each compiled pattern exactly once.
func (c *Compiler) buildPatterns(
	basePatterns []*schema.Pattern,
	n parse.Node,
) []*schema.Pattern {

	patterns := n.ChildrenByType(parse.NodePattern)
	if len(patterns) == 0 {
		return basePatterns
	}

	out := make([]*schema.Pattern, 0, len(basePatterns)+len(patterns))
	out = append(out, basePatterns...)
	for _, p := range patterns {
		src := p.ArgPattern()
		c.checkPatternSyntax(p, src)
		matcher, err := c.regexes.CheckPattern(src, true)
		if err != nil {
			c.error(p, fmt.Errorf("invalid pattern %q: %s", src, err))
		}
		out = append(out, &schema.Pattern{
			Pattern: src,
			Matcher: matcher,
			Invert:  p.InvertMatch(),
			Msg:     p.Msg(),
			AppTag:  p.AppTag(),
			Desc:    p.Desc(),
			Ref:     p.Ref(),
			Exts:    c.extensionInstances(p),
		})
	}
	return out
}
