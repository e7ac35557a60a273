// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package parse

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

var ErrCard = errors.New("cardinality mismatch")

type Scope struct {
	tenv *TEnv
	genv *GEnv
}

// RFC 7950; Sec 6.1.3, specifies a tab is 8 space characters
const tabSpaces int = 8
const wsSpaces int = 1

var BuiltinTenv *TEnv

func init() {
	BuiltinTenv = NewTEnv(nil)
	BuiltinTenv.Put("binary", nil)
	BuiltinTenv.Put("bits", nil)
	BuiltinTenv.Put("boolean", nil)
	BuiltinTenv.Put("decimal64", nil)
	BuiltinTenv.Put("empty", nil)
	BuiltinTenv.Put("enumeration", nil)
	BuiltinTenv.Put("identityref", nil)
	BuiltinTenv.Put("instance-identifier", nil)
	BuiltinTenv.Put("int8", nil)
	BuiltinTenv.Put("int16", nil)
	BuiltinTenv.Put("int32", nil)
	BuiltinTenv.Put("int64", nil)
	BuiltinTenv.Put("leafref", nil)
	BuiltinTenv.Put("string", nil)
	BuiltinTenv.Put("uint8", nil)
	BuiltinTenv.Put("uint16", nil)
	BuiltinTenv.Put("uint32", nil)
	BuiltinTenv.Put("uint64", nil)
	BuiltinTenv.Put("union", nil)
}

func OpenScope(p *Scope) *Scope {
	if p == nil {
		return &Scope{
			tenv: NewTEnv(BuiltinTenv),
			genv: NewGEnv(nil),
		}
	}
	return &Scope{
		tenv: NewTEnv(p.tenv),
		genv: NewGEnv(p.genv),
	}
}

// Tree is the representation of a single parsed module or submodule.
type Tree struct {
	Root      Node // top-level root of the tree
	ParseName string
	extCard   NodeCardinality // cardinality of registered extensions
	text      string          // text parsed to create the tree
	lex       *lexer
	token     [3]item // three-token lookahead for the parser
	peekCount int

	argInterner    *ArgInterner
	stringInterner *StringInterner
}

func Parse(name, text string, extCard NodeCardinality) (*Tree, error) {
	return ParseWithInterners(name, text, extCard, NewStringInterner(), NewArgInterner())
}

func ParseWithInterners(
	name, text string,
	extCard NodeCardinality,
	stringInterner *StringInterner,
	argInterner *ArgInterner,
) (*Tree, error) {
	t := NewWithInterners(name, extCard, stringInterner, argInterner)
	t.text = text
	defer t.done()
	_, err := t.Parse(text)
	return t, err
}

func (t *Tree) done() {
	var empty [3]item
	copy(t.token[:], empty[:])

	t.extCard = nil
	t.argInterner = nil
	t.stringInterner = nil
	t.lex = nil
}

func (t *Tree) String() string {
	return t.text
}

func (t *Tree) internArg(ntype NodeType, a Argument) Argument {
	if t.argInterner == nil {
		return a
	}
	return t.argInterner.Intern(ntype, a)
}

// next returns the next token.
func (t *Tree) next() item {
	if t.peekCount > 0 {
		t.peekCount--
	} else {
		t.token[0] = t.lex.nextItem()
	}
	return t.token[t.peekCount]
}

// backup backs the input stream up one token.
func (t *Tree) backup() {
	t.peekCount++
}

// peek returns but does not consume the next token.
func (t *Tree) peek() item {
	if t.peekCount > 0 {
		return t.token[t.peekCount-1]
	}
	t.peekCount = 1
	t.token[0] = t.lex.nextItem()
	return t.token[0]
}

// nextNonSpace returns the next non-space token.
func (t *Tree) nextNonSpace() (token item) {
	for {
		token = t.next()
		if token.typ != itemSep {
			break
		}
	}
	return token
}

// peekNonSpace returns but does not consume the next non-space token.
func (t *Tree) peekNonSpace() (token item) {
	for {
		token = t.next()
		if token.typ != itemSep {
			break
		}
	}
	t.backup()
	return token
}

// New allocates a new parse tree with the given name.
func New(name string, card NodeCardinality) *Tree {
	return NewWithInterners(name, card, NewStringInterner(), NewArgInterner())
}

func NewWithInterners(
	name string,
	card NodeCardinality,
	stringInterner *StringInterner,
	argInterner *ArgInterner,
) *Tree {

	if card == nil {
		card = func(n NodeType) map[NodeType]Cardinality { return nil }
	}
	return &Tree{
		ParseName:      name,
		extCard:        card,
		argInterner:    argInterner,
		stringInterner: stringInterner,
	}
}

func (t *Tree) ErrorContextPosition(pos int, ctx string) (location, context string) {
	text := t.text[:pos]
	byteNum := strings.LastIndex(text, "\n")
	if byteNum == -1 {
		byteNum = pos // On first line.
	} else {
		byteNum++ // After the newline.
		byteNum = pos - byteNum
	}
	lineNum := 1 + strings.Count(text, "\n")
	context = ctx
	if len(context) > 20 {
		context = fmt.Sprintf("%.20s...", context)
	}
	if ctx == "" {
		return fmt.Sprintf("%s:%d:%d", t.ParseName, lineNum, byteNum), context
	}
	return fmt.Sprintf("%s:%d:%d: %s", t.ParseName, lineNum, byteNum, ctx), context
}

// errorf formats the error and terminates processing.
func (t *Tree) errorf(format string, args ...interface{}) {
	t.Root = nil
	pos := int(t.lex.lastPos)
	text := t.lex.input[:t.lex.lastPos]
	byteNum := strings.LastIndex(text, "\n")
	if byteNum == -1 {
		byteNum = pos // On first line.
	} else {
		byteNum++ // After the newline.
		byteNum = pos - byteNum
	}
	format = fmt.Sprintf("yang: %s:%d:%d: %s", t.ParseName, t.lex.lineNumber(), byteNum, format)
	panic(fmt.Errorf(format, args...))
}

// expect consumes the next token and guarantees it has the required type.
func (t *Tree) expect(expected itemType, context string) item {
	token := t.nextNonSpace()
	if token.typ != expected {
		t.unexpected(token, context)
	}
	return token
}

// expectOneOf consumes the next token and guarantees it has one of the
// required types.
func (t *Tree) expectOneOf(expected1, expected2 itemType, context string) item {
	token := t.nextNonSpace()
	if token.typ != expected1 && token.typ != expected2 {
		t.unexpected(token, context)
	}
	return token
}

// unexpected complains about the token and terminates processing.
func (t *Tree) unexpected(token item, context string) {
	t.errorf("unexpected %s in %s", token, context)
}

// recover is the handler that turns panics into returns from the top
// level of Parse.
func (t *Tree) recover(errp *error) {
	e := recover()
	if e != nil {
		if _, ok := e.(runtime.Error); ok {
			panic(e)
		}
		if t != nil {
			t.stopParse()
		}
		*errp = e.(error)
	}
}

func (t *Tree) startParse(lex *lexer) {
	t.Root = nil
	t.lex = lex
}

func (t *Tree) stopParse() {
	t.lex = nil
}

func (t *Tree) Parse(text string) (tree *Tree, err error) {
	defer t.recover(&err)
	t.startParse(lexWithInterner(t.ParseName, text, t.stringInterner))
	t.text = text
	t.parse()
	t.stopParse()
	return t, nil
}

func (t *Tree) NewNode(id item, arg string, children []Node, s *Scope) Node {
	ntype := NodeTypeFromName(id.val)
	return newNodeByType(ntype, t, id, arg, children, s)
}

//file:
//	stmt stmt*
func (t *Tree) parse() {
	s := OpenScope(nil)
	t.Root = t.stmt("file", s)
	t.expect(itemEOF, "file")

	//Fill out symbol tables top down, this enables us to check for
	//shadowing which is disallowed by yang.
	err, pos := t.Root.buildSymbols()
	if err != nil {
		s, _ := t.ErrorContextPosition(int(pos), "")
		panic(fmt.Errorf("%s: %s", s, err))
	}
}

//stmt:
//	identifier argument stmtBody
//|	identifier '{' stmtStar '}' //special case for input and output
func (t *Tree) stmt(ctx string, s *Scope) Node {
	var arg string
	id := t.expect(itemString, ctx)
	i := t.peekNonSpace()
	switch i.typ {
	case itemLeftBrace:
		break
	default:
		arg = t.argument("argument of " + id.val)
	}
	//Link scopes as we walk the tree, the symbol tables are filled out
	//in a separate pass top down
	ns := OpenScope(s)
	body := t.stmtBody(id.val+" "+arg, ns)
	n := t.NewNode(id, arg, body, s)

	//Validate cardinality, ordering, and argument syntax
	e := n.check()
	if e != nil {
		s, _ := n.ErrorContext()
		panic(fmt.Errorf("%s: %s", s, e))
	}

	return n
}

// These are the only valid escape sequences permitted in a double quoted
// string, refer to RFC 7950; sec 6.1.3
var sMap = map[string]string{
	"n":  "\n",
	"r":  "\r",
	"t":  "\t",
	"\"": "\"",
	"\\": "\\",
}

func escapeSequenceSubstitution(s string) string {
	var rs string
	var skip bool

	if s == "" {
		return s
	}

	/*
	 * Break up into a list of strings, with backslash as separator. We
	 * now have a list of strings with an implied backslash preceding all
	 * but the first in the list.
	 *
	 * A nil string ("") implies a double backslash was seen, except
	 * first in list, which is a solitary backslash.
	 *
	 * Traverse the list, looking up the first character in each string,
	 * and replace with its substitute, if valid, while also accounting
	 * for double backslash sequences.
	 */
	lines := strings.Split(s, `\`)
	for i, st := range lines {
		if st == "" {
			// Double backslash was seen; inject backslash unless
			// first in list or double nil string
			if !skip && i > 0 {
				rs += "\\"
				skip = true
			} else {
				skip = false
			}
			continue
		}

		// Only substitute if not first in list and no double backslash
		// precedes this string
		if i > 0 && !skip {
			sub, found := sMap[st[:1]]
			if !found {
				// Ignore any backslash sequences that are not
				// explicitly substituted, restore the backslash.
				rs += "\\" + st
			} else {
				rs += sub + st[1:]
			}
		} else {
			rs += st
			skip = false
		}
	}

	return rs
}

// Get the count of whitespace that needs trimming from lines to ensure
// they line up with the first character after the string's opening double
// quote.
func openQuotePos(t *Tree, s string) (quotePos int) {

	// Get position of the quote
	posStart := strings.LastIndex(t.lex.input[:t.lex.lastPos], s)
	if posStart < 0 {
		return 0
	}

	// Get position one after previous line-break
	lnBgn := strings.LastIndex(t.lex.input[:posStart], "\n") + 1

	// Get all the line up to the opening quote
	leadUp := t.lex.input[lnBgn:posStart]

	for _, c := range leadUp {
		if c == '\t' {
			quotePos += tabSpaces
		} else {
			quotePos += wsSpaces
		}
	}

	return quotePos
}

// Strip up to trimLen whitespace from the beginning of the string. If
// removing a tab would trim too much, substitute spaces as required.
func trimLeadWS(s string, trimLen int) string {
	var tabOfWS string = "        "
	var wsCount int

	for i, c := range s {
		switch c {
		case ' ':
			wsCount += wsSpaces
		case '\t':
			wsCount += tabSpaces
		default:
			// Reached a non-whitespace character
			return s[i:]
		}

		if wsCount >= trimLen {
			return tabOfWS[:wsCount-trimLen] + s[i+1:]
		}
	}

	// Must be all whitespace
	return ""
}

// Trim whitespace as required by RFC 7950; Sec 6.1.3:
// - all whitespace at the start of each line up to the column of the
//   string's opening double quote
// - all whitespace at the end of each line, immediately before a
//   line-break, if one exists
func trimWhitespace(t *Tree, s string) string {
	var trimmed string
	var cr int

	// Two line-break variants, LF and CRLF
	lineBreaks := [2]string{"\n", "\r\n"}

	// Perform any special character substitution before trimming
	sub := escapeSequenceSubstitution(s)

	// Only trim whitespace if a line-break is present
	if !strings.Contains(sub, "\n") {
		return sub
	}

	// Get quote position, using the pre-substitution string
	quotePos := openQuotePos(t, s)

	lines := strings.Split(sub, "\n")
	for i, st := range lines {
		str := st

		if i > 0 {
			// No whitespace trimming on first line
			str = trimLeadWS(str, quotePos)
		}

		if len(str) == 0 {
			continue
		}

		// Handle a CRLF line-break
		if rune(str[len(str)-1]) == '\r' {
			cr = 1
		}

		if i != len(lines)-1 {
			// trim trailing whitespace for all but last string
			str = strings.TrimRight(str[:len(str)-cr], " \t") + lineBreaks[cr]
		}

		trimmed += str
		cr = 0
	}
	return trimmed
}

//argument:
// (string / (quotedString *([sep] '+' [sep] quotedString))) (';' / '{')
func (t *Tree) argument(ctx string) string {
	var i item
	var s string

	i = t.peekNonSpace()
	switch i.typ {
	case itemLeftBrace:
		fallthrough
	case itemSemiColon:
		return s
	case itemString:
		i = t.nextNonSpace()
		s = i.val
	case itemQuote:
		t.nextNonSpace()
		s = t.argumentQuoted(ctx)
	default:
		t.unexpected(i, ctx)
	}

	return s
}

//argumentQuoted:
// Quoted string; the leading quote has been removed.
// Strip whitespace of a double quoted string that contains a line break.
func (t *Tree) argumentQuoted(ctx string) string {
	var i item
	var s string

	i = t.peekNonSpace()
	switch i.typ {
	case itemString:
		i = t.nextNonSpace()
		// Quoted string must be terminated by a quote
		qt := t.expect(itemQuote, ctx)
		if qt.val == "\"" {
			s = trimWhitespace(t, i.val) + t.argumentConcatenate(ctx)
		} else {
			s = i.val + t.argumentConcatenate(ctx)
		}
	case itemQuote:
		t.nextNonSpace()
		s = t.argumentConcatenate(ctx)
	default:
		t.unexpected(i, ctx)
	}
	return s
}

//argumentConcatenate:
// Check if we need to concatenate another string, indicated by a '+'
func (t *Tree) argumentConcatenate(ctx string) string {
	var i item
	var s string

	i = t.peekNonSpace()
	switch i.typ {
	case itemLeftBrace:
		fallthrough
	case itemSemiColon:
		return s
	case itemPlus:
		t.nextNonSpace()
		// must be followed by [sep] quote
		t.expect(itemQuote, ctx)
		s = t.argumentQuoted(ctx)
	default:
		t.unexpected(i, ctx)
	}
	return s
}

//stmtBody:
//	';'
//| '{' stmtStar '}'
func (t *Tree) stmtBody(ctx string, s *Scope) []Node {
	var out []Node
	delim := t.expectOneOf(itemSemiColon, itemLeftBrace, ctx)
	switch delim.typ {
	case itemLeftBrace:
		out = t.stmtStar(ctx, s)
		t.expect(itemRightBrace, ctx)
	case itemSemiColon:
	}

	return out
}

//stmtStar
//	stmt*
func (t *Tree) stmtStar(ctx string, s *Scope) []Node {
	//0 stmts
	if i := t.peekNonSpace(); i.typ == itemRightBrace {
		return nil
	}

	//1 or more stmts
	out := make([]Node, 0)
	for n := t.stmt(ctx, s); n != nil; n = t.stmt(ctx, s) {
		out = append(out, n)
		if i := t.peekNonSpace(); i.typ == itemRightBrace {
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	children := make([]Node, len(out))
	copy(children, out)
	return children
}
