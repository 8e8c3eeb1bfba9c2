/*
Copyright (C) 2026  LVM Contributors

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package scm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/launix-de/lvm/gc"
)

type tokenKind uint8

const (
	tokenOpen tokenKind = iota
	tokenClose
	tokenQuote
	tokenInt
	tokenString
	tokenSymbol
)

type token struct {
	kind tokenKind
	text string
	pos  SourceInfo
}

type SourceInfo struct {
	source string
	line   int
	col    int
}

func (source_info SourceInfo) String() string {
	return fmt.Sprintf("%s:%d:%d", source_info.source, source_info.line, source_info.col)
}

// Read parses every form in s and returns them as a list. Unbalanced
// parentheses panic with a message ending in "expecting matching )".
func (in *Interpreter) Read(source, s string) gc.Atom {
	tokens := tokenize(source, s)
	var forms []gc.Atom
	for len(tokens) > 0 {
		forms = append(forms, in.readFrom(&tokens))
	}
	return in.list(forms)
}

// Syntactic Analysis
func (in *Interpreter) readFrom(tokens *[]token) gc.Atom {
	h := in.Heap
	// pop first element from tokens
	tok := (*tokens)[0]
	*tokens = (*tokens)[1:]
	switch tok.kind {
	case tokenOpen:
		var L []gc.Atom
		tail := h.Nil()
		for {
			if len(*tokens) == 0 {
				panic(tok.pos.String() + ": expecting matching )")
			}
			next := (*tokens)[0]
			if next.kind == tokenClose {
				*tokens = (*tokens)[1:]
				break
			}
			if next.kind == tokenSymbol && next.text == "." && len(L) > 0 {
				// dotted pair: exactly one expression before the closing paren
				*tokens = (*tokens)[1:]
				if len(*tokens) == 0 {
					panic(tok.pos.String() + ": expecting matching )")
				}
				tail = in.readFrom(tokens)
				if len(*tokens) == 0 {
					panic(tok.pos.String() + ": expecting matching )")
				}
				if (*tokens)[0].kind != tokenClose {
					panic(next.pos.String() + ": expecting ) after dotted tail")
				}
				*tokens = (*tokens)[1:]
				break
			}
			L = append(L, in.readFrom(tokens))
		}
		for i := len(L) - 1; i >= 0; i-- {
			tail = h.NewPair(L[i], tail)
		}
		return tail
	case tokenClose:
		panic(tok.pos.String() + ": unexpected )")
	case tokenQuote:
		if len(*tokens) == 0 {
			panic(tok.pos.String() + ": nothing to quote")
		}
		quoted := in.readFrom(tokens)
		return h.NewPair(h.Symbol("quote"), h.NewPair(quoted, h.Nil()))
	case tokenInt:
		i, _ := strconv.ParseInt(tok.text, 10, 64)
		return h.NewInt(i)
	case tokenString:
		return h.NewString(tok.text)
	default:
		switch tok.text {
		case "nil":
			return h.Nil()
		case "true":
			return h.True()
		case "false":
			return h.False()
		}
		return h.Symbol(tok.text)
	}
}

// Lexical Analysis
func tokenize(source, s string) []token {
	/* tokenizer state machine:
	0 = expecting next item
	1 = inside Number
	2 = inside Symbol
	3 = inside string
	4 = inside escaping sequence of string
	5 = inside comment
	6 = comment ending * from * /
	7 = inside line comment

	tokens are either Number, Symbol, string, '(' , ')' or '
	*/
	line := 1
	col := 0
	pos := SourceInfo{source, 1, 1}

	stringreplacer := strings.NewReplacer("\\\"", "\"", "\\\\", "\\", "\\n", "\n", "\\r", "\r", "\\t", "\t")
	state := 0
	startToken := 0
	result := make([]token, 0)
	finishNumber := func(text string) {
		if _, err := strconv.ParseInt(text, 10, 64); err == nil {
			result = append(result, token{tokenInt, text, pos})
		} else {
			// "-" alone, or out of the int64 range
			result = append(result, token{tokenSymbol, text, pos})
		}
	}
	for i, ch := range s {
		// line counting
		if ch == '\n' {
			line++
			col = 0
		} else {
			col++
		}

		if state == 1 && ch >= '0' && ch <= '9' {
			// another digit added to Number
		} else if state == 1 && ch != ' ' && ch != '\r' && ch != '\n' && ch != '\t' && ch != ')' && ch != '(' && ch != '"' && ch != ';' {
			// not a number after all, e.g. -x or 1+
			state = 2
		} else if state == 2 && ch == '*' && s[startToken:i] == "/" {
			// begin of comment
			state = 5
		} else if state == 5 && ch == '*' {
			// comment seems to end
			state = 6
		} else if state == 5 {
			// consume another character in comment
		} else if state == 6 && ch == '/' {
			// end comment
			state = 0
		} else if state == 6 {
			// continue comment
			if ch != '*' {
				state = 5
			}
		} else if state == 7 && ch != '\n' {
			// consume line comment
		} else if state == 2 && ch != ' ' && ch != '\r' && ch != '\n' && ch != '\t' && ch != ')' && ch != '(' && ch != '"' && ch != ';' {
			// another character added to Symbol
		} else if state == 3 && ch != '"' && ch != '\\' {
			// another character added to string
		} else if state == 3 && ch == '\\' {
			// escape sequence
			state = 4
		} else if state == 4 {
			state = 3 // continue with string
		} else if state == 3 && ch == '"' {
			// finish string
			result = append(result, token{tokenString, stringreplacer.Replace(s[startToken+1 : i]), pos})
			state = 0
		} else {
			// otherwise: state change!
			if state == 1 {
				finishNumber(s[startToken:i])
			}
			if state == 2 {
				// finish Symbol
				result = append(result, token{tokenSymbol, s[startToken:i], pos})
			}
			// now detect what to parse next
			startToken = i
			pos = SourceInfo{source, line, col}
			if ch == '(' {
				result = append(result, token{tokenOpen, "(", pos})
				state = 0
			} else if ch == ')' {
				result = append(result, token{tokenClose, ")", pos})
				state = 0
			} else if ch == '\'' {
				result = append(result, token{tokenQuote, "'", pos})
				state = 0
			} else if ch == '"' {
				// start string
				state = 3
			} else if ch == ';' {
				state = 7
			} else if ch >= '0' && ch <= '9' || ch == '-' {
				// start Number
				state = 1
			} else if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
				// white space
				state = 0
			} else {
				// everything else is a Symbol! (Symbols only are stopped by ' ()')
				state = 2
			}
		}
	}
	// in the end: finish unfinished Symbols and Numbers
	switch state {
	case 1:
		finishNumber(s[startToken:])
	case 2:
		result = append(result, token{tokenSymbol, s[startToken:], pos})
	case 3, 4:
		panic(pos.String() + ": unterminated string")
	}
	return result
}
