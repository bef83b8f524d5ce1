package token

import (
	"unicode"
)

type Type int

const (
	Ident Type = iota
	Number
	String
	Punct
	Annotation
	Invalid
)

func (t Type) String() string {
	switch t {
	case Ident:
		return "identifier"
	case Number:
		return "number"
	case String:
		return "string"
	case Punct:
		return "punctuation"
	case Annotation:
		return "annotation"
	case Invalid:
		return "invalid"
	}
	return "unknown"
}

type Token struct {
	Value string
	Type  Type
	Line  int
	Col   int
}

// Is reports whether t is punctuation or an identifier spelled v.
func (t Token) Is(v string) bool {
	return (t.Type == Punct || t.Type == Ident) && t.Value == v
}

func Tokenize(input string) []Token {
	var tokens []Token
	line, lineStart := 1, 0
	runes := []rune(input)

	col := func(i int) int { return i - lineStart + 1 }

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '\n' {
			line++
			lineStart = i + 1
			continue
		}
		if unicode.IsSpace(r) {
			continue
		}

		// Line comment
		if r == '/' && i+1 < len(runes) && runes[i+1] == '/' {
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			i--
			continue
		}

		// Block comment
		if r == '/' && i+1 < len(runes) && runes[i+1] == '*' {
			i += 2
			for i < len(runes) && !(runes[i] == '*' && i+1 < len(runes) && runes[i+1] == '/') {
				if runes[i] == '\n' {
					line++
					lineStart = i + 1
				}
				i++
			}
			i++
			continue
		}

		// Namespace separator
		if r == ':' && i+1 < len(runes) && runes[i+1] == ':' {
			tokens = append(tokens, Token{"::", Punct, line, col(i)})
			i++
			continue
		}

		switch r {
		case '{', '}', '[', ']', ';', '=', ',':
			tokens = append(tokens, Token{string(r), Punct, line, col(i)})
			continue
		}

		// String literal
		if r == '"' {
			start := i + 1
			c := col(i)
			i++
			for i < len(runes) && runes[i] != '"' {
				if runes[i] == '\\' {
					i++
				}
				i++
			}
			end := min(i, len(runes))
			tokens = append(tokens, Token{string(runes[start:end]), String, line, c})
			continue
		}

		// Number (including negative)
		if r == '-' || r == '+' || unicode.IsDigit(r) {
			start := i
			if r == '-' || r == '+' {
				i++
			}
			for i < len(runes) {
				c := runes[i]
				if unicode.IsDigit(c) || c == '.' || c == 'e' || c == 'E' ||
					c == 'x' || c == 'X' ||
					(c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') ||
					((c == '-' || c == '+') && i > start && (runes[i-1] == 'e' || runes[i-1] == 'E')) {
					i++
				} else {
					break
				}
			}
			tokens = append(tokens, Token{string(runes[start:i]), Number, line, col(start)})
			i--
			continue
		}

		// Annotation (@naked, @compact)
		if r == '@' {
			start := i
			i++
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, Token{string(runes[start:i]), Annotation, line, col(start)})
			i--
			continue
		}

		// Identifier or keyword
		if unicode.IsLetter(r) || r == '_' {
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, Token{string(runes[start:i]), Ident, line, col(start)})
			i--
			continue
		}

		tokens = append(tokens, Token{string(r), Invalid, line, col(i)})
	}

	return tokens
}
