package expr

import (
	"strings"
	"unicode/utf8"
)

type lexeme uint8

const (
	lexInvalid lexeme = iota
	lexIncomplete
	lexBareword

	// operands
	lexNumber
	lexBoolean
	lexBraced
	lexQuoted
	lexVariable
	lexScript
	lexEmpty

	// unary operators
	lexStart
	lexUnaryPlus
	lexUnaryMinus
	lexNot
	lexBitNot
	lexFunction
	lexOpenParen

	// binary operators
	lexEnd
	lexCloseParen
	lexComma
	lexQuestion
	lexColon
	lexOr
	lexAnd
	lexBitOr
	lexBitXor
	lexBitAnd
	lexEq
	lexNeq
	lexStrEq
	lexStrNeq
	lexIn
	lexNi
	lexLt
	lexGt
	lexLeq
	lexGeq
	lexLeftShift
	lexRightShift
	lexPlus
	lexMinus
	lexMult
	lexDivide
	lexMod
	lexExpon
)

func (l lexeme) isOperand() bool { return l >= lexNumber && l <= lexEmpty }
func (l lexeme) isUnary() bool   { return l >= lexStart && l <= lexOpenParen }

// Operator precedence, loosest first.
const (
	precEnd = iota + 1
	precStart
	precCloseParen
	precOpenParen
	precComma
	precConditional
	precOr
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEqual
	precCompare
	precShift
	precAdd
	precMult
	precUnary
	precExpon
	precCall
)

func (l lexeme) prec() int {
	switch l {
	case lexEnd:
		return precEnd
	case lexStart:
		return precStart
	case lexCloseParen:
		return precCloseParen
	case lexOpenParen:
		return precOpenParen
	case lexComma:
		return precComma
	case lexQuestion, lexColon:
		return precConditional
	case lexOr:
		return precOr
	case lexAnd:
		return precAnd
	case lexBitOr:
		return precBitOr
	case lexBitXor:
		return precBitXor
	case lexBitAnd:
		return precBitAnd
	case lexEq, lexNeq, lexStrEq, lexStrNeq, lexIn, lexNi:
		return precEqual
	case lexLt, lexGt, lexLeq, lexGeq:
		return precCompare
	case lexLeftShift, lexRightShift:
		return precShift
	case lexPlus, lexMinus:
		return precAdd
	case lexMult, lexDivide, lexMod:
		return precMult
	case lexUnaryPlus, lexUnaryMinus, lexNot, lexBitNot:
		return precUnary
	case lexExpon:
		return precExpon
	case lexFunction:
		return precCall
	}
	return 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

func isWordChar(c byte) bool { return isLetter(c) || isDigit(c) || c == '_' }

func skipSpace(s string, pos int) int {
	for pos < len(s) && isSpace(s[pos]) {
		pos++
	}
	return pos
}

// wordOperators are the operators spelled with letters. They are operators
// only when not run together with further word characters.
var wordOperators = map[string]lexeme{
	"eq": lexStrEq,
	"ne": lexStrNeq,
	"in": lexIn,
	"ni": lexNi,
}

// scan reads the lexeme at pos, which must not be blank. Operands other than
// numbers and barewords report a zero size; the parser measures them.
func scan(s string, pos int) (lexeme, int) {
	rest := s[pos:]
	two := func(second byte, long, short lexeme) (lexeme, int) {
		if len(rest) > 1 && rest[1] == second {
			return long, 2
		}
		return short, 1
	}
	if strings.HasPrefix(rest, "::") && len(rest) > 2 && isLetter(rest[2]) {
		return lexBareword, scanWord(rest)
	}
	switch rest[0] {
	case '+':
		return lexPlus, 1
	case '-':
		return lexMinus, 1
	case '*':
		return two('*', lexExpon, lexMult)
	case '/':
		return lexDivide, 1
	case '%':
		return lexMod, 1
	case '<':
		if len(rest) > 1 && rest[1] == '=' {
			return lexLeq, 2
		}
		return two('<', lexLeftShift, lexLt)
	case '>':
		if len(rest) > 1 && rest[1] == '=' {
			return lexGeq, 2
		}
		return two('>', lexRightShift, lexGt)
	case '=':
		return two('=', lexEq, lexIncomplete)
	case '!':
		return two('=', lexNeq, lexNot)
	case '~':
		return lexBitNot, 1
	case '&':
		return two('&', lexAnd, lexBitAnd)
	case '|':
		return two('|', lexOr, lexBitOr)
	case '^':
		return lexBitXor, 1
	case '?':
		return lexQuestion, 1
	case ':':
		return lexColon, 1
	case ',':
		return lexComma, 1
	case '(':
		return lexOpenParen, 1
	case ')':
		return lexCloseParen, 1
	case '$':
		return lexVariable, 0
	case '[':
		return lexScript, 0
	case '"':
		return lexQuoted, 0
	case '{':
		return lexBraced, 0
	}

	if isDigit(rest[0]) || rest[0] == '.' && len(rest) > 1 && isDigit(rest[1]) {
		n := scanNumber(rest)
		if n < len(rest) && isWordChar(rest[n]) {
			return lexBareword, scanWord(rest)
		}
		return lexNumber, n
	}
	if isLetter(rest[0]) {
		n := scanWord(rest)
		if op, ok := wordOperators[rest[:n]]; ok {
			return op, n
		}
		return lexBareword, n
	}
	_, n := utf8.DecodeRuneInString(rest)
	return lexInvalid, n
}

// scanWord measures a run of word characters and namespace separators.
func scanWord(s string) int {
	n := 0
	for n < len(s) {
		switch {
		case isWordChar(s[n]):
			n++
		case s[n] == ':' && n+1 < len(s) && s[n+1] == ':' && n+2 < len(s) && isWordChar(s[n+2]):
			n += 2
		default:
			return n
		}
	}
	return n
}

// scanNumber measures the integer or floating point literal at the start
// of s.
func scanNumber(s string) int {
	if len(s) > 1 && s[0] == '0' {
		var digit func(byte) bool
		switch s[1] {
		case 'x', 'X':
			digit = func(c byte) bool { return isDigit(c) || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F' }
		case 'o', 'O':
			digit = func(c byte) bool { return c >= '0' && c <= '7' }
		case 'b', 'B':
			digit = func(c byte) bool { return c == '0' || c == '1' }
		}
		if digit != nil {
			n := 2
			for n < len(s) && digit(s[n]) {
				n++
			}
			if n == 2 {
				return 1
			}
			return n
		}
	}

	n := 0
	for n < len(s) && isDigit(s[n]) {
		n++
	}
	if n < len(s) && s[n] == '.' {
		n++
		for n < len(s) && isDigit(s[n]) {
			n++
		}
	}
	if n < len(s) && (s[n] == 'e' || s[n] == 'E') {
		m := n + 1
		if m < len(s) && (s[m] == '+' || s[m] == '-') {
			m++
		}
		if m < len(s) && isDigit(s[m]) {
			for m < len(s) && isDigit(s[m]) {
				m++
			}
			n = m
		}
	}
	return n
}

// isNumberWord reports whether a bareword spells a special floating point
// value.
func isNumberWord(w string) bool {
	switch strings.ToLower(w) {
	case "inf", "infinity", "nan":
		return true
	}
	return false
}

var booleanWords = []string{"true", "false", "yes", "no", "on", "off"}

// isBooleanWord reports whether w is a boolean literal or an unambiguous
// prefix of one.
func isBooleanWord(w string) bool {
	l := strings.ToLower(w)
	if l == "o" {
		return false
	}
	for _, b := range booleanWords {
		if strings.HasPrefix(b, l) {
			return true
		}
	}
	return false
}

// matchBrace returns the offset just past the brace that closes the one at
// start.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

// matchQuote returns the offset just past the quote that closes the one at
// start.
func matchQuote(s string, start int) (int, bool) {
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i + 1, true
		}
	}
	return 0, false
}

// matchBracket returns the offset just past the bracket that closes the one
// at start, skipping nested scripts, braces and quotes.
func matchBracket(s string, start int) (int, bool) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		case '{':
			end, ok := matchBrace(s, i)
			if !ok {
				return 0, false
			}
			i = end - 1
		case '"':
			end, ok := matchQuote(s, i)
			if !ok {
				return 0, false
			}
			i = end - 1
		}
	}
	return 0, false
}
