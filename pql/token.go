package pql

// TokenType classifies a lexed token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenError

	// Keywords
	TokenSelect
	TokenFrom
	TokenWhere
	TokenGroup
	TokenBy
	TokenOrder
	TokenAsc
	TokenDesc
	TokenLimit
	TokenAs
	TokenAnd
	TokenOr
	TokenNot
	TokenMatches
	TokenStarts
	TokenWith
	TokenSum
	TokenAvg
	TokenCount
	TokenYear
	TokenMonth
	TokenDay
	TokenHour
	TokenMinute
	TokenSecond
	TokenEvent

	// Literals and identifiers
	TokenIdent
	TokenString
	TokenNumber

	// Operators and punctuation
	TokenEqual
	TokenNotEqual
	TokenLess
	TokenGreater
	TokenStar
	TokenComma
	TokenDot
	TokenLeftParen
	TokenRightParen
	TokenLeftBracket
	TokenRightBracket
	TokenSemicolon
)

// Token is a single lexed unit of query text.
type Token struct {
	Type  TokenType
	Value string
}
