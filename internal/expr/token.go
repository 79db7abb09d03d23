package expr

// Token is a lexical token kind for the CHECK sublanguage grammar of §4.A.
// Modeled on the teacher corpus's token-table style (a flat iota block with
// a name table), scaled down to what the restricted grammar needs.
type Token int

const (
	tEOF Token = iota
	tIdent
	tNumber
	tString

	tPlus
	tMinus
	tStar
	tSlash
	tEq
	tNeq
	tLt
	tGt
	tLte
	tGte
	tLParen
	tRParen
	tComma

	tAnd
	tOr
	tNot
	tBetween
	tIn
	tLike
	tIs
	tNull
	tTrue
	tFalse
	tExtract
	tFrom
	tDate
)

var keywords = map[string]Token{
	"and":     tAnd,
	"or":      tOr,
	"not":     tNot,
	"between": tBetween,
	"in":      tIn,
	"like":    tLike,
	"is":      tIs,
	"null":    tNull,
	"true":    tTrue,
	"false":   tFalse,
	"extract": tExtract,
	"from":    tFrom,
	"date":    tDate,
}
