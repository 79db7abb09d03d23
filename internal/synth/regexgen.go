package synth

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/dbfiller/dbfiller/internal/rng"
)

// matchRegex produces a string satisfying pat well enough to pass the
// anchored match implemented by internal/eval's REGEXP_LIKE, for the common
// CHECK-clause patterns this engine targets (§6, "compatibility with real
// SQL is informal"). It is a hand-rolled generator: no regex-to-string
// library exists anywhere in the reference corpus.
func matchRegex(r *rng.Source, pat string) string {
	toks := tokenizeRegex(strings.TrimPrefix(strings.TrimSuffix(pat, "$"), "^"))
	var b strings.Builder
	for _, tk := range toks {
		n := 1
		switch {
		case tk.quant == '*':
			n = r.Intn(6)
		case tk.quant == '+':
			n = 1 + r.Intn(5)
		case tk.quant == '?':
			n = r.Intn(2)
		case tk.quant == '{':
			n = tk.repMin
			if tk.repMax > tk.repMin {
				n = tk.repMin + r.Intn(tk.repMax-tk.repMin+1)
			}
		}
		for i := 0; i < n; i++ {
			b.WriteByte(tk.pick(r))
		}
	}
	if b.Len() == 0 {
		return randomText(r, 8)
	}
	return b.String()
}

type regexToken struct {
	// literal is set for a plain character; class/negate describe a
	// bracket expression; dot means "any printable character".
	literal byte
	isClass bool
	isDot   bool
	class   string
	negate  bool
	quant   byte // 0, '*', '+', '?', '{'
	repMin  int
	repMax  int
}

func (t regexToken) pick(r *rng.Source) byte {
	switch {
	case t.isDot:
		return alphabet[r.Intn(len(alphabet))]
	case t.isClass:
		return pickFromClass(r, t.class, t.negate)
	default:
		return t.literal
	}
}

func pickFromClass(r *rng.Source, class string, negate bool) byte {
	pool := expandClass(class)
	if !negate {
		if len(pool) == 0 {
			return alphabet[r.Intn(len(alphabet))]
		}
		return pool[r.Intn(len(pool))]
	}
	excluded := make(map[byte]bool, len(pool))
	for _, c := range pool {
		excluded[c] = true
	}
	for {
		c := byte('!' + r.Intn('~'-'!'))
		if !excluded[c] && unicode.IsPrint(rune(c)) {
			return c
		}
	}
}

func expandClass(class string) []byte {
	var out []byte
	runes := []rune(class)
	for i := 0; i < len(runes); i++ {
		if i+2 < len(runes) && runes[i+1] == '-' {
			for c := runes[i]; c <= runes[i+2]; c++ {
				out = append(out, byte(c))
			}
			i += 2
			continue
		}
		out = append(out, byte(runes[i]))
	}
	return out
}

func indexRune(rs []rune, target rune, from int) int {
	for i := from; i < len(rs); i++ {
		if rs[i] == target {
			return i
		}
	}
	return -1
}

func parseRepeat(spec string) (min, max int) {
	parts := strings.SplitN(spec, ",", 2)
	min, _ = strconv.Atoi(strings.TrimSpace(parts[0]))
	max = min
	if len(parts) == 2 {
		if strings.TrimSpace(parts[1]) == "" {
			max = min + 5
		} else {
			max, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
		}
	}
	return min, max
}

func tokenizeRegex(pat string) []regexToken {
	var toks []regexToken
	rs := []rune(pat)
	for i := 0; i < len(rs); i++ {
		var tk regexToken
		switch rs[i] {
		case '.':
			tk.isDot = true
		case '[':
			j := i + 1
			negate := false
			if j < len(rs) && rs[j] == '^' {
				negate = true
				j++
			}
			start := j
			for j < len(rs) && rs[j] != ']' {
				j++
			}
			tk.isClass = true
			tk.negate = negate
			tk.class = string(rs[start:j])
			i = j
		case '\\':
			if i+1 < len(rs) {
				i++
				tk.literal = byte(rs[i])
			}
		default:
			tk.literal = byte(rs[i])
		}
		if i+1 < len(rs) {
			switch rs[i+1] {
			case '*', '+', '?':
				tk.quant = byte(rs[i+1])
				i++
			case '{':
				if end := indexRune(rs, '}', i+1); end > 0 {
					tk.quant = '{'
					tk.repMin, tk.repMax = parseRepeat(string(rs[i+2 : end]))
					i = end
				}
			}
		}
		toks = append(toks, tk)
	}
	return toks
}
