package synth

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dbfiller/dbfiller/internal/rng"
	"github.com/dbfiller/dbfiller/internal/value"
)

// NamedGenerator produces a value for one column given the RNG and the
// row filled so far, for cross-column consistency (§4.D item 2,
// "custom generator ... called with the current row").
type NamedGenerator func(r *rng.Source, row map[string]value.Value) value.Value

var maleFirstNames = []string{"James", "John", "Robert", "Michael", "William", "David", "Richard", "Joseph", "Thomas", "Charles"}
var femaleFirstNames = []string{"Mary", "Patricia", "Jennifer", "Linda", "Elizabeth", "Barbara", "Susan", "Jessica", "Sarah", "Karen"}
var lastNames = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez"}
var emailDomains = []string{"example.com", "mail.com", "test.org", "sample.net"}

// NamedGenerators is the registry consulted in §4.D resolution-order item 2
// as "a named atomic generator key (e.g. first_name)". These are the
// hand-rolled replacement for the source's Faker dependency (DESIGN.md
// justifies the absence of a library: the corpus carries no Faker
// equivalent).
var NamedGenerators = map[string]NamedGenerator{
	"first_name": genFirstName,
	"last_name":  genLastName,
	"full_name":  genFullName,
	"email":      genEmail,
	"phone":      genPhone,
	"isbn":       genISBN,
	"uuid":       genUUID,
}

func isFemale(row map[string]value.Value) bool {
	sex, ok := row["sex"]
	if !ok {
		sex, ok = row["gender"]
	}
	if !ok || sex.Kind != value.Text {
		return false
	}
	s := strings.ToUpper(sex.S)
	return s == "F" || s == "FEMALE"
}

func genFirstName(r *rng.Source, row map[string]value.Value) value.Value {
	pool := maleFirstNames
	if isFemale(row) {
		pool = femaleFirstNames
	}
	return value.NewText(pool[r.Choice(len(pool))])
}

func genLastName(r *rng.Source, row map[string]value.Value) value.Value {
	return value.NewText(lastNames[r.Choice(len(lastNames))])
}

func genFullName(r *rng.Source, row map[string]value.Value) value.Value {
	first := genFirstName(r, row)
	last := genLastName(r, row)
	return value.NewText(first.S + " " + last.S)
}

// genEmail composes an address from first_name/last_name already present in
// the row when available, falling back to freshly generated names, mirroring
// the original generator's cross-column composition.
func genEmail(r *rng.Source, row map[string]value.Value) value.Value {
	first := lookupOrGenerate(row, "first_name", r, genFirstName)
	last := lookupOrGenerate(row, "last_name", r, genLastName)
	domain := emailDomains[r.Choice(len(emailDomains))]
	local := strings.ToLower(first) + "." + strings.ToLower(last)
	return value.NewText(fmt.Sprintf("%s@%s", local, domain))
}

func lookupOrGenerate(row map[string]value.Value, col string, r *rng.Source, gen NamedGenerator) string {
	if v, ok := row[col]; ok && v.Kind == value.Text {
		return v.S
	}
	return gen(r, row).S
}

func genPhone(r *rng.Source, _ map[string]value.Value) value.Value {
	digits := make([]byte, 10)
	for i := range digits {
		digits[i] = byte('0' + r.Intn(10))
	}
	return value.NewText(fmt.Sprintf("%s-%s-%s", digits[0:3], digits[3:6], digits[6:10]))
}

func genISBN(r *rng.Source, _ map[string]value.Value) value.Value {
	var b strings.Builder
	b.WriteString("978")
	for i := 0; i < 10; i++ {
		b.WriteByte(byte('0' + r.Intn(10)))
	}
	return value.NewText(b.String())
}

func genUUID(_ *rng.Source, _ map[string]value.Value) value.Value {
	return value.NewUUID(uuid.New())
}
