package rowgen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbfiller/dbfiller/internal/keys"
	"github.com/dbfiller/dbfiller/internal/rng"
	"github.com/dbfiller/dbfiller/internal/schema"
	"github.com/dbfiller/dbfiller/internal/synth"
)

func studentsCourses() *schema.Schema {
	student := &schema.Table{
		Name: "students",
		Columns: []schema.Column{
			{Name: "id", SQLType: "SERIAL"},
			{Name: "name", SQLType: "VARCHAR(30)", Constraints: []schema.ColumnConstraint{{Kind: schema.NotNull}}},
			{Name: "email", SQLType: "VARCHAR(100)", Constraints: []schema.ColumnConstraint{{Kind: schema.NotNull}}},
		},
		PrimaryKey:        []string{"id"},
		UniqueConstraints: [][]string{{"email"}},
	}
	enroll := &schema.Table{
		Name: "enrollments",
		Columns: []schema.Column{
			{Name: "student_id", SQLType: "INT"},
			{Name: "score", SQLType: "INT", Constraints: []schema.ColumnConstraint{
				{Kind: schema.Check, Value: "score >= 0 AND score <= 100"},
			}},
		},
		PrimaryKey:       []string{"student_id"},
		CheckConstraints: []string{"score >= 0 AND score <= 100"},
		ForeignKeys: []schema.ForeignKey{
			{Name: "fk_student", Columns: []string{"student_id"}, RefTable: "students", RefColumns: []string{"id"}},
		},
	}
	return schema.New([]*schema.Table{student, enroll})
}

func employeesSelfFK() *schema.Schema {
	employee := &schema.Table{
		Name: "employees",
		Columns: []schema.Column{
			{Name: "id", SQLType: "SERIAL"},
			{Name: "manager_id", SQLType: "INT"},
		},
		PrimaryKey: []string{"id"},
		ForeignKeys: []schema.ForeignKey{
			{Name: "fk_manager", Columns: []string{"manager_id"}, RefTable: "employees", RefColumns: []string{"id"}},
		},
	}
	return schema.New([]*schema.Table{employee})
}

func newTestEngine(opts Options) *Engine {
	sch := studentsCourses()
	s := synth.New(synth.Options{}, nil)
	mgr := keys.NewManager()
	master := rng.NewMaster(42)
	return New(sch, s, mgr, master, nil, opts)
}

func TestRunGeneratesRowsInDependencyOrder(t *testing.T) {
	e := newTestEngine(Options{NumRows: 5})
	ds, err := e.Run()
	require.NoError(t, err)
	require.Len(t, ds.Tables["students"], 5)
	require.Len(t, ds.Tables["enrollments"], 5)
}

func TestRunAssignsValidForeignKeys(t *testing.T) {
	e := newTestEngine(Options{NumRows: 6})
	ds, err := e.Run()
	require.NoError(t, err)

	studentIDs := map[int64]bool{}
	for _, row := range ds.Tables["students"] {
		studentIDs[row["id"].I] = true
	}
	for _, row := range ds.Tables["enrollments"] {
		require.True(t, studentIDs[row["student_id"].I], "enrollment references unknown student")
	}
}

func TestRunEnforcesNotNullAndCheck(t *testing.T) {
	e := newTestEngine(Options{NumRows: 10})
	ds, err := e.Run()
	require.NoError(t, err)

	for _, row := range ds.Tables["students"] {
		require.False(t, row["name"].IsNull())
		require.False(t, row["email"].IsNull())
	}
	for _, row := range ds.Tables["enrollments"] {
		require.GreaterOrEqual(t, row["score"].I, int64(0))
		require.LessOrEqual(t, row["score"].I, int64(100))
	}
}

func TestRunEnforcesUniqueEmails(t *testing.T) {
	e := newTestEngine(Options{NumRows: 15})
	ds, err := e.Run()
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, row := range ds.Tables["students"] {
		email := row["email"].S
		require.False(t, seen[email], "duplicate email: %s", email)
		seen[email] = true
	}
}

func TestRunAssignsSelfReferencingForeignKeys(t *testing.T) {
	sch := employeesSelfFK()
	s := synth.New(synth.Options{}, nil)
	mgr := keys.NewManager()
	master := rng.NewMaster(7)
	e := New(sch, s, mgr, master, nil, Options{NumRows: 12})

	ds, err := e.Run()
	require.NoError(t, err)
	require.Len(t, ds.Tables["employees"], 12)

	ids := map[int64]bool{}
	for _, row := range ds.Tables["employees"] {
		ids[row["id"].I] = true
	}
	for _, row := range ds.Tables["employees"] {
		mgrID := row["manager_id"]
		require.False(t, mgrID.IsNull(), "manager_id left unassigned")
		require.True(t, ids[mgrID.I], "manager_id %d does not reference a real employee id", mgrID.I)
	}
}

func TestRunWithRepairDropsCascadingOrphans(t *testing.T) {
	e := newTestEngine(Options{NumRows: 8, RunRepair: true})
	ds, err := e.Run()
	require.NoError(t, err)
	require.NotEmpty(t, ds.Tables["students"])

	studentIDs := map[int64]bool{}
	for _, row := range ds.Tables["students"] {
		studentIDs[row["id"].I] = true
	}
	for _, row := range ds.Tables["enrollments"] {
		require.True(t, studentIDs[row["student_id"].I], "enrollment survived repair without its student")
	}
}
