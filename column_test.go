package relhost

import "testing"

func TestColumnTypeString(t *testing.T) {
	cases := []struct {
		typ  ColumnType
		want string
	}{
		{Integer, "INTEGER"},
		{Text, "TEXT"},
		{Real, "REAL"},
		{Blob, "BLOB"},
	}
	for _, c := range cases {
		if got := c.typ.String(); got != c.want {
			t.Errorf("ColumnType(%d).String() = %q, want %q", c.typ, got, c.want)
		}
	}
}

func TestColumnSchemaFragment(t *testing.T) {
	c := column{name: "id", typ: Integer}
	if got, want := c.schemaFragment(), `id INTEGER`; got != want {
		t.Errorf("schemaFragment() = %q, want %q", got, want)
	}
}
