package tabular_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsift/internal/models"
	"docsift/pkg/tabular"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		value string
		want  models.FieldKind
	}{
		{"42", models.KindInteger},
		{"-7", models.KindInteger},
		{"3.14", models.KindFloat},
		{"-0.5", models.KindFloat},
		{"true", models.KindBoolean},
		{"FALSE", models.KindBoolean},
		{"2023-05-01T10:00:00Z", models.KindTimestamp},
		{"updated 2023-05-01T10:00:00.123Z by admin", models.KindTimestamp},
		{"hello", models.KindText},
		{"", models.KindText},
		{"1.2.3", models.KindText},
		{"42 apples", models.KindText},
		{"true story", models.KindText},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, tabular.Classify(tt.value))
		})
	}
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, int64(42), tabular.Coerce("42"))
	assert.Equal(t, int64(-7), tabular.Coerce("-7"))
	assert.Equal(t, 3.14, tabular.Coerce("3.14"))
	assert.Equal(t, true, tabular.Coerce("true"))
	assert.Equal(t, false, tabular.Coerce("False"))
	assert.Equal(t, "hello", tabular.Coerce("hello"))

	ts, ok := tabular.Coerce("2023-05-01T10:00:00Z").(time.Time)
	require.True(t, ok)
	assert.Equal(t, 2023, ts.Year())
	assert.Equal(t, time.May, ts.Month())
}

func TestNormalizeCSV(t *testing.T) {
	payload := []byte("name,age,score,active,joined\n" +
		"alice,30,91.5,true,2021-06-01T08:30:00Z\n" +
		"bob,25,88.0,false,2022-01-15T12:00:00Z\n")

	normalized, err := tabular.NormalizeCSV(payload)
	require.NoError(t, err)
	require.Len(t, normalized.Rows, 2)

	first := normalized.Rows[0]
	assert.Equal(t, int64(0), first[tabular.RowIDField])
	assert.Equal(t, "alice", first["name"])
	assert.Equal(t, int64(30), first["age"])
	assert.Equal(t, 91.5, first["score"])
	assert.Equal(t, true, first["active"])
	_, isTime := first["joined"].(time.Time)
	assert.True(t, isTime)

	second := normalized.Rows[1]
	assert.Equal(t, int64(1), second[tabular.RowIDField])
	assert.Equal(t, "bob", second["name"])

	kinds := map[string]models.FieldKind{}
	for _, f := range normalized.Schema.Fields {
		kinds[f.Name] = f.Kind
	}
	assert.Equal(t, models.KindText, kinds["name"])
	assert.Equal(t, models.KindInteger, kinds["age"])
	assert.Equal(t, models.KindFloat, kinds["score"])
	assert.Equal(t, models.KindBoolean, kinds["active"])
	assert.Equal(t, models.KindTimestamp, kinds["joined"])
	assert.Equal(t, models.KindInteger, kinds[tabular.RowIDField])
}

func TestNormalizeCSVSchemaFrozenFromFirstRow(t *testing.T) {
	// The second row disagrees with the first row's types; the schema keeps
	// the first row's inference and the value is stored as coerced.
	payload := []byte("code\n123\nabc\n")

	normalized, err := tabular.NormalizeCSV(payload)
	require.NoError(t, err)

	var kind models.FieldKind
	for _, f := range normalized.Schema.Fields {
		if f.Name == "code" {
			kind = f.Kind
		}
	}
	assert.Equal(t, models.KindInteger, kind)
	assert.Equal(t, int64(123), normalized.Rows[0]["code"])
	assert.Equal(t, "abc", normalized.Rows[1]["code"])
}

func TestNormalizeCSVToleratesRaggedRows(t *testing.T) {
	payload := []byte("a,b,c\n1,2\n4,5,6,7\n")

	normalized, err := tabular.NormalizeCSV(payload)
	require.NoError(t, err)
	require.Len(t, normalized.Rows, 2)

	short := normalized.Rows[0]
	assert.Equal(t, int64(1), short["a"])
	assert.Equal(t, int64(2), short["b"])
	_, present := short["c"]
	assert.False(t, present, "missing column should stay absent, not fail")

	long := normalized.Rows[1]
	assert.Equal(t, int64(6), long["c"])
}

func TestNormalizeCSVRejectsDuplicateHeader(t *testing.T) {
	_, err := tabular.NormalizeCSV([]byte("id,name,id\n1,x,2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate column")
}

func TestNormalizeCSVRejectsEmptyPayload(t *testing.T) {
	_, err := tabular.NormalizeCSV(nil)
	require.Error(t, err)
}

func TestNormalizeCSVHeaderOnly(t *testing.T) {
	normalized, err := tabular.NormalizeCSV([]byte("a,b\n"))
	require.NoError(t, err)
	assert.Empty(t, normalized.Rows)

	// No data row to sample: every column defaults to text.
	for _, f := range normalized.Schema.Fields {
		if f.Name == tabular.RowIDField {
			continue
		}
		assert.Equal(t, models.KindText, f.Kind)
	}
}
