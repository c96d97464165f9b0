package credstore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Normalizes(t *testing.T) {
	s := writeStore(t, header+
		" A@X.com , p1 , Admin ,true,3,2024-01-01 09:00:00,old,2024-01-01 09:00:00\n"+
		"b@y.com,secret,CLIENT, false ,,,,\n"+
		"c@z.com,pw,client,TRUE,4.0,,,\n"+
		"d@z.com,pw,client,TRUE,oops,,,\n")

	tbl, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, 4, tbl.Len())

	a := tbl.Find("a@x.com")
	require.NotNil(t, a)
	assert.Equal(t, "a@x.com", a.Email)
	assert.Equal(t, "p1", a.Password)
	assert.Equal(t, "admin", a.Role)
	assert.Equal(t, ActiveTrue, a.IsActive)
	assert.Equal(t, 3, a.LoginCount)
	assert.True(t, a.Admin())

	b := tbl.Find("  B@Y.COM")
	require.NotNil(t, b)
	assert.Equal(t, "client", b.Role)
	assert.Equal(t, ActiveFalse, b.IsActive)
	assert.False(t, b.Active())
	assert.Equal(t, 0, b.LoginCount)

	assert.Equal(t, 4, tbl.Find("c@z.com").LoginCount)
	assert.Equal(t, 0, tbl.Find("d@z.com").LoginCount)

	var order []string
	for _, r := range tbl.Records() {
		order = append(order, r.Email)
	}
	assert.Equal(t, []string{"a@x.com", "b@y.com", "c@z.com", "d@z.com"}, order)
}

func TestLoad_Missing(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "users.csv"))
	_, err := s.Load()
	require.ErrorIs(t, err, ErrStoreMissing)

	var me *StoreMissingError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, s.Path(), me.Path)
}

func TestLoad_MissingDirectory(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "gone", "users.csv"))
	_, err := s.Load()
	assert.ErrorIs(t, err, ErrStoreMissing)

	err = s.Update(func(*Table) error { return nil })
	assert.ErrorIs(t, err, ErrStoreMissing)
}

func TestLoad_SchemaErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{
			name:    "missing column",
			content: "email,password,role,is_active,login_count,last_login,active_session_id\na,b,c,TRUE,0,,\n",
			field:   ColSessionLastSeen,
		},
		{
			name:    "first missing column is named",
			content: "email,role\n",
			field:   ColPassword,
		},
		{
			name:    "empty file",
			content: "",
			field:   ColEmail,
		},
		{
			name:    "duplicate email after normalization",
			content: header + "a@x.com,p,admin,TRUE,0,,,\n A@X.COM ,q,client,TRUE,0,,,\n",
			field:   ColEmail,
		},
		{
			name:    "empty email",
			content: header + " ,p,admin,TRUE,0,,,\n",
			field:   ColEmail,
		},
		{
			name:    "bare quote in unquoted field",
			content: header + "a@x.com,p\"1,admin,TRUE,0,,,\n",
			field:   "",
		},
		{
			name:    "unterminated quote",
			content: header + "a@x.com,\"p1,admin,TRUE,0,,,\n",
			field:   "",
		},
		{
			name:    "malformed header",
			content: "email,pass\"word\n",
			field:   "",
		},
		{
			name:    "short row",
			content: header + "a@x.com,p,admin\n",
			field:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := writeStore(t, tt.content)
			_, err := s.Load()
			require.ErrorIs(t, err, ErrSchema)

			var se *SchemaError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.field, se.Field)
		})
	}
}

func TestLoad_SyntaxErrorReportsLine(t *testing.T) {
	s := writeStore(t, header+"a@x.com,p1,admin,TRUE,0,,,\nb@x.com,p\"2,client,TRUE,0,,,\n")
	_, err := s.Load()
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 3, se.Line)
	assert.Contains(t, se.Reason, "bare")
}

func TestLoad_DuplicateReportsLine(t *testing.T) {
	s := writeStore(t, header+"a@x.com,p,admin,TRUE,0,,,\nb@x.com,p,admin,TRUE,0,,,\nA@x.com,q,client,TRUE,0,,,\n")
	_, err := s.Load()
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 4, se.Line)
	assert.Contains(t, se.Error(), "duplicate email")
}

func TestSave_RoundTripIsIdempotent(t *testing.T) {
	s := writeStore(t, header+
		" A@X.com , p1 , Admin ,true,3.0,2024-01-01 09:00:00,old,2024-01-01 09:00:00\n"+
		"b@y.com,\"pa,ss\",client,FALSE,,,,\n")

	tbl, err := s.Load()
	require.NoError(t, err)
	require.NoError(t, s.Save(tbl))
	first := readFile(t, s)

	tbl2, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, tbl.Records(), tbl2.Records())
	require.NoError(t, s.Save(tbl2))
	assert.Equal(t, first, readFile(t, s))

	assert.Equal(t, header+
		"a@x.com,p1,admin,TRUE,3,2024-01-01 09:00:00,old,2024-01-01 09:00:00\n"+
		"b@y.com,\"pa,ss\",client,FALSE,0,,,\n", first)
}

func TestSave_PreservesExtraColumnsAndOrder(t *testing.T) {
	content := "name,email,password,role,is_active,login_count,last_login,active_session_id,session_last_seen,team\n" +
		"Alice,a@x.com,p,admin,TRUE,1,,,,ops\n"
	s := writeStore(t, content)

	tbl, err := s.Load()
	require.NoError(t, err)
	require.NoError(t, s.Save(tbl))
	assert.Equal(t, content, readFile(t, s))
}

func TestSave_PreservesFileMode(t *testing.T) {
	s := writeStore(t, header+"a@x.com,p,admin,TRUE,0,,,\n")
	require.NoError(t, os.Chmod(s.Path(), 0600))

	tbl, err := s.Load()
	require.NoError(t, err)
	require.NoError(t, s.Save(tbl))

	st, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), st.Mode().Perm())
}

func TestUpdate_ErrorWritesNothing(t *testing.T) {
	content := header + "a@x.com,p,admin,TRUE,0,,,\n"
	s := writeStore(t, content)
	stop := errors.New("stop")

	err := s.Update(func(tbl *Table) error {
		tbl.Find("a@x.com").LoginCount = 99
		return stop
	})
	require.ErrorIs(t, err, stop)
	assert.Equal(t, content, readFile(t, s))
}

func TestUpdate_SchemaErrorPropagates(t *testing.T) {
	s := writeStore(t, "email\n")
	called := false
	err := s.Update(func(*Table) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, ErrSchema)
	assert.False(t, called)
}

func TestUpdate_ConcurrentIncrementsAreNotLost(t *testing.T) {
	s := writeStore(t, header+"a@x.com,p,admin,TRUE,0,,,\n")

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Update(func(tbl *Table) error {
				tbl.Find("a@x.com").LoginCount++
				return nil
			}))
		}()
	}
	// Readers running alongside writers always see a complete table.
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tbl, err := s.Load()
			if assert.NoError(t, err) {
				assert.Equal(t, 1, tbl.Len())
			}
		}()
	}
	wg.Wait()

	tbl, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, n, tbl.Find("a@x.com").LoginCount)
}

func TestParseLoginCount(t *testing.T) {
	cases := map[string]int{
		"":      0,
		" 7 ":   7,
		"-2":    0,
		"4.0":   4,
		"4.9":   4,
		"nan":   0,
		"inf":   0,
		"abc":   0,
		"1e300": 0,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLoginCount(in), "input %q", in)
	}
}

func TestDecode_StripsBOM(t *testing.T) {
	tbl, err := Decode(strings.NewReader("\ufeff" + header + "a@x.com,p,admin,TRUE,0,,,\n"))
	require.NoError(t, err)
	assert.Equal(t, RequiredColumns, tbl.Header())
}
