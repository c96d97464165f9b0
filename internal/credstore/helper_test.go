package credstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const header = "email,password,role,is_active,login_count,last_login,active_session_id,session_last_seen\n"

func writeStore(t *testing.T, content string) *Store {
	t.Helper()
	p := filepath.Join(t.TempDir(), "users.csv")
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return NewStore(p)
}

func readFile(t *testing.T, s *Store) string {
	t.Helper()
	b, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	return string(b)
}
