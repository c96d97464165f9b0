package analytics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnrobert/equidash/internal/credstore"
)

func TestClassify(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, IntentCold, th.Classify(0))
	assert.Equal(t, IntentCold, th.Classify(2))
	assert.Equal(t, IntentWarm, th.Classify(3))
	assert.Equal(t, IntentWarm, th.Classify(9))
	assert.Equal(t, IntentHot, th.Classify(10))
	assert.Equal(t, IntentHot, th.Classify(250))
}

func TestSummarize(t *testing.T) {
	recs := []credstore.Record{
		{Email: "a@x.com", Role: "admin", LoginCount: 12, LastLogin: "2024-01-01 10:00:00", ActiveSessionID: "s1"},
		{Email: "b@x.com", Role: "client", LoginCount: 3},
		{Email: "c@x.com", Role: "client", LoginCount: 0},
	}
	s := Summarize(recs, DefaultThresholds())

	assert.Equal(t, 3, s.UniqueUsers)
	assert.Equal(t, 15, s.TotalLogins)
	assert.Equal(t, 2, s.ActiveUsers)
	require.Len(t, s.Rows, 3)
	assert.Equal(t, Row{Email: "a@x.com", Role: "admin", LoginCount: 12, LastLogin: "2024-01-01 10:00:00", Intent: IntentHot, ActiveSessionID: "s1"}, s.Rows[0])
	assert.Equal(t, IntentWarm, s.Rows[1].Intent)
	assert.Equal(t, IntentCold, s.Rows[2].Intent)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, DefaultThresholds())
	assert.Zero(t, s.UniqueUsers)
	assert.NotNil(t, s.Rows)
}

func TestLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "users.csv")
	require.NoError(t, os.WriteFile(p, []byte(
		"email,password,role,is_active,login_count,last_login,active_session_id,session_last_seen\n"+
			"a@x.com,p,admin,TRUE,5,,,\n"), 0644))

	s, err := Load(credstore.NewStore(p), Thresholds{Hot: 5, Warm: 1})
	require.NoError(t, err)
	assert.Equal(t, 5, s.TotalLogins)
	assert.Equal(t, IntentHot, s.Rows[0].Intent)

	_, err = Load(credstore.NewStore(filepath.Join(t.TempDir(), "none.csv")), DefaultThresholds())
	assert.ErrorIs(t, err, credstore.ErrStoreMissing)
}
