// Package analytics builds the admin panel figures from the credential
// table: headline counts and a per-user engagement tier.
package analytics

import (
	"github.com/hnrobert/equidash/internal/credstore"
)

type Intent string

const (
	IntentHot  Intent = "HOT"
	IntentWarm Intent = "WARM"
	IntentCold Intent = "COLD"
)

// Thresholds are inclusive lower bounds on login_count.
type Thresholds struct {
	Hot  int `json:"hot" yaml:"hot"`
	Warm int `json:"warm" yaml:"warm"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{Hot: 10, Warm: 3}
}

func (t Thresholds) Classify(loginCount int) Intent {
	switch {
	case loginCount >= t.Hot:
		return IntentHot
	case loginCount >= t.Warm:
		return IntentWarm
	default:
		return IntentCold
	}
}

type Row struct {
	Email           string `json:"email"`
	Role            string `json:"role"`
	LoginCount      int    `json:"login_count"`
	LastLogin       string `json:"last_login"`
	Intent          Intent `json:"intent"`
	ActiveSessionID string `json:"active_session_id"`
}

type Summary struct {
	UniqueUsers int   `json:"unique_users"`
	TotalLogins int   `json:"total_logins"`
	ActiveUsers int   `json:"active_users"`
	Rows        []Row `json:"rows"`
}

// Summarize computes the panel for records, keeping their order.
func Summarize(records []credstore.Record, th Thresholds) Summary {
	s := Summary{Rows: make([]Row, 0, len(records))}
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, ok := seen[r.Email]; !ok {
			seen[r.Email] = struct{}{}
			s.UniqueUsers++
		}
		s.TotalLogins += r.LoginCount
		if r.LoginCount > 0 {
			s.ActiveUsers++
		}
		s.Rows = append(s.Rows, Row{
			Email:           r.Email,
			Role:            r.Role,
			LoginCount:      r.LoginCount,
			LastLogin:       r.LastLogin,
			Intent:          th.Classify(r.LoginCount),
			ActiveSessionID: r.ActiveSessionID,
		})
	}
	return s
}

// Load reads a consistent snapshot of the store and summarizes it. A
// concurrent login only delays the read.
func Load(store *credstore.Store, th Thresholds) (Summary, error) {
	t, err := store.Load()
	if err != nil {
		return Summary{}, err
	}
	return Summarize(t.Records(), th), nil
}
