package credstore

// Column names, in canonical order.
const (
	ColEmail           = "email"
	ColPassword        = "password"
	ColRole            = "role"
	ColIsActive        = "is_active"
	ColLoginCount      = "login_count"
	ColLastLogin       = "last_login"
	ColActiveSessionID = "active_session_id"
	ColSessionLastSeen = "session_last_seen"
)

// RequiredColumns lists every column the file must carry.
var RequiredColumns = []string{
	ColEmail,
	ColPassword,
	ColRole,
	ColIsActive,
	ColLoginCount,
	ColLastLogin,
	ColActiveSessionID,
	ColSessionLastSeen,
}

const (
	RoleAdmin = "admin"

	ActiveTrue  = "TRUE"
	ActiveFalse = "FALSE"

	// TimeLayout is used for last_login and session_last_seen.
	TimeLayout = "2006-01-02 15:04:05"
)

type Record struct {
	Email           string
	Password        string
	Role            string
	IsActive        string
	LoginCount      int
	LastLogin       string
	ActiveSessionID string
	SessionLastSeen string

	// values of columns outside RequiredColumns, aligned with Table.extra
	extra []string
}

func (r *Record) Active() bool { return r.IsActive == ActiveTrue }

func (r *Record) Admin() bool { return r.Role == RoleAdmin }

// Table is the in-memory credential table. Row order is the file order.
type Table struct {
	header  []string
	extra   []string
	records []*Record
	byEmail map[string]*Record
}

// Find returns the record for email, normalized first, or nil.
func (t *Table) Find(email string) *Record {
	return t.byEmail[NormalizeEmail(email)]
}

// Records returns a copy of all records in file order.
func (t *Table) Records() []Record {
	out := make([]Record, 0, len(t.records))
	for _, r := range t.records {
		c := *r
		c.extra = append([]string(nil), r.extra...)
		out = append(out, c)
	}
	return out
}

func (t *Table) Len() int { return len(t.records) }

// Header returns the column order the table is written with.
func (t *Table) Header() []string {
	return append([]string(nil), t.header...)
}
