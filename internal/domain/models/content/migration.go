package content

import "time"

// MigrationState is the persisted position of one lesson in the legacy →
// structured migration.
type MigrationState string

const (
	MigrationPending     MigrationState = "pending"
	MigrationTransformed MigrationState = "transformed"
	MigrationVerified    MigrationState = "verified"
	MigrationFinalized   MigrationState = "finalized"
	MigrationFailed      MigrationState = "failed"
	MigrationRolledBack  MigrationState = "rolled_back"
)

// migrationTransitions lists the states reachable from each state.
// failed rows re-enter the pipeline at pending on the next run.
var migrationTransitions = map[MigrationState][]MigrationState{
	MigrationPending:     {MigrationTransformed, MigrationFailed},
	MigrationTransformed: {MigrationVerified, MigrationFailed, MigrationRolledBack},
	MigrationVerified:    {MigrationFinalized, MigrationFailed, MigrationRolledBack},
	MigrationFinalized:   {MigrationRolledBack},
	MigrationFailed:      {MigrationPending},
	MigrationRolledBack:  {MigrationPending},
}

// CanTransition reports whether a row in state s may move to next.
func (s MigrationState) CanTransition(next MigrationState) bool {
	for _, allowed := range migrationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s MigrationState) Valid() bool {
	_, ok := migrationTransitions[s]
	return ok
}

// MigrationRecord tracks one lesson through the migration.
type MigrationRecord struct {
	LessonID  string         `json:"lesson_id" db:"lesson_id"`
	State     MigrationState `json:"state" db:"state"`
	Attempts  int            `json:"attempts" db:"attempts"`
	LastError *string        `json:"last_error,omitempty" db:"last_error"`
	// Checksum is the extractor fingerprint of the converted document, recorded
	// at transform time and compared during verification.
	Checksum  *string   `json:"checksum,omitempty" db:"checksum"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// MigrationSummary is the count of rows per state.
type MigrationSummary map[MigrationState]int

// MigrationUpdate carries the optional fields written alongside a transition.
type MigrationUpdate struct {
	LastError    *string
	Checksum     *string
	CountAttempt bool
	ClearError   bool
}
