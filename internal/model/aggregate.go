package model

// SessionTally counts flagged answers within one session. It backs the
// "<Label> in <n> answers" issue lines of the session report.
type SessionTally struct {
	DevTools         int
	PasteReported    int
	PasteHeuristic   int
	SuspiciousTyping int
	HighWPM          int
}

// SessionRollup carries one walked session: the original entry, the
// per-answer flags in answer order, and the session-local tally.
type SessionRollup struct {
	Entry *SessionEntry
	Flags []AnswerFlags
	Tally SessionTally
}

// StudentAggregate is the running per-student aggregate built during one
// analysis run. It is owned exclusively by the aggregator while walking
// the report; counters only ever increase within a run, and the whole
// structure is rebuilt from scratch on the next run.
type StudentAggregate struct {
	// Key is the canonical student key. HasKey is false for the
	// null-key bucket that collects records with no usable identity.
	Key    string
	HasKey bool

	// Identity sets. Membership matters, order does not; output joins
	// them sorted.
	Names         map[string]struct{}
	NormalizedIDs map[string]struct{}
	Emails        map[string]struct{}

	// Sessions in walk order.
	Sessions []SessionRollup

	// IPs preserves first-observed order; the first element is the
	// student's majority IP. ipSet is its membership set.
	IPs   []string
	ipSet map[string]struct{}

	UserAgents map[string]struct{}

	AnswersCount            int
	DevToolsAnswers         int
	PasteReportedAnswers    int
	SuspectedPasteAnswers   int
	SuspiciousTypingAnswers int
	TabSwitchesSum          int
	WindowBlurSum           int

	// MaxWPM is the maximum reported words-per-minute across all of the
	// student's answers.
	MaxWPM float64
}

// NewStudentAggregate creates an empty aggregate for the given canonical
// key. hasKey is false for the null-key bucket.
func NewStudentAggregate(key string, hasKey bool) *StudentAggregate {
	return &StudentAggregate{
		Key:           key,
		HasKey:        hasKey,
		Names:         make(map[string]struct{}),
		NormalizedIDs: make(map[string]struct{}),
		Emails:        make(map[string]struct{}),
		IPs:           make([]string, 0, 2),
		ipSet:         make(map[string]struct{}),
		UserAgents:    make(map[string]struct{}),
	}
}

// AddIP appends an IP to the ordered list if it has not been seen yet.
// Returns true when the IP was newly recorded.
func (a *StudentAggregate) AddIP(ip string) bool {
	if ip == "" {
		return false
	}
	if _, seen := a.ipSet[ip]; seen {
		return false
	}
	a.ipSet[ip] = struct{}{}
	a.IPs = append(a.IPs, ip)
	return true
}

// HasIP reports whether the student has used the given IP.
func (a *StudentAggregate) HasIP(ip string) bool {
	_, ok := a.ipSet[ip]
	return ok
}

// MajorityIP returns the first IP ever recorded for the student, the
// reference point for "IP differs" issue detection. Returns "" when the
// student has no recorded IP.
func (a *StudentAggregate) MajorityIP() string {
	if len(a.IPs) == 0 {
		return ""
	}
	return a.IPs[0]
}

// Aggregates holds every student aggregate of one run, keyed by canonical
// key, together with the first-seen key order. The explicit order keeps
// output deterministic regardless of map iteration.
type Aggregates struct {
	ByKey map[string]*StudentAggregate
	Keys  []string
}

// NewAggregates creates an empty aggregate set.
func NewAggregates() *Aggregates {
	return &Aggregates{ByKey: make(map[string]*StudentAggregate)}
}

// FetchOrCreate returns the aggregate for the given canonical key,
// creating and registering it on first use.
func (ag *Aggregates) FetchOrCreate(key string, hasKey bool) *StudentAggregate {
	if a, ok := ag.ByKey[key]; ok {
		return a
	}
	a := NewStudentAggregate(key, hasKey)
	ag.ByKey[key] = a
	ag.Keys = append(ag.Keys, key)
	return a
}

// IPIndex maps an IP address to the set of canonical student keys that
// used it. Built once during aggregation, read-only afterwards. An IP
// with more than one key is, by definition, shared.
type IPIndex map[string]map[string]struct{}

// Add registers a canonical key under an IP.
func (ix IPIndex) Add(ip, key string) {
	if ip == "" {
		return
	}
	set, ok := ix[ip]
	if !ok {
		set = make(map[string]struct{})
		ix[ip] = set
	}
	set[key] = struct{}{}
}

// StudentCount returns the number of distinct canonical keys under an IP.
func (ix IPIndex) StudentCount(ip string) int {
	return len(ix[ip])
}

// Shared reports whether the IP was used by more than one student.
func (ix IPIndex) Shared(ip string) bool {
	return len(ix[ip]) > 1
}

// Students returns the canonical keys under an IP.
func (ix IPIndex) Students(ip string) []string {
	keys := make([]string, 0, len(ix[ip]))
	for k := range ix[ip] {
		keys = append(keys, k)
	}
	return keys
}
