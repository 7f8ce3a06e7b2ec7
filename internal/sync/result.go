package sync

// ItemError locates a single failed item. At least one of LocalIssueID and
// RemoteNumber is set.
type ItemError struct {
	Message      string `json:"message"`
	LocalIssueID string `json:"localIssueId,omitempty"`
	RemoteNumber *int   `json:"remoteNumber,omitempty"`
}

// Result is the outcome of a sync run. A false Success does not mean nothing
// happened: the counts still report every item that went through.
type Result struct {
	Success bool        `json:"success"`
	Synced  int         `json:"synced"`
	Created int         `json:"created"`
	Updated int         `json:"updated"`
	Skipped int         `json:"skipped"`
	Errors  []ItemError `json:"errors"`
}

func newResult() *Result {
	return &Result{Success: true, Errors: []ItemError{}}
}

func (r *Result) recordSuccess(created bool) {
	r.Synced++
	if created {
		r.Created++
	} else {
		r.Updated++
	}
}

func (r *Result) recordError(err error, localID string, remoteNumber *int) {
	var number *int
	if remoteNumber != nil {
		n := *remoteNumber
		number = &n
	}
	r.Errors = append(r.Errors, ItemError{
		Message:      err.Error(),
		LocalIssueID: localID,
		RemoteNumber: number,
	})
	r.Success = false
}

// merge adds other's counts and errors into r.
func (r *Result) merge(other *Result) {
	r.Success = r.Success && other.Success
	r.Synced += other.Synced
	r.Created += other.Created
	r.Updated += other.Updated
	r.Skipped += other.Skipped
	r.Errors = append(r.Errors, other.Errors...)
}
