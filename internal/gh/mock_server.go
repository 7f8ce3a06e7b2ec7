package gh

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/go-github/v57/github"
)

type mockFailure struct {
	status int
	body   string
}

// MockServer provides a fake GitHub API for testing
type MockServer struct {
	*httptest.Server

	mu           sync.RWMutex
	owner        string
	repo         string
	issues       map[int]*github.Issue
	comments     map[int][]*github.IssueComment
	nextID       int64
	perPage      int
	token        string
	nextError    *mockFailure
	updateErrors map[int]mockFailure
	createErrors map[string]mockFailure
	mutations    int
	listCalls    int
	rateLimit    RateLimit
}

// NewMockServer creates a mock GitHub API server serving a single repository.
// Requests for any other repository get a 404.
func NewMockServer(owner, repo string) *MockServer {
	m := &MockServer{
		owner:        owner,
		repo:         repo,
		issues:       make(map[int]*github.Issue),
		comments:     make(map[int][]*github.IssueComment),
		nextID:       1000,
		updateErrors: make(map[int]mockFailure),
		createErrors: make(map[string]mockFailure),
		rateLimit:    RateLimit{Limit: 5000, Remaining: 4999, Reset: time.Now().Add(time.Hour).Truncate(time.Second)},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/rate_limit", m.handleRateLimit)
	mux.HandleFunc("/repos/", m.route)

	m.Server = httptest.NewServer(mux)
	return m
}

// Client returns a client bound to the mock repository.
func (m *MockServer) Client(token string) *Client {
	c, err := NewWithBaseURL(token, m.URL, m.owner, m.repo)
	if err != nil {
		panic(err)
	}
	return c
}

func (m *MockServer) route(w http.ResponseWriter, r *http.Request) {
	if !m.authorized(r) {
		writeError(w, http.StatusUnauthorized, "Bad credentials")
		return
	}
	if f := m.takeNextError(); f != nil {
		writeRaw(w, f.status, f.body)
		return
	}

	// /repos/{owner}/{repo}[/issues[/{number}[/comments]]]
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/repos/"), "/"), "/")
	if len(parts) < 2 || parts[0] != m.owner || parts[1] != m.repo {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	switch {
	case len(parts) == 2 && r.Method == http.MethodGet:
		m.handleGetRepository(w)
	case len(parts) == 3 && parts[2] == "issues":
		switch r.Method {
		case http.MethodGet:
			m.handleListIssues(w, r)
		case http.MethodPost:
			m.handleCreateIssue(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		}
	case len(parts) >= 4 && parts[2] == "issues":
		number, err := strconv.Atoi(parts[3])
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid issue number")
			return
		}
		switch {
		case len(parts) == 4 && r.Method == http.MethodPatch:
			m.handleUpdateIssue(w, r, number)
		case len(parts) == 5 && parts[4] == "comments" && r.Method == http.MethodGet:
			m.handleListComments(w, r, number)
		default:
			writeError(w, http.StatusNotFound, "Not Found")
		}
	default:
		writeError(w, http.StatusNotFound, "Not Found")
	}
}

// RequireToken makes every repository request without this bearer token fail with 401.
func (m *MockServer) RequireToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

func (m *MockServer) authorized(r *http.Request) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token == "" || r.Header.Get("Authorization") == "Bearer "+m.token
}

// AddIssue adds an issue to the mock server. Missing ids and URLs are filled in.
func (m *MockServer) AddIssue(issue *github.Issue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fillIssue(issue)
	m.issues[issue.GetNumber()] = issue
}

// AddComment appends a comment to an issue. A missing id is assigned.
func (m *MockServer) AddComment(number int, comment *github.IssueComment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if comment.ID == nil {
		m.nextID++
		comment.ID = github.Int64(m.nextID)
	}
	m.comments[number] = append(m.comments[number], comment)
}

// GetIssue retrieves an issue (for test assertions)
func (m *MockServer) GetIssue(number int) *github.Issue {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.issues[number]
}

// Issues returns every stored issue ordered by number.
func (m *MockServer) Issues() []*github.Issue {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedIssues()
}

// SetIssuesPerPage forces pagination of list responses.
func (m *MockServer) SetIssuesPerPage(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.perPage = n
}

// SetNextError makes the next repository request fail with the given status and raw body.
func (m *MockServer) SetNextError(status int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextError = &mockFailure{status: status, body: body}
}

// FailUpdates makes every PATCH of the issue fail until cleared with status 0.
func (m *MockServer) FailUpdates(number, status int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if status == 0 {
		delete(m.updateErrors, number)
		return
	}
	m.updateErrors[number] = mockFailure{status: status, body: errorBody(message)}
}

// FailCreates makes every POST with the given title fail.
func (m *MockServer) FailCreates(title string, status int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createErrors[title] = mockFailure{status: status, body: errorBody(message)}
}

// SetRateLimit sets the quota reported by /rate_limit.
func (m *MockServer) SetRateLimit(rl RateLimit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rateLimit = rl
}

// Mutations returns the number of create and update requests received.
func (m *MockServer) Mutations() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mutations
}

// ListCalls returns the number of issue list pages served.
func (m *MockServer) ListCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listCalls
}

// Reset clears all issues, comments and injected failures.
func (m *MockServer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issues = make(map[int]*github.Issue)
	m.comments = make(map[int][]*github.IssueComment)
	m.updateErrors = make(map[int]mockFailure)
	m.createErrors = make(map[string]mockFailure)
	m.nextError = nil
	m.mutations = 0
	m.listCalls = 0
}

func (m *MockServer) takeNextError() *mockFailure {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := m.nextError
	m.nextError = nil
	return f
}

func (m *MockServer) apiURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/%s%s", m.URL, m.owner, m.repo, path)
}

func (m *MockServer) htmlURL(path string) string {
	return fmt.Sprintf("https://github.com/%s/%s%s", m.owner, m.repo, path)
}

// fillIssue must be called with the lock held.
func (m *MockServer) fillIssue(issue *github.Issue) {
	if issue.ID == nil {
		m.nextID++
		issue.ID = github.Int64(m.nextID)
	}
	if issue.NodeID == nil {
		issue.NodeID = github.String(fmt.Sprintf("I_%d", issue.GetID()))
	}
	if issue.State == nil {
		issue.State = github.String("open")
	}
	path := fmt.Sprintf("/issues/%d", issue.GetNumber())
	if issue.URL == nil {
		issue.URL = github.String(m.apiURL(path))
	}
	if issue.HTMLURL == nil {
		issue.HTMLURL = github.String(m.htmlURL(path))
	}
	now := github.Timestamp{Time: time.Now().UTC().Truncate(time.Second)}
	if issue.CreatedAt == nil {
		issue.CreatedAt = &now
	}
	if issue.UpdatedAt == nil {
		issue.UpdatedAt = &now
	}
}

// sortedIssues must be called with the lock held.
func (m *MockServer) sortedIssues() []*github.Issue {
	issues := make([]*github.Issue, 0, len(m.issues))
	for _, issue := range m.issues {
		issues = append(issues, issue)
	}
	sort.Slice(issues, func(i, j int) bool { return issues[i].GetNumber() < issues[j].GetNumber() })
	return issues
}

func (m *MockServer) handleGetRepository(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, &github.Repository{
		ID:       github.Int64(1),
		Name:     github.String(m.repo),
		FullName: github.String(m.owner + "/" + m.repo),
		Owner:    &github.User{Login: github.String(m.owner)},
		HTMLURL:  github.String(m.htmlURL("")),
	})
}

func (m *MockServer) handleRateLimit(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	rl := m.rateLimit
	m.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"resources": map[string]interface{}{
			"core": map[string]interface{}{
				"limit":     rl.Limit,
				"remaining": rl.Remaining,
				"reset":     rl.Reset.Unix(),
			},
		},
	})
}

func (m *MockServer) handleListIssues(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.listCalls++
	state := r.URL.Query().Get("state")
	var matched []*github.Issue
	for _, issue := range m.sortedIssues() {
		switch state {
		case "all":
		case "closed":
			if issue.GetState() != "closed" {
				continue
			}
		default:
			if issue.GetState() != "open" {
				continue
			}
		}
		matched = append(matched, issue)
	}
	perPage := m.perPage
	m.mu.Unlock()

	page, link := paginate(r, len(matched), perPage)
	start, end := page.bounds(len(matched))
	if link != "" {
		w.Header().Set("Link", link)
	}
	writeJSON(w, http.StatusOK, matched[start:end])
}

func (m *MockServer) handleCreateIssue(w http.ResponseWriter, r *http.Request) {
	var req github.IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Problems parsing JSON")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.mutations++

	if f, ok := m.createErrors[req.GetTitle()]; ok {
		writeRaw(w, f.status, f.body)
		return
	}
	if req.GetTitle() == "" {
		writeRaw(w, http.StatusUnprocessableEntity, errorBody("Validation Failed"))
		return
	}

	number := 1
	for n := range m.issues {
		if n >= number {
			number = n + 1
		}
	}
	issue := &github.Issue{
		Number: github.Int(number),
		Title:  req.Title,
		Body:   req.Body,
		User:   &github.User{ID: github.Int64(1), Login: github.String("ghsync-bot")},
	}
	m.applyRequest(issue, &req)
	m.fillIssue(issue)
	m.issues[number] = issue

	writeJSON(w, http.StatusCreated, issue)
}

func (m *MockServer) handleUpdateIssue(w http.ResponseWriter, r *http.Request, number int) {
	var req github.IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Problems parsing JSON")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.mutations++

	if f, ok := m.updateErrors[number]; ok {
		writeRaw(w, f.status, f.body)
		return
	}
	issue, ok := m.issues[number]
	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	if req.Title != nil {
		issue.Title = req.Title
	}
	if req.Body != nil {
		issue.Body = req.Body
	}
	m.applyRequest(issue, &req)
	issue.UpdatedAt = &github.Timestamp{Time: time.Now().UTC().Truncate(time.Second)}

	writeJSON(w, http.StatusOK, issue)
}

// applyRequest copies state, labels and assignee from req. Must be called with the lock held.
func (m *MockServer) applyRequest(issue *github.Issue, req *github.IssueRequest) {
	if req.State != nil && *req.State != issue.GetState() {
		issue.State = req.State
		if *req.State == "closed" {
			issue.ClosedAt = &github.Timestamp{Time: time.Now().UTC().Truncate(time.Second)}
		} else {
			issue.ClosedAt = nil
		}
	}
	if req.StateReason != nil {
		issue.StateReason = req.StateReason
	}
	if req.Labels != nil {
		existing := make(map[string]*github.Label)
		for _, l := range issue.Labels {
			existing[l.GetName()] = l
		}
		labels := make([]*github.Label, 0, len(*req.Labels))
		for _, name := range *req.Labels {
			if l, ok := existing[name]; ok {
				labels = append(labels, l)
				continue
			}
			m.nextID++
			labels = append(labels, &github.Label{
				ID:    github.Int64(m.nextID),
				Name:  github.String(name),
				Color: github.String("ededed"),
			})
		}
		issue.Labels = labels
	}
	if req.Assignee != nil {
		if *req.Assignee == "" {
			issue.Assignee = nil
		} else {
			issue.Assignee = &github.User{Login: req.Assignee}
		}
	}
}

func (m *MockServer) handleListComments(w http.ResponseWriter, r *http.Request, number int) {
	m.mu.RLock()
	_, ok := m.issues[number]
	comments := append([]*github.IssueComment(nil), m.comments[number]...)
	perPage := m.perPage
	m.mu.RUnlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	page, link := paginate(r, len(comments), perPage)
	start, end := page.bounds(len(comments))
	if link != "" {
		w.Header().Set("Link", link)
	}
	writeJSON(w, http.StatusOK, comments[start:end])
}

type pageWindow struct {
	page    int
	perPage int
}

func (p pageWindow) bounds(total int) (int, int) {
	if p.perPage <= 0 {
		return 0, total
	}
	start := (p.page - 1) * p.perPage
	if start > total {
		start = total
	}
	end := start + p.perPage
	if end > total {
		end = total
	}
	return start, end
}

// paginate reads page/per_page from the request and builds a Link header
// pointing at the next page when one exists. A positive forced size wins
// over the requested size.
func paginate(r *http.Request, total, forced int) (pageWindow, string) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	size := forced
	if size <= 0 {
		size, _ = strconv.Atoi(q.Get("per_page"))
	}
	win := pageWindow{page: page, perPage: size}
	if size <= 0 || page*size >= total {
		return win, ""
	}

	next := *r.URL
	q.Set("page", strconv.Itoa(page+1))
	next.RawQuery = q.Encode()
	return win, fmt.Sprintf(`<http://%s%s>; rel="next"`, r.Host, next.RequestURI())
}

func errorBody(message string) string {
	b, _ := json.Marshal(map[string]string{"message": message})
	return string(b)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeRaw(w, status, errorBody(message))
}

func writeRaw(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
