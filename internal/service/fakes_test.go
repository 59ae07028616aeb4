package service

import (
	"context"
	"sync"
	"time"

	"github.com/dsgallups/rust-atlanta/internal/model"
	"github.com/dsgallups/rust-atlanta/internal/presave"
	"github.com/dsgallups/rust-atlanta/internal/repository"
)

// copyOf detaches a stored row from the caller, as a database read would.
func copyOf[T any](v *T) *T {
	cp := *v
	return &cp
}

// memoryUsers is an in-memory UserStore that runs the real normalizer.
type memoryUsers struct {
	mu         sync.Mutex
	normalizer *presave.Normalizer
	users      map[string]*model.User
	auths      map[string]*model.UserAuth // by user id
	lookups    int
}

func newMemoryUsers(n *presave.Normalizer) *memoryUsers {
	return &memoryUsers{normalizer: n, users: map[string]*model.User{}, auths: map[string]*model.UserAuth{}}
}

func (m *memoryUsers) RegisterUser(_ context.Context, user *model.UserChanges, cred *model.UserAuthChanges) (*model.User, *model.UserAuth, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email.Value() {
			return nil, nil, repository.ErrEmailExists
		}
	}
	if err := m.normalizer.Normalize(user, true); err != nil {
		return nil, nil, err
	}
	if err := m.normalizer.Normalize(cred, true); err != nil {
		return nil, nil, err
	}
	u, a := user.User(), cred.UserAuth()
	m.users[u.ID] = u
	m.auths[u.ID] = a
	return copyOf(u), copyOf(a), nil
}

func (m *memoryUsers) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return copyOf(u), nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *memoryUsers) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == model.NormalizeEmail(email) {
			return copyOf(u), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memoryUsers) GetUserAuthByUserID(_ context.Context, userID string) (*model.UserAuth, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.auths[userID]; ok {
		return copyOf(a), nil
	}
	return nil, repository.ErrUserAuthNotFound
}

func (m *memoryUsers) GetUserAuthByAPIKey(_ context.Context, apiKey string) (*model.UserAuth, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	for _, a := range m.auths {
		if a.APIKey == apiKey {
			return copyOf(a), nil
		}
	}
	return nil, repository.ErrUserAuthNotFound
}

func (m *memoryUsers) VerifyEmail(_ context.Context, token string, verifiedAt time.Time) (*model.User, *model.UserAuth, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.users {
		if u.EmailVerificationToken != token {
			continue
		}
		uc := u.Changes()
		uc.EmailVerifiedAt.Set(&verifiedAt)
		uc.EmailVerificationToken.Set("")
		if err := m.normalizer.Normalize(uc, false); err != nil {
			return nil, nil, err
		}
		ac := m.auths[id].Changes()
		ac.EmailVerifiedAt.Set(&verifiedAt)
		if err := m.normalizer.Normalize(ac, false); err != nil {
			return nil, nil, err
		}
		m.users[id], m.auths[id] = uc.User(), ac.UserAuth()
		return copyOf(m.users[id]), copyOf(m.auths[id]), nil
	}
	return nil, nil, repository.ErrUserNotFound
}

// memoryProjects backs the project operations of ContentStore. Event and news
// operations are served by the embedded stubs.
type memoryProjects struct {
	stubContent
	normalizer *presave.Normalizer
	nextID     int64
	projects   map[int64]*model.Project
}

func newMemoryProjects(n *presave.Normalizer) *memoryProjects {
	return &memoryProjects{normalizer: n, projects: map[int64]*model.Project{}}
}

func (m *memoryProjects) CreateProject(_ context.Context, c *model.ProjectChanges) (*model.Project, error) {
	if err := m.normalizer.Normalize(c, true); err != nil {
		return nil, err
	}
	m.nextID++
	p := &model.Project{
		ID:            m.nextID,
		Name:          c.Name.Value(),
		Description:   c.Description.Value(),
		RepositoryURL: c.RepositoryURL.Value(),
		Tags:          c.Tags.Value(),
		CreatedAt:     c.CreatedAt.Value(),
		UpdatedAt:     c.UpdatedAt.Value(),
	}
	m.projects[p.ID] = p
	return copyOf(p), nil
}

func (m *memoryProjects) GetProject(_ context.Context, id int64) (*model.Project, error) {
	if p, ok := m.projects[id]; ok {
		return copyOf(p), nil
	}
	return nil, repository.ErrProjectNotFound
}

func (m *memoryProjects) ListProjects(_ context.Context, _ repository.ProjectFilter, cursor string, _ int) ([]*model.Project, string, error) {
	if cursor == "bad" {
		return nil, "", repository.ErrInvalidCursor
	}
	out := make([]*model.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, copyOf(p))
	}
	return out, "", nil
}

func (m *memoryProjects) UpdateProject(_ context.Context, c *model.ProjectChanges) (*model.Project, error) {
	stored, ok := m.projects[c.ID]
	if !ok {
		return nil, repository.ErrProjectNotFound
	}
	if err := m.normalizer.Normalize(c, false); err != nil {
		return nil, err
	}
	if c.Name.IsSet() {
		stored.Name = c.Name.Value()
	}
	if c.Description.IsSet() {
		stored.Description = c.Description.Value()
	}
	if c.RepositoryURL.IsSet() {
		stored.RepositoryURL = c.RepositoryURL.Value()
	}
	if c.Tags.IsSet() {
		stored.Tags = c.Tags.Value()
	}
	if c.CreatedAt.IsSet() {
		stored.CreatedAt = c.CreatedAt.Value()
	}
	if c.UpdatedAt.IsSet() {
		stored.UpdatedAt = c.UpdatedAt.Value()
	}
	return copyOf(stored), nil
}

func (m *memoryProjects) DeleteProject(_ context.Context, id int64) error {
	if _, ok := m.projects[id]; !ok {
		return repository.ErrProjectNotFound
	}
	delete(m.projects, id)
	return nil
}

// stubContent records event and news calls without storing anything.
type stubContent struct {
	eventFilter repository.EventFilter
	newsFilter  repository.NewsFilter
	created     []any
}

func (s *stubContent) CreateProject(context.Context, *model.ProjectChanges) (*model.Project, error) {
	return nil, repository.ErrProjectNotFound
}
func (s *stubContent) GetProject(context.Context, int64) (*model.Project, error) {
	return nil, repository.ErrProjectNotFound
}
func (s *stubContent) ListProjects(context.Context, repository.ProjectFilter, string, int) ([]*model.Project, string, error) {
	return nil, "", nil
}
func (s *stubContent) UpdateProject(context.Context, *model.ProjectChanges) (*model.Project, error) {
	return nil, repository.ErrProjectNotFound
}
func (s *stubContent) DeleteProject(context.Context, int64) error {
	return repository.ErrProjectNotFound
}

func (s *stubContent) CreateEvent(_ context.Context, c *model.EventChanges) (*model.Event, error) {
	s.created = append(s.created, c)
	return &model.Event{ID: 1, Title: c.Title.Value()}, nil
}
func (s *stubContent) GetEvent(context.Context, int64) (*model.Event, error) {
	return nil, repository.ErrEventNotFound
}
func (s *stubContent) ListEvents(_ context.Context, f repository.EventFilter, _ string, _ int) ([]*model.Event, string, error) {
	s.eventFilter = f
	return nil, "", nil
}
func (s *stubContent) UpdateEvent(context.Context, *model.EventChanges) (*model.Event, error) {
	return nil, repository.ErrEventNotFound
}
func (s *stubContent) DeleteEvent(context.Context, int64) error { return repository.ErrEventNotFound }

func (s *stubContent) CreateNews(_ context.Context, c *model.NewsChanges) (*model.News, error) {
	s.created = append(s.created, c)
	return &model.News{ID: 1, Title: c.Title.Value()}, nil
}
func (s *stubContent) GetNews(context.Context, int64) (*model.News, error) {
	return nil, repository.ErrNewsNotFound
}
func (s *stubContent) ListNews(_ context.Context, f repository.NewsFilter, _ string, _ int) ([]*model.News, string, error) {
	s.newsFilter = f
	return nil, "", nil
}
func (s *stubContent) UpdateNews(context.Context, *model.NewsChanges) (*model.News, error) {
	return nil, repository.ErrNewsNotFound
}
func (s *stubContent) DeleteNews(context.Context, int64) error { return repository.ErrNewsNotFound }
