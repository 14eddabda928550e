package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dawudu11/burptracker/internal"
)

type FileStorage struct {
	users             map[string]*internal.User    // id -> User
	usersByName       map[string]*internal.User    // username -> User
	groups            map[string]*internal.Group   // id -> Group
	groupsByCode      map[string]*internal.Group   // invite code -> Group
	sessions          []*internal.BurpSession      // append-only ledger
	mu                sync.RWMutex
	usersFile         string
	groupsFile        string
	sessionsFile      string
	saveUsersChan     chan struct{}
	saveGroupsChan    chan struct{}
	saveSessionsChan  chan struct{}
	shutdownChan      chan struct{}
	saveUsersDelay    time.Duration
	saveGroupsDelay   time.Duration
	saveSessionsDelay time.Duration
	logger            internal.Logger
}

func NewFileStorage(usersFile, groupsFile, sessionsFile string, logger internal.Logger) (*FileStorage, error) {
	s := &FileStorage{
		users:             make(map[string]*internal.User),
		usersByName:       make(map[string]*internal.User),
		groups:            make(map[string]*internal.Group),
		groupsByCode:      make(map[string]*internal.Group),
		usersFile:         usersFile,
		groupsFile:        groupsFile,
		sessionsFile:      sessionsFile,
		saveUsersChan:     make(chan struct{}, 1),
		saveGroupsChan:    make(chan struct{}, 1),
		saveSessionsChan:  make(chan struct{}, 1),
		shutdownChan:      make(chan struct{}),
		saveUsersDelay:    500 * time.Millisecond,
		saveGroupsDelay:   500 * time.Millisecond,
		saveSessionsDelay: 500 * time.Millisecond,
		logger:            logger,
	}

	if err := s.loadUsers(); err != nil {
		logger.Errorf("storage: failed to load users: %v", err)
		return nil, err
	}
	if err := s.loadGroups(); err != nil {
		logger.Errorf("storage: failed to load groups: %v", err)
		return nil, err
	}
	if err := s.loadSessions(); err != nil {
		logger.Errorf("storage: failed to load sessions: %v", err)
		return nil, err
	}

	go s.saveWorker(s.saveUsersChan, s.saveUsersDelay, s.saveUsers, "users")
	go s.saveWorker(s.saveGroupsChan, s.saveGroupsDelay, s.saveGroups, "groups")
	go s.saveWorker(s.saveSessionsChan, s.saveSessionsDelay, s.saveSessions, "sessions")

	return s, nil
}

func decodeJSONFile(path string, v interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func (s *FileStorage) loadUsers() error {
	var users []*internal.User
	if err := decodeJSONFile(s.usersFile, &users); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		s.users[u.ID] = u
		s.usersByName[u.Username] = u
	}
	return nil
}

func (s *FileStorage) loadGroups() error {
	var groups []*internal.Group
	if err := decodeJSONFile(s.groupsFile, &groups); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range groups {
		s.groups[g.ID] = g
		s.groupsByCode[g.InviteCode] = g
	}
	return nil
}

func (s *FileStorage) loadSessions() error {
	var sessions []*internal.BurpSession
	if err := decodeJSONFile(s.sessionsFile, &sessions); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = sessions
	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) saveUsers() error {
	s.mu.RLock()
	users := make([]*internal.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	s.mu.RUnlock()

	return atomicWriteFileJSON(s.usersFile, users)
}

func (s *FileStorage) saveGroups() error {
	s.mu.RLock()
	groups := make([]*internal.Group, 0, len(s.groups))
	for _, g := range s.groups {
		groups = append(groups, g)
	}
	s.mu.RUnlock()

	return atomicWriteFileJSON(s.groupsFile, groups)
}

func (s *FileStorage) saveSessions() error {
	s.mu.RLock()
	sessions := make([]*internal.BurpSession, len(s.sessions))
	copy(sessions, s.sessions)
	s.mu.RUnlock()

	if sessions == nil {
		sessions = make([]*internal.BurpSession, 0)
	}
	return atomicWriteFileJSON(s.sessionsFile, sessions)
}

// saveWorker batches save signals to avoid a disk write per mutation.
func (s *FileStorage) saveWorker(signal chan struct{}, delay time.Duration, save func() error, what string) {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-signal:
			timer.Reset(delay)
		case <-timer.C:
			if err := save(); err != nil {
				s.logger.Errorf("storage: error saving %s: %v", what, err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

func signalSave(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (s *FileStorage) Close() error {
	close(s.shutdownChan)

	// Save pending data synchronously on shutdown
	if err := s.saveUsers(); err != nil {
		return err
	}
	if err := s.saveGroups(); err != nil {
		return err
	}
	return s.saveSessions()
}

// --- UserRepository ---

func (s *FileStorage) CreateUser(ctx context.Context, user *internal.User) (*internal.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.usersByName[user.Username]; ok {
		return existing, nil
	}
	s.users[user.ID] = user
	s.usersByName[user.Username] = user
	signalSave(s.saveUsersChan)
	return user, nil
}

func (s *FileStorage) GetUser(ctx context.Context, id string) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (s *FileStorage) GetUserByUsername(ctx context.Context, username string) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.usersByName[username]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (s *FileStorage) CountUsers(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

// --- GroupRepository ---

func (s *FileStorage) SaveGroup(ctx context.Context, group *internal.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// The code check and the insert share one lock acquisition, so two
	// concurrent saves can never both claim the same code.
	if holder, ok := s.groupsByCode[group.InviteCode]; ok && holder.ID != group.ID {
		return ErrInviteCodeTaken
	}
	s.groups[group.ID] = group
	s.groupsByCode[group.InviteCode] = group
	signalSave(s.saveGroupsChan)
	return nil
}

func (s *FileStorage) GetGroup(ctx context.Context, id string) (*internal.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[id]
	if !ok {
		return nil, nil
	}
	return copyGroup(g), nil
}

func (s *FileStorage) GetGroupByInviteCode(ctx context.Context, code string) (*internal.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groupsByCode[code]
	if !ok {
		return nil, nil
	}
	return copyGroup(g), nil
}

func (s *FileStorage) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.groupsByCode[code]
	return ok, nil
}

func (s *FileStorage) AddMember(ctx context.Context, groupID, userID string) (*internal.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	if !ok {
		return nil, nil
	}
	if !g.HasMember(userID) {
		g.Members = append(g.Members, userID)
		signalSave(s.saveGroupsChan)
	}
	return copyGroup(g), nil
}

func (s *FileStorage) RenameGroup(ctx context.Context, groupID, name string) (*internal.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	if !ok {
		return nil, nil
	}
	g.Name = name
	signalSave(s.saveGroupsChan)
	return copyGroup(g), nil
}

// copyGroup snapshots a group so callers never see concurrent membership
// growth through a shared slice.
func copyGroup(g *internal.Group) *internal.Group {
	cp := *g
	cp.Members = make([]string, len(g.Members))
	copy(cp.Members, g.Members)
	return &cp
}

// --- SessionRepository ---

func (s *FileStorage) SaveSession(ctx context.Context, session *internal.BurpSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, session)
	signalSave(s.saveSessionsChan)
	return nil
}

func (s *FileStorage) ListPersonalSessions(ctx context.Context) ([]internal.BurpSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]internal.BurpSession, 0)
	for _, sess := range s.sessions {
		if sess.GroupID == "" {
			sessions = append(sessions, *sess)
		}
	}
	return sessions, nil
}

func (s *FileStorage) ListGroupSessions(ctx context.Context, groupID string) ([]internal.BurpSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]internal.BurpSession, 0)
	for _, sess := range s.sessions {
		if sess.GroupID == groupID {
			sessions = append(sessions, *sess)
		}
	}
	return sessions, nil
}

func (s *FileStorage) CountSessions(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

// --- Compile-time assertions ---
var _ UserRepository = (*FileStorage)(nil)
var _ GroupRepository = (*FileStorage)(nil)
var _ SessionRepository = (*FileStorage)(nil)
