package storage

import "github.com/dawudu11/burptracker/internal"

type Repositories struct {
	Users    UserRepository
	Groups   GroupRepository
	Sessions SessionRepository
	Closer   interface{ Close() error }
}

func NewFileRepositories(usersFile, groupsFile, sessionsFile string, logger internal.Logger) (*Repositories, error) {
	storage, err := NewFileStorage(usersFile, groupsFile, sessionsFile, logger)
	if err != nil {
		return nil, err
	}
	return &Repositories{Users: storage, Groups: storage, Sessions: storage, Closer: storage}, nil
}

func NewPostgresRepositories(dsn string, logger internal.Logger) (*Repositories, error) {
	storage, err := NewPostgresStorage(dsn, logger)
	if err != nil {
		return nil, err
	}
	return &Repositories{Users: storage, Groups: storage, Sessions: storage, Closer: storage}, nil
}
