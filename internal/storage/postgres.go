package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dawudu11/burptracker/internal"
)

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(dsn string, logger internal.Logger) (*PostgresStorage, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

// --- UserRepository ---

func (p *PostgresStorage) CreateUser(ctx context.Context, user *internal.User) (*internal.User, error) {
	// ON CONFLICT keeps creation idempotent by username without a
	// read-modify-write race.
	row := p.pool.QueryRow(ctx, `
		INSERT INTO users (id, username, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE SET username = EXCLUDED.username
		RETURNING id, username, created_at`,
		user.ID, user.Username, user.CreatedAt)
	var u internal.User
	if err := row.Scan(&u.ID, &u.Username, &u.CreatedAt); err != nil {
		p.logger.Errorf("failed to upsert user: %v", err)
		return nil, err
	}
	return &u, nil
}

func (p *PostgresStorage) GetUser(ctx context.Context, id string) (*internal.User, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, username, created_at FROM users WHERE id = $1`, id)
	var u internal.User
	if err := row.Scan(&u.ID, &u.Username, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		p.logger.Errorf("failed to query user: %v", err)
		return nil, err
	}
	return &u, nil
}

func (p *PostgresStorage) GetUserByUsername(ctx context.Context, username string) (*internal.User, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, username, created_at FROM users WHERE username = $1`, username)
	var u internal.User
	if err := row.Scan(&u.ID, &u.Username, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		p.logger.Errorf("failed to query user by username: %v", err)
		return nil, err
	}
	return &u, nil
}

func (p *PostgresStorage) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// --- GroupRepository ---

func (p *PostgresStorage) SaveGroup(ctx context.Context, group *internal.Group) error {
	// The unique index on invite_code is the reservation; a violation maps
	// to ErrInviteCodeTaken so callers can retry with a new code.
	_, err := p.pool.Exec(ctx, `
		INSERT INTO groups (id, name, creator_id, invite_code, members, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		group.ID, group.Name, group.CreatorID, group.InviteCode, group.Members, group.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrInviteCodeTaken
		}
		p.logger.Errorf("failed to insert group: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) scanGroup(row pgx.Row) (*internal.Group, error) {
	var g internal.Group
	if err := row.Scan(&g.ID, &g.Name, &g.CreatorID, &g.InviteCode, &g.Members, &g.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		p.logger.Errorf("failed to scan group: %v", err)
		return nil, err
	}
	return &g, nil
}

func (p *PostgresStorage) GetGroup(ctx context.Context, id string) (*internal.Group, error) {
	return p.scanGroup(p.pool.QueryRow(ctx,
		`SELECT id, name, creator_id, invite_code, members, created_at FROM groups WHERE id = $1`, id))
}

func (p *PostgresStorage) GetGroupByInviteCode(ctx context.Context, code string) (*internal.Group, error) {
	return p.scanGroup(p.pool.QueryRow(ctx,
		`SELECT id, name, creator_id, invite_code, members, created_at FROM groups WHERE invite_code = $1`, code))
}

func (p *PostgresStorage) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM groups WHERE invite_code = $1)`, code).Scan(&exists)
	if err != nil {
		p.logger.Errorf("failed to check invite code: %v", err)
		return false, err
	}
	return exists, nil
}

func (p *PostgresStorage) AddMember(ctx context.Context, groupID, userID string) (*internal.Group, error) {
	_, err := p.pool.Exec(ctx, `
		UPDATE groups SET members = array_append(members, $2)
		WHERE id = $1 AND NOT ($2 = ANY(members))`,
		groupID, userID)
	if err != nil {
		p.logger.Errorf("failed to add member: %v", err)
		return nil, err
	}
	return p.GetGroup(ctx, groupID)
}

func (p *PostgresStorage) RenameGroup(ctx context.Context, groupID, name string) (*internal.Group, error) {
	_, err := p.pool.Exec(ctx, `UPDATE groups SET name = $2 WHERE id = $1`, groupID, name)
	if err != nil {
		p.logger.Errorf("failed to rename group: %v", err)
		return nil, err
	}
	return p.GetGroup(ctx, groupID)
}

// --- SessionRepository ---

func (p *PostgresStorage) SaveSession(ctx context.Context, session *internal.BurpSession) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO burp_sessions (id, user_id, username, group_id, duration, detection_method, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		session.ID, session.UserID, session.Username, session.GroupID,
		session.Duration, session.DetectionMethod, session.Timestamp)
	if err != nil {
		p.logger.Errorf("failed to insert session: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) listSessions(ctx context.Context, query string, args ...interface{}) ([]internal.BurpSession, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		p.logger.Errorf("failed to query sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	sessions := make([]internal.BurpSession, 0)
	for rows.Next() {
		var s internal.BurpSession
		err := rows.Scan(&s.ID, &s.UserID, &s.Username, &s.GroupID, &s.Duration, &s.DetectionMethod, &s.Timestamp)
		if err != nil {
			p.logger.Errorf("failed to scan session: %v", err)
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (p *PostgresStorage) ListPersonalSessions(ctx context.Context) ([]internal.BurpSession, error) {
	return p.listSessions(ctx, `
		SELECT id, user_id, username, group_id, duration, detection_method, recorded_at
		FROM burp_sessions WHERE group_id = '' ORDER BY recorded_at`)
}

func (p *PostgresStorage) ListGroupSessions(ctx context.Context, groupID string) ([]internal.BurpSession, error) {
	return p.listSessions(ctx, `
		SELECT id, user_id, username, group_id, duration, detection_method, recorded_at
		FROM burp_sessions WHERE group_id = $1 ORDER BY recorded_at`, groupID)
}

func (p *PostgresStorage) CountSessions(ctx context.Context) (int, error) {
	var n int
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM burp_sessions`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// --- Compile-time assertions ---
var _ UserRepository = (*PostgresStorage)(nil)
var _ GroupRepository = (*PostgresStorage)(nil)
var _ SessionRepository = (*PostgresStorage)(nil)
