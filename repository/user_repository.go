package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"musewave/core/utils"
	"musewave/model"
)

// mysqlUserRepository implements UserRepository for MySQL.
type mysqlUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new mysqlUserRepository.
func NewMySQLUserRepository(db *sql.DB) UserRepository {
	return &mysqlUserRepository{db: db}
}

const userColumns = "id, username, email, password_hash, display_name, bio, avatar_url, verified, created_at, updated_at"

func scanUser(row interface{ Scan(...interface{}) error }) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.DisplayName, &user.Bio, &user.AvatarURL, &user.Verified,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser adds a new user to the database.
func (r *mysqlUserRepository) CreateUser(user *model.User) (int64, error) {
	query := `INSERT INTO users (username, email, password_hash, display_name, bio, avatar_url, verified)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare create user statement: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(user.Username, user.Email, user.PasswordHash,
		user.DisplayName, user.Bio, user.AvatarURL, user.Verified)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return 0, fmt.Errorf("username or email taken: %w", ErrDuplicate)
		}
		return 0, fmt.Errorf("failed to execute create user statement: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for user: %w", err)
	}
	return id, nil
}

// GetUserByID retrieves a user by their ID.
func (r *mysqlUserRepository) GetUserByID(id int64) (*model.User, error) {
	row := r.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user row for ID %d: %w", id, err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by their username.
func (r *mysqlUserRepository) GetUserByUsername(username string) (*model.User, error) {
	row := r.db.QueryRow("SELECT "+userColumns+" FROM users WHERE username = ?", username)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user row for username %s: %w", username, err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *mysqlUserRepository) GetUserByEmail(email string) (*model.User, error) {
	row := r.db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", email)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user row for email %s: %w", email, err)
	}
	return user, nil
}

// UpdateUser applies a profile patch and returns the updated record.
func (r *mysqlUserRepository) UpdateUser(id int64, update model.UserUpdate) (*model.User, error) {
	sets := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)
	if update.DisplayName != nil {
		sets = append(sets, "display_name = ?")
		args = append(args, *update.DisplayName)
	}
	if update.Bio != nil {
		sets = append(sets, "bio = ?")
		args = append(args, *update.Bio)
	}
	if update.AvatarURL != nil {
		sets = append(sets, "avatar_url = ?")
		args = append(args, *update.AvatarURL)
	}
	if update.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *update.Email)
	}
	if len(sets) > 0 {
		sets = append(sets, "updated_at = NOW()")
		args = append(args, id)
		query := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		if _, err := r.db.Exec(query, args...); err != nil {
			if strings.Contains(err.Error(), "Duplicate entry") {
				return nil, fmt.Errorf("email taken: %w", ErrDuplicate)
			}
			return nil, fmt.Errorf("failed to update user %d: %w", id, err)
		}
	}
	return r.GetUserByID(id)
}

// ListUsers retrieves every user.
func (r *mysqlUserRepository) ListUsers() ([]*model.User, error) {
	rows, err := r.db.Query("SELECT " + userColumns + " FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]*model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user in ListUsers: %w", err)
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in ListUsers: %w", err)
	}
	return users, nil
}

// ListArtists retrieves users with at least one published track, newest first.
func (r *mysqlUserRepository) ListArtists() ([]*model.Artist, error) {
	query := `SELECT u.id, u.username, u.email, u.password_hash, u.display_name, u.bio, u.avatar_url, u.verified, u.created_at, u.updated_at,
	                 COUNT(DISTINCT t.id) AS published_count,
	                 COUNT(DISTINCT f.id) AS follower_count
	           FROM users u
	           JOIN tracks t ON t.user_id = u.id AND t.published = 1
	           LEFT JOIN follows f ON f.following_id = u.id
	           GROUP BY u.id
	           ORDER BY u.created_at DESC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}
	defer rows.Close()

	artists := make([]*model.Artist, 0)
	for rows.Next() {
		a := &model.Artist{}
		err := rows.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash,
			&a.DisplayName, &a.Bio, &a.AvatarURL, &a.Verified,
			&a.CreatedAt, &a.UpdatedAt, &a.PublishedCount, &a.FollowerCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artist row: %w", err)
		}
		name := a.DisplayName
		if name == "" {
			name = a.Username
		}
		a.ArtistSlug = utils.ArtistSlug(name)
		artists = append(artists, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in ListArtists: %w", err)
	}
	return artists, nil
}
