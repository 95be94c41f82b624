package repositories

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"mybus/internal/domain"
	"mybus/internal/domain/models"
	"mybus/internal/utils"
)

const userColumns = "id, name, email, phone, password_hash, role, status, last_login, total_bookings, total_spent, created_at, updated_at"

// UserRepository wraps DB access for the users collection.
type UserRepository struct {
	DB *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	var lastLogin sql.NullTime
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Phone,
		&u.PasswordHash,
		&u.Role,
		&u.Status,
		&lastLogin,
		&u.TotalBookings,
		&u.TotalSpent,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return models.User{}, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return u, nil
}

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// Create inserts a new user. The id is store-assigned; the unique index on
// email backstops the application-level duplicate check.
func (r UserRepository) Create(u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = utils.NormalizeEmail(u.Email)
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := r.DB.Exec(`
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, u.Role, u.Status,
		nullTime(u.LastLogin), u.TotalBookings, u.TotalSpent, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return models.User{}, domain.ConflictError{Resource: "user", Msg: "email already exists", Err: err}
		}
		return models.User{}, domain.InternalError{Msg: "failed to insert user", Err: err}
	}
	return u, nil
}

func (r UserRepository) FindByEmail(email string) (models.User, error) {
	row := r.DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`,
		utils.NormalizeEmail(email))
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
		}
		return models.User{}, domain.InternalError{Msg: "failed to query user", Err: err}
	}
	return u, nil
}

func (r UserRepository) FindByID(id string) (models.User, error) {
	row := r.DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
		}
		return models.User{}, domain.InternalError{Msg: "failed to query user", Err: err}
	}
	return u, nil
}

// List returns users matching a free-text search (case-insensitive substring
// over name/email/phone) and exact role/status filters. Empty or "all"
// filters match everything.
func (r UserRepository) List(search, role, status string) ([]models.User, error) {
	where := []string{}
	args := []any{}

	if term := strings.ToLower(strings.TrimSpace(search)); term != "" {
		like := "%" + term + "%"
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ?)")
		args = append(args, like, like, like)
	}
	if role = strings.ToUpper(strings.TrimSpace(role)); role != "" && role != "ALL" {
		where = append(where, "role = ?")
		args = append(args, role)
	}
	if status = strings.ToUpper(strings.TrimSpace(status)); status != "" && status != "ALL" {
		where = append(where, "status = ?")
		args = append(args, status)
	}

	query := `SELECT ` + userColumns + ` FROM users`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to list users", Err: err}
	}
	defer rows.Close()

	list := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, domain.InternalError{Msg: "failed to scan user", Err: err}
		}
		list = append(list, u)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.InternalError{Msg: "failed to iterate users", Err: err}
	}
	return list, nil
}

// UserUpdate carries the mutable user fields; nil means "leave unchanged".
type UserUpdate struct {
	Name         *string
	Email        *string
	Phone        *string
	PasswordHash *string
	Role         *string
	Status       *string
}

// Update applies the non-nil fields and always refreshes updated_at, then
// returns the stored record.
func (r UserRepository) Update(id string, set UserUpdate) (models.User, error) {
	sets := []string{}
	args := []any{}
	add := func(column string, val any) {
		sets = append(sets, column+" = ?")
		args = append(args, val)
	}

	if set.Name != nil {
		add("name", *set.Name)
	}
	if set.Email != nil {
		add("email", utils.NormalizeEmail(*set.Email))
	}
	if set.Phone != nil {
		add("phone", *set.Phone)
	}
	if set.PasswordHash != nil {
		add("password_hash", *set.PasswordHash)
	}
	if set.Role != nil {
		add("role", *set.Role)
	}
	if set.Status != nil {
		add("status", *set.Status)
	}
	add("updated_at", time.Now().UTC())
	args = append(args, id)

	if _, err := r.DB.Exec(`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
		if isDuplicateKey(err) {
			return models.User{}, domain.ConflictError{Resource: "user", Msg: "email already in use", Err: err}
		}
		return models.User{}, domain.InternalError{Msg: "failed to update user", Err: err}
	}
	return r.FindByID(id)
}

// UpdateLastLogin stamps a successful login; updated_at is left alone.
func (r UserRepository) UpdateLastLogin(id string, at time.Time) error {
	if _, err := r.DB.Exec(`UPDATE users SET last_login = ? WHERE id = ?`, at, id); err != nil {
		return domain.InternalError{Msg: "failed to update last login", Err: err}
	}
	return nil
}

func (r UserRepository) Delete(id string) error {
	res, err := r.DB.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return domain.InternalError{Msg: "failed to delete user", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "user"}
	}
	return nil
}
