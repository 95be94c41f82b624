package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"mybus/internal/domain"
	"mybus/internal/domain/models"
)

const scheduleColumns = "id, bus_id, days_active, stop_timings, frequency_min, created_at, updated_at"

// ScheduleRepository wraps DB access for the schedules collection.
// bus_id is a reference by value, not a database-enforced foreign key;
// the cascade on bus delete is application logic.
type ScheduleRepository struct {
	DB *sql.DB
}

func scanSchedule(row rowScanner) (models.Schedule, error) {
	var s models.Schedule
	var days, timings sql.NullString
	var freq sql.NullInt64
	err := row.Scan(
		&s.ID,
		&s.BusID,
		&days,
		&timings,
		&freq,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return models.Schedule{}, err
	}
	s.DaysActive = []string{}
	if days.Valid && days.String != "" {
		_ = json.Unmarshal([]byte(days.String), &s.DaysActive)
	}
	s.StopTimings = []models.StopTiming{}
	if timings.Valid && timings.String != "" {
		_ = json.Unmarshal([]byte(timings.String), &s.StopTimings)
	}
	if freq.Valid {
		f := int(freq.Int64)
		s.FrequencyMin = &f
	}
	return s, nil
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func (r ScheduleRepository) Create(s models.Schedule) (models.Schedule, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now

	days, err := marshalJSONColumn(s.DaysActive)
	if err != nil {
		return models.Schedule{}, domain.InternalError{Msg: "failed to encode days active", Err: err}
	}
	timings, err := marshalJSONColumn(s.StopTimings)
	if err != nil {
		return models.Schedule{}, domain.InternalError{Msg: "failed to encode stop timings", Err: err}
	}

	_, err = r.DB.Exec(`
		INSERT INTO schedules (`+scheduleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.BusID, days, timings, nullInt(s.FrequencyMin), s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return models.Schedule{}, domain.InternalError{Msg: "failed to insert schedule", Err: err}
	}
	return s, nil
}

func (r ScheduleRepository) GetAll() ([]models.Schedule, error) {
	return r.list(`SELECT ` + scheduleColumns + ` FROM schedules ORDER BY created_at DESC`)
}

func (r ScheduleRepository) GetByBus(busID string) ([]models.Schedule, error) {
	return r.list(`SELECT `+scheduleColumns+` FROM schedules WHERE bus_id = ? ORDER BY created_at DESC`, busID)
}

func (r ScheduleRepository) list(query string, args ...any) ([]models.Schedule, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to list schedules", Err: err}
	}
	defer rows.Close()

	list := []models.Schedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, domain.InternalError{Msg: "failed to scan schedule", Err: err}
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.InternalError{Msg: "failed to iterate schedules", Err: err}
	}
	return list, nil
}

func (r ScheduleRepository) GetByID(id string) (models.Schedule, error) {
	row := r.DB.QueryRow(`SELECT `+scheduleColumns+` FROM schedules WHERE id = ? LIMIT 1`, id)
	s, err := scanSchedule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Schedule{}, domain.NotFoundError{Resource: "schedule", Err: err}
		}
		return models.Schedule{}, domain.InternalError{Msg: "failed to query schedule", Err: err}
	}
	return s, nil
}

// ScheduleUpdate carries the mutable schedule fields; nil means "leave unchanged".
type ScheduleUpdate struct {
	BusID        *string
	DaysActive   *[]string
	StopTimings  *[]models.StopTiming
	FrequencyMin *int
}

func (r ScheduleRepository) Update(id string, set ScheduleUpdate) (models.Schedule, error) {
	sets := []string{}
	args := []any{}
	add := func(column string, val any) {
		sets = append(sets, column+" = ?")
		args = append(args, val)
	}

	if set.BusID != nil {
		add("bus_id", *set.BusID)
	}
	if set.DaysActive != nil {
		days, err := marshalJSONColumn(*set.DaysActive)
		if err != nil {
			return models.Schedule{}, domain.InternalError{Msg: "failed to encode days active", Err: err}
		}
		add("days_active", days)
	}
	if set.StopTimings != nil {
		timings, err := marshalJSONColumn(*set.StopTimings)
		if err != nil {
			return models.Schedule{}, domain.InternalError{Msg: "failed to encode stop timings", Err: err}
		}
		add("stop_timings", timings)
	}
	if set.FrequencyMin != nil {
		add("frequency_min", *set.FrequencyMin)
	}
	add("updated_at", time.Now().UTC())
	args = append(args, id)

	if _, err := r.DB.Exec(`UPDATE schedules SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
		return models.Schedule{}, domain.InternalError{Msg: "failed to update schedule", Err: err}
	}
	return r.GetByID(id)
}

func (r ScheduleRepository) Delete(id string) error {
	res, err := r.DB.Exec(`DELETE FROM schedules WHERE id = ?`, id)
	if err != nil {
		return domain.InternalError{Msg: "failed to delete schedule", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "schedule"}
	}
	return nil
}

// DeleteByBus removes every schedule referencing the bus and returns the
// count. Zero removed is a valid outcome, not an error.
func (r ScheduleRepository) DeleteByBus(busID string) (int64, error) {
	res, err := r.DB.Exec(`DELETE FROM schedules WHERE bus_id = ?`, busID)
	if err != nil {
		return 0, domain.InternalError{Msg: "failed to delete schedules for bus", Err: err}
	}
	n, _ := res.RowsAffected()
	return n, nil
}
