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

const busColumns = "id, bus_category, bus_number, bus_type, capacity, registration_no, gps_device_id, current_location, status, route, created_at, updated_at"

// BusRepository wraps DB access for the buses collection. The embedded
// route and current location documents are stored as JSON columns.
type BusRepository struct {
	DB *sql.DB
}

func scanBus(row rowScanner) (models.Bus, error) {
	var b models.Bus
	var location, route sql.NullString
	err := row.Scan(
		&b.ID,
		&b.BusCategory,
		&b.BusNumber,
		&b.Type,
		&b.Capacity,
		&b.RegistrationNo,
		&b.GPSDeviceID,
		&location,
		&b.Status,
		&route,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return models.Bus{}, err
	}
	b.CurrentLocation = map[string]any{}
	if location.Valid && location.String != "" {
		_ = json.Unmarshal([]byte(location.String), &b.CurrentLocation)
	}
	if route.Valid && route.String != "" {
		var r models.Route
		if err := json.Unmarshal([]byte(route.String), &r); err == nil {
			b.Route = &r
		}
	}
	return b, nil
}

func marshalJSONColumn(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (r BusRepository) Create(b models.Bus) (models.Bus, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.CurrentLocation == nil {
		b.CurrentLocation = map[string]any{}
	}

	location, err := marshalJSONColumn(b.CurrentLocation)
	if err != nil {
		return models.Bus{}, domain.InternalError{Msg: "failed to encode current location", Err: err}
	}
	var route any
	if b.Route != nil {
		if route, err = marshalJSONColumn(b.Route); err != nil {
			return models.Bus{}, domain.InternalError{Msg: "failed to encode route", Err: err}
		}
	}

	_, err = r.DB.Exec(`
		INSERT INTO buses (`+busColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.BusCategory, b.BusNumber, b.Type, b.Capacity, b.RegistrationNo,
		b.GPSDeviceID, location, b.Status, route, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return models.Bus{}, domain.ConflictError{Resource: "bus", Msg: "registration number already exists", Err: err}
		}
		return models.Bus{}, domain.InternalError{Msg: "failed to insert bus", Err: err}
	}
	return b, nil
}

func (r BusRepository) GetAll() ([]models.Bus, error) {
	rows, err := r.DB.Query(`SELECT ` + busColumns + ` FROM buses ORDER BY created_at DESC`)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to list buses", Err: err}
	}
	defer rows.Close()

	list := []models.Bus{}
	for rows.Next() {
		b, err := scanBus(rows)
		if err != nil {
			return nil, domain.InternalError{Msg: "failed to scan bus", Err: err}
		}
		list = append(list, b)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.InternalError{Msg: "failed to iterate buses", Err: err}
	}
	return list, nil
}

func (r BusRepository) GetByID(id string) (models.Bus, error) {
	row := r.DB.QueryRow(`SELECT `+busColumns+` FROM buses WHERE id = ? LIMIT 1`, id)
	b, err := scanBus(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Bus{}, domain.NotFoundError{Resource: "bus", Err: err}
		}
		return models.Bus{}, domain.InternalError{Msg: "failed to query bus", Err: err}
	}
	return b, nil
}

// BusUpdate carries the mutable bus fields; nil means "leave unchanged".
type BusUpdate struct {
	BusCategory     *string
	BusNumber       *string
	Type            *string
	Capacity        *int
	RegistrationNo  *string
	GPSDeviceID     *string
	CurrentLocation *map[string]any
	Status          *string
	Route           *models.Route
}

func (r BusRepository) Update(id string, set BusUpdate) (models.Bus, error) {
	sets := []string{}
	args := []any{}
	add := func(column string, val any) {
		sets = append(sets, column+" = ?")
		args = append(args, val)
	}

	if set.BusCategory != nil {
		add("bus_category", *set.BusCategory)
	}
	if set.BusNumber != nil {
		add("bus_number", *set.BusNumber)
	}
	if set.Type != nil {
		add("bus_type", *set.Type)
	}
	if set.Capacity != nil {
		add("capacity", *set.Capacity)
	}
	if set.RegistrationNo != nil {
		add("registration_no", *set.RegistrationNo)
	}
	if set.GPSDeviceID != nil {
		add("gps_device_id", *set.GPSDeviceID)
	}
	if set.CurrentLocation != nil {
		location, err := marshalJSONColumn(*set.CurrentLocation)
		if err != nil {
			return models.Bus{}, domain.InternalError{Msg: "failed to encode current location", Err: err}
		}
		add("current_location", location)
	}
	if set.Status != nil {
		add("status", *set.Status)
	}
	if set.Route != nil {
		route, err := marshalJSONColumn(set.Route)
		if err != nil {
			return models.Bus{}, domain.InternalError{Msg: "failed to encode route", Err: err}
		}
		add("route", route)
	}
	add("updated_at", time.Now().UTC())
	args = append(args, id)

	if _, err := r.DB.Exec(`UPDATE buses SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
		if isDuplicateKey(err) {
			return models.Bus{}, domain.ConflictError{Resource: "bus", Msg: "registration number already exists", Err: err}
		}
		return models.Bus{}, domain.InternalError{Msg: "failed to update bus", Err: err}
	}
	return r.GetByID(id)
}

func (r BusRepository) Delete(id string) error {
	res, err := r.DB.Exec(`DELETE FROM buses WHERE id = ?`, id)
	if err != nil {
		return domain.InternalError{Msg: "failed to delete bus", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "bus"}
	}
	return nil
}
