package database

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/providers"
	"github.com/zatekoja/blooddonorconnect/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/blooddonorconnect/backend/pkg/errors"
)

//go:embed migrations/001_snapshot.sql
var snapshotSchema string

const (
	donorsTable   = "donors"
	requestsTable = "emergency_requests"
	metaTable     = "snapshot_meta"
	metaRowID     = 1
)

var donorColumns = []interface{}{
	"position", "id", "name", "blood_type", "region", "facility_name",
	"latitude", "longitude", "phone", "registered_at",
}

var requestColumns = []interface{}{
	"sequence_id", "patient_name", "blood_type", "region", "facility_name",
	"latitude", "longitude", "emergency_contact", "secondary_contact", "urgency", "created_at",
}

// SnapshotAdapter stores the registry and ledger in PostgreSQL. Every Save
// replaces the tables' contents in one transaction.
type SnapshotAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSnapshotAdapter creates a new snapshot adapter
func NewSnapshotAdapter(client *postgres.Client) *SnapshotAdapter {
	return &SnapshotAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var _ providers.SnapshotStore = (*SnapshotAdapter)(nil)

// EnsureSchema creates the snapshot tables if they do not exist.
func (a *SnapshotAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := a.client.DB().ExecContext(ctx, snapshotSchema); err != nil {
		return apperrors.NewInternalError("failed to create snapshot schema", err)
	}
	return nil
}

// Save replaces the stored snapshot
func (a *SnapshotAdapter) Save(ctx context.Context, snapshot entities.Snapshot) error {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin snapshot transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{donorsTable, requestsTable} {
		query, args, err := a.db.Delete(table).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build delete query", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return apperrors.NewInternalError("failed to clear "+table, err)
		}
	}

	if len(snapshot.Donors) > 0 {
		rows := make([]interface{}, len(snapshot.Donors))
		for i, d := range snapshot.Donors {
			rows[i] = goqu.Record{
				"position":      i + 1,
				"id":            d.ID,
				"name":          d.Name,
				"blood_type":    string(d.BloodType),
				"region":        d.Region,
				"facility_name": d.FacilityName,
				"latitude":      d.Location.Latitude,
				"longitude":     d.Location.Longitude,
				"phone":         d.Phone,
				"registered_at": d.RegisteredAt,
			}
		}
		if err := a.insert(ctx, tx, donorsTable, rows); err != nil {
			return err
		}
	}

	if len(snapshot.Requests) > 0 {
		rows := make([]interface{}, len(snapshot.Requests))
		for i, r := range snapshot.Requests {
			rows[i] = goqu.Record{
				"sequence_id":       r.SequenceID,
				"patient_name":      r.PatientName,
				"blood_type":        string(r.BloodType),
				"region":            r.Region,
				"facility_name":     r.Facility.Name,
				"latitude":          r.Facility.Location.Latitude,
				"longitude":         r.Facility.Location.Longitude,
				"emergency_contact": r.Facility.EmergencyContact,
				"secondary_contact": r.Facility.SecondaryContact,
				"urgency":           r.Urgency,
				"created_at":        r.CreatedAt,
			}
		}
		if err := a.insert(ctx, tx, requestsTable, rows); err != nil {
			return err
		}
	}

	savedAt := snapshot.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now().UTC()
	}
	query, args, err := a.db.Insert(metaTable).
		Rows(goqu.Record{"id": metaRowID, "saved_at": savedAt}).
		OnConflict(goqu.DoUpdate("id", goqu.Record{"saved_at": savedAt})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build snapshot meta query", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to record snapshot time", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit snapshot", err)
	}
	return nil
}

func (a *SnapshotAdapter) insert(ctx context.Context, tx *sql.Tx, table string, rows []interface{}) error {
	query, args, err := a.db.Insert(table).Rows(rows...).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to insert into "+table, err)
	}
	return nil
}

// Load returns the stored snapshot, or an empty one if none exists
func (a *SnapshotAdapter) Load(ctx context.Context) (entities.Snapshot, error) {
	snapshot := entities.Snapshot{
		Donors:   []entities.Donor{},
		Requests: []entities.EmergencyRequest{},
	}

	donors, err := a.loadDonors(ctx)
	if err != nil {
		return entities.Snapshot{}, err
	}
	snapshot.Donors = donors

	requests, err := a.loadRequests(ctx)
	if err != nil {
		return entities.Snapshot{}, err
	}
	snapshot.Requests = requests

	query, args, err := a.db.From(metaTable).Select("saved_at").Where(goqu.Ex{"id": metaRowID}).ToSQL()
	if err != nil {
		return entities.Snapshot{}, apperrors.NewInternalError("failed to build snapshot meta query", err)
	}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&snapshot.SavedAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return entities.Snapshot{}, apperrors.NewInternalError("failed to load snapshot time", err)
	}

	return snapshot, nil
}

func (a *SnapshotAdapter) loadDonors(ctx context.Context) ([]entities.Donor, error) {
	query, args, err := a.db.From(donorsTable).Select(donorColumns...).Order(goqu.I("position").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build donors query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load donors", err)
	}
	defer rows.Close()

	donors := []entities.Donor{}
	for rows.Next() {
		var (
			d         entities.Donor
			position  int
			bloodType string
		)
		if err := rows.Scan(
			&position,
			&d.ID,
			&d.Name,
			&bloodType,
			&d.Region,
			&d.FacilityName,
			&d.Location.Latitude,
			&d.Location.Longitude,
			&d.Phone,
			&d.RegisteredAt,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan donor", err)
		}
		d.BloodType = entities.BloodType(bloodType)
		donors = append(donors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate donors", err)
	}
	return donors, nil
}

func (a *SnapshotAdapter) loadRequests(ctx context.Context) ([]entities.EmergencyRequest, error) {
	query, args, err := a.db.From(requestsTable).Select(requestColumns...).Order(goqu.I("sequence_id").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build requests query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load emergency requests", err)
	}
	defer rows.Close()

	requests := []entities.EmergencyRequest{}
	for rows.Next() {
		var (
			r         entities.EmergencyRequest
			bloodType string
		)
		if err := rows.Scan(
			&r.SequenceID,
			&r.PatientName,
			&bloodType,
			&r.Region,
			&r.Facility.Name,
			&r.Facility.Location.Latitude,
			&r.Facility.Location.Longitude,
			&r.Facility.EmergencyContact,
			&r.Facility.SecondaryContact,
			&r.Urgency,
			&r.CreatedAt,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan emergency request", err)
		}
		r.BloodType = entities.BloodType(bloodType)
		r.Facility.Region = r.Region
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate emergency requests", err)
	}
	return requests, nil
}
