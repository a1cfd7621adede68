package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
	"github.com/zatekoja/blooddonorconnect/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/blooddonorconnect/backend/pkg/errors"
	"github.com/zatekoja/blooddonorconnect/backend/pkg/geo"
)

func setupMockDB(t *testing.T) (*SnapshotAdapter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSnapshotAdapter(postgres.NewFromDB(db)), mock
}

var (
	registeredAt = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	tata         = entities.Facility{
		Name:             "Tata Memorial Hospital",
		Region:           "mumbai",
		Location:         geo.Point{Latitude: 19.0048, Longitude: 72.8435},
		EmergencyContact: "022-24177000",
		SecondaryContact: "022-24177000",
	}
)

func sampleSnapshot() entities.Snapshot {
	return entities.Snapshot{
		Donors: []entities.Donor{{
			ID:           "d-1",
			Name:         "Asha",
			BloodType:    entities.BloodTypeOPositive,
			Region:       "mumbai",
			FacilityName: tata.Name,
			Location:     tata.Location,
			Phone:        "9820000001",
			RegisteredAt: registeredAt,
		}},
		Requests: []entities.EmergencyRequest{{
			SequenceID:  1,
			PatientName: "Ravi",
			BloodType:   entities.BloodTypeOPositive,
			Region:      "mumbai",
			Facility:    tata,
			Urgency:     "high",
			CreatedAt:   registeredAt,
		}},
		SavedAt: registeredAt,
	}
}

func TestSnapshotAdapter_EnsureSchema(t *testing.T) {
	a, mock := setupMockDB(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS donors`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, a.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotAdapter_Save(t *testing.T) {
	t.Run("replaces all tables in one transaction", func(t *testing.T) {
		a, mock := setupMockDB(t)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "donors"`).WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(`DELETE FROM "emergency_requests"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "donors"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "emergency_requests"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "snapshot_meta"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, a.Save(context.Background(), sampleSnapshot()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips inserts for an empty snapshot", func(t *testing.T) {
		a, mock := setupMockDB(t)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "donors"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM "emergency_requests"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO "snapshot_meta"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, a.Save(context.Background(), entities.Snapshot{}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when an insert fails", func(t *testing.T) {
		a, mock := setupMockDB(t)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "donors"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM "emergency_requests"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO "donors"`).WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := a.Save(context.Background(), sampleSnapshot())
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSnapshotAdapter_Load(t *testing.T) {
	t.Run("reads donors and requests in order", func(t *testing.T) {
		a, mock := setupMockDB(t)

		mock.ExpectQuery(`SELECT .* FROM "donors"`).WillReturnRows(
			sqlmock.NewRows([]string{"position", "id", "name", "blood_type", "region", "facility_name", "latitude", "longitude", "phone", "registered_at"}).
				AddRow(1, "d-1", "Asha", "O+", "mumbai", tata.Name, tata.Location.Latitude, tata.Location.Longitude, "9820000001", registeredAt),
		)
		mock.ExpectQuery(`SELECT .* FROM "emergency_requests"`).WillReturnRows(
			sqlmock.NewRows([]string{"sequence_id", "patient_name", "blood_type", "region", "facility_name", "latitude", "longitude", "emergency_contact", "secondary_contact", "urgency", "created_at"}).
				AddRow(1, "Ravi", "O+", "mumbai", tata.Name, tata.Location.Latitude, tata.Location.Longitude, tata.EmergencyContact, tata.SecondaryContact, "high", registeredAt),
		)
		mock.ExpectQuery(`SELECT "saved_at" FROM "snapshot_meta"`).WillReturnRows(
			sqlmock.NewRows([]string{"saved_at"}).AddRow(registeredAt),
		)

		got, err := a.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, sampleSnapshot(), got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns an empty snapshot for empty tables", func(t *testing.T) {
		a, mock := setupMockDB(t)

		mock.ExpectQuery(`FROM "donors"`).WillReturnRows(sqlmock.NewRows([]string{"position"}))
		mock.ExpectQuery(`FROM "emergency_requests"`).WillReturnRows(sqlmock.NewRows([]string{"sequence_id"}))
		mock.ExpectQuery(`FROM "snapshot_meta"`).WillReturnRows(sqlmock.NewRows([]string{"saved_at"}))

		got, err := a.Load(context.Background())
		require.NoError(t, err)
		assert.True(t, got.IsEmpty())
		assert.NotNil(t, got.Donors)
		assert.True(t, got.SavedAt.IsZero())
	})

	t.Run("wraps query failures", func(t *testing.T) {
		a, mock := setupMockDB(t)
		mock.ExpectQuery(`FROM "donors"`).WillReturnError(errors.New("connection reset"))

		_, err := a.Load(context.Background())
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
	})
}
