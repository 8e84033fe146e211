package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"eventtickets/internal/domain"
)

var buyerColumnList = []string{"id", "email", "name", "city", "gender", "age", "created_at"}

func TestBuyerRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, email, name, city, gender, age, created_at`).
					WithArgs("buyer-1").
					WillReturnRows(sqlmock.NewRows(buyerColumnList).
						AddRow("buyer-1", "ana@example.com", "Ana", "Lisbon", "Female", 31, created))
			},
		},
		{
			name: "not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, email, name, city, gender, age, created_at`).
					WithArgs("buyer-1").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewBuyerRepository(db)
			buyer, err := repo.GetByID(ctx, "buyer-1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "ana@example.com", buyer.Email)
			require.NotNil(t, buyer.Age)
			require.Equal(t, 31, *buyer.Age)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBuyerRepository_GetByEmail_NormalizesEmail(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM buyers`).
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows(buyerColumnList).
			AddRow("buyer-1", "ana@example.com", "Ana", "Lisbon", "Female", nil, created))

	repo := NewBuyerRepository(db)
	buyer, err := repo.GetByEmail(ctx, "  Ana@Example.com ")
	require.NoError(t, err)
	require.Equal(t, "buyer-1", buyer.ID)
	require.Nil(t, buyer.Age)
	require.NoError(t, mock.ExpectationsWereMet())
}
