package folders

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPGRepoCreateMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO folders").
		WithArgs("f1", "Max Smith", "org-1", "u1").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "folders_user_id_key"})

	repo := &PGRepo{DB: db}
	err = repo.Create(context.Background(), Folder{ID: "f1", Name: "Max Smith", OrganizationID: "org-1", UserID: "u1"})
	if err != ErrUserHasFolder {
		t.Fatalf("expected ErrUserHasFolder, got %v", err)
	}
}

func TestPGRepoCreateNullUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO folders").
		WithArgs("f1", "Shared", "org-1", nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := &PGRepo{DB: db}
	if err := repo.Create(context.Background(), Folder{ID: "f1", Name: "Shared", OrganizationID: "org-1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
}

func TestPGRepoGetByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "name", "organization_id", "user_id", "created_at"}).
		AddRow("f1", "Max Smith", "org-1", "u1", time.Now())
	mock.ExpectQuery("FROM folders WHERE user_id").WithArgs("u1").WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	folder, err := repo.GetByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if folder.ID != "f1" || folder.UserID != "u1" {
		t.Fatalf("unexpected folder %+v", folder)
	}
}
