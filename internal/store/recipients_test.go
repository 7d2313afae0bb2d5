package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/graymont/rent-reminder/internal/recipients"
)

func recipientRows(recs ...Recipient) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "name", "phone_number", "send_flag", "position", "created_at", "updated_at"})
	for _, r := range recs {
		rows.AddRow(r.ID, r.Name, r.PhoneNumber, r.SendFlag, r.Position, r.CreatedAt, r.UpdatedAt)
	}
	return rows
}

func TestRecipientStore_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now()
	a := Recipient{ID: uuid.New(), Name: "Alice", PhoneNumber: "+15551230000", SendFlag: true, Position: 0, CreatedAt: now, UpdatedAt: now}
	b := Recipient{ID: uuid.New(), Name: "Bob", PhoneNumber: "", SendFlag: false, Position: 1, CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery("FROM reminder_recipients").WillReturnRows(recipientRows(a, b))

	got, err := NewRecipientStore(db).List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List() returned %d rows, want 2", len(got))
	}
	if got[0].Name != "Alice" || got[1].Name != "Bob" {
		t.Errorf("List() order = %s, %s", got[0].Name, got[1].Name)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRecipientStore_GetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery("FROM reminder_recipients").WithArgs(id).WillReturnRows(recipientRows())

	_, err = NewRecipientStore(db).Get(context.Background(), id)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestRecipientStore_ReplaceAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	records := []recipients.Record{
		{Name: "Alice", PhoneNumber: "+15551230000", SendFlag: true},
		{Name: "Bob", PhoneNumber: "+15551230001", SendFlag: false},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM reminder_recipients").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO reminder_recipients").
		WithArgs(sqlmock.AnyArg(), "Alice", "+15551230000", true, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO reminder_recipients").
		WithArgs(sqlmock.AnyArg(), "Bob", "+15551230001", false, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := NewRecipientStore(db).ReplaceAll(context.Background(), records); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRecipientStore_ReplaceAllRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM reminder_recipients").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO reminder_recipients").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err = NewRecipientStore(db).ReplaceAll(context.Background(), []recipients.Record{{Name: "Alice"}})
	if err == nil {
		t.Fatal("ReplaceAll() succeeded, want error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRecipientStore_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec("DELETE FROM reminder_recipients").WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := NewRecipientStore(db).Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	// Second delete: no rows affected
	mock.ExpectExec("DELETE FROM reminder_recipients").WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := NewRecipientStore(db).Delete(context.Background(), id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestRecipientStore_ListSendable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now()
	a := Recipient{ID: uuid.New(), Name: "Alice", PhoneNumber: "+15551230000", SendFlag: true, CreatedAt: now, UpdatedAt: now}
	mock.ExpectQuery("send_flag = TRUE").WillReturnRows(recipientRows(a))

	got, err := NewRecipientStore(db).ListSendable(context.Background())
	if err != nil {
		t.Fatalf("ListSendable() error = %v", err)
	}
	if len(got) != 1 || got[0].Name != "Alice" {
		t.Errorf("ListSendable() = %+v", got)
	}
}
