package worker

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/graymont/rent-reminder/internal/schedule"
	"github.com/graymont/rent-reminder/internal/store"
)

func schedulerFixture(t *testing.T, sched schedule.Schedule) (*ReminderScheduler, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	enq := NewRunEnqueuer(store.NewRecipientStore(db), store.NewQueueStore(db), rdb)
	s := NewReminderScheduler(enq, func() schedule.Schedule { return sched }, rdb, db, 9)
	return s, mock
}

func expectEnqueue(mock sqlmock.Sqlmock, recID uuid.UUID) {
	now := time.Now()
	mock.ExpectQuery("send_flag = TRUE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "phone_number", "send_flag", "position", "created_at", "updated_at"}).
			AddRow(recID, "Alice", "+15551230000", true, 0, now, now))
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO reminder_runs").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
	prep := mock.ExpectPrepare("COPY")
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
}

func TestSchedulerEnqueuesOnMatch(t *testing.T) {
	s, mock := schedulerFixture(t, schedule.Schedule{Type: schedule.TypeEndOfMonth, DaysBeforeEnd: 3})
	expectEnqueue(mock, uuid.New())

	// 2026-08-28 is 3 days before end of August
	s.evaluate(context.Background(), time.Date(2026, time.August, 28, 9, 0, 0, 0, time.UTC))

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSchedulerSkipsWhenScheduleDoesNotMatch(t *testing.T) {
	s, mock := schedulerFixture(t, schedule.Schedule{Type: schedule.TypeEndOfMonth, DaysBeforeEnd: 3})

	s.evaluate(context.Background(), time.Date(2026, time.August, 10, 9, 0, 0, 0, time.UTC))

	// No queries at all
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSchedulerSkipsManualSchedule(t *testing.T) {
	s, mock := schedulerFixture(t, schedule.Schedule{Type: schedule.TypeManual})

	s.evaluate(context.Background(), time.Date(2026, time.August, 28, 9, 0, 0, 0, time.UTC))

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSchedulerLockPreventsDoubleEnqueue(t *testing.T) {
	s, mock := schedulerFixture(t, schedule.Schedule{Type: schedule.TypeDayOfMonth, DayOfMonth: 28})
	expectEnqueue(mock, uuid.New())

	now := time.Date(2026, time.August, 28, 9, 0, 0, 0, time.UTC)
	s.evaluate(context.Background(), now)
	// Second evaluation the same day: lock held, no further DB work expected.
	s.evaluate(context.Background(), now)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
