package catalogdb

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gowvp/owlview/internal/core/catalog"
	"github.com/ixugo/goddd/pkg/orm"
	"github.com/ixugo/goddd/pkg/web"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func generateMockDB() (*gorm.DB, sqlmock.Sqlmock, error) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		return nil, nil, err
	}
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	return db, mock, err
}

func TestRecordingGet(t *testing.T) {
	db, mock, err := generateMockDB()
	if err != nil {
		t.Fatal(err)
	}
	store := NewDB(db).Recording()

	mock.ExpectQuery(`SELECT \* FROM "recordings" WHERE id=\$1 (.+) LIMIT \$2`).
		WithArgs(int64(7), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cid", "filename"}).AddRow(7, "cam1", "a.mp4"))

	var out catalog.Recording
	if err := store.Get(context.Background(), &out, orm.Where("id=?", int64(7))); err != nil {
		t.Fatal(err)
	}
	if out.ID != 7 || out.CID != "cam1" || out.Filename != "a.mp4" {
		t.Fatalf("Get = %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal("ExpectationsWereMet err:", err)
	}
}

func TestEventFind(t *testing.T) {
	db, mock, err := generateMockDB()
	if err != nil {
		t.Fatal(err)
	}
	store := NewDB(db).Event()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "events" WHERE cid = \$1`).
		WithArgs("cam1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT \* FROM "events" WHERE cid = \$1 ORDER BY (.+) LIMIT \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cid", "type", "started_at"}).
			AddRow(2, "cam1", "person", 1700000060000).
			AddRow(1, "cam1", "motion", 1700000000000))

	var items []*catalog.Event
	pager := web.PagerFilter{Page: 1, Size: 10}
	total, err := store.Find(context.Background(), &items, &pager,
		orm.Where("cid = ?", "cam1"),
		orm.OrderBy("started_at DESC"),
	)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(items) != 2 || items[0].Type != "person" {
		t.Fatalf("Find = %d %+v", total, items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal("ExpectationsWereMet err:", err)
	}
}

func TestFindEmptySkipsSelect(t *testing.T) {
	db, mock, err := generateMockDB()
	if err != nil {
		t.Fatal(err)
	}
	mock.ExpectQuery(`SELECT count\(\*\) FROM "cameras"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	var items []*catalog.Camera
	total, err := NewDB(db).Camera().Find(context.Background(), &items, nil)
	if err != nil || total != 0 || len(items) != 0 {
		t.Fatalf("Find = %d %v %v", total, items, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal("ExpectationsWereMet err:", err)
	}
}

func TestRecordingDel(t *testing.T) {
	db, mock, err := generateMockDB()
	if err != nil {
		t.Fatal(err)
	}
	mock.ExpectExec(`DELETE FROM "recordings" WHERE id=\$1`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	var out catalog.Recording
	if err := NewDB(db).Recording().Del(context.Background(), &out, orm.Where("id=?", int64(3))); err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal("ExpectationsWereMet err:", err)
	}
}
