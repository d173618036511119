// Package catalogdb 目录库的 gorm 实现
package catalogdb

import (
	"github.com/gowvp/owlview/internal/core/catalog"
	"gorm.io/gorm"
)

var _ catalog.Storer = DB{}

// DB Related business namespaces
type DB struct {
	db *gorm.DB
}

// NewDB instance object
func NewDB(db *gorm.DB) DB {
	return DB{db: db}
}

// Camera Get business instance
func (d DB) Camera() catalog.CameraStorer {
	return Table[catalog.Camera]{db: d.db}
}

// Recording Get business instance
func (d DB) Recording() catalog.RecordingStorer {
	return Table[catalog.Recording]{db: d.db}
}

// Event Get business instance
func (d DB) Event() catalog.EventStorer {
	return Table[catalog.Event]{db: d.db}
}

// AutoMigrate sync database
func (d DB) AutoMigrate(ok bool) DB {
	if !ok {
		return d
	}
	if err := d.db.AutoMigrate(
		new(catalog.Camera),
		new(catalog.Recording),
		new(catalog.Event),
	); err != nil {
		panic(err)
	}
	return d
}
