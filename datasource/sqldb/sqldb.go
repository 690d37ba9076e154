package sqldb

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func init() {
	sql.Register("hologres", &HologresDriver{})
}

// HologresDriver is the postgres driver with a short statement timeout set
// on every new connection.
type HologresDriver struct {
	driver pq.Driver
}

func (d HologresDriver) Open(name string) (driver.Conn, error) {
	conn, err := d.driver.Open(name)
	if err != nil {
		return nil, err
	}

	if stmt, err := conn.Prepare("set statement_timeout = 500"); err == nil {
		stmt.Exec(nil)
		stmt.Close()
	}
	return conn, nil
}

type SQLDB struct {
	Name         string
	DriverName   string
	DSN          string
	DB           *sql.DB
	RegisterTime time.Time
}

var sqlInstances sync.Map

func (m *SQLDB) Init() error {
	db, err := sql.Open(m.DriverName, m.DSN)
	if err != nil {
		return err
	}

	db.SetConnMaxLifetime(60 * time.Minute)
	if m.DriverName == "sqlite" {
		// an in-memory sqlite database lives inside a single connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxIdleConns(50)
		db.SetMaxOpenConns(100)
	}

	m.DB = db
	return m.DB.Ping()
}

// RegisterSQLDB opens a pool for driverName ("mysql", "hologres" or "sqlite")
// and stores it under name. An existing registration younger than 12 hours is kept.
func RegisterSQLDB(name, driverName, dsn string) error {
	if value, ok := sqlInstances.Load(name); ok {
		if instance, ok := value.(*SQLDB); ok && instance.DSN == dsn && time.Since(instance.RegisterTime) < 12*time.Hour {
			return nil
		}
	}
	m := &SQLDB{
		Name:         name,
		DriverName:   driverName,
		DSN:          dsn,
		RegisterTime: time.Now(),
	}
	if err := m.Init(); err != nil {
		return fmt.Errorf("register %s database %s: %w", driverName, name, err)
	}
	if old, loaded := sqlInstances.Swap(name, m); loaded {
		if instance, ok := old.(*SQLDB); ok && instance.DB != nil {
			instance.DB.Close()
		}
	}
	return nil
}

// RegisterDB stores a pool opened by the caller.
func RegisterDB(name, driverName string, db *sql.DB) {
	sqlInstances.Store(name, &SQLDB{Name: name, DriverName: driverName, DB: db, RegisterTime: time.Now()})
}

func GetSQLDB(name string) (*SQLDB, error) {
	value, ok := sqlInstances.Load(name)
	if !ok {
		return nil, fmt.Errorf("SQLDB not found, name:%s", name)
	}

	instance, ok := value.(*SQLDB)
	if !ok {
		return nil, fmt.Errorf("SQLDB not found, name:%s", name)
	}

	return instance, nil
}

func RemoveSQLDB(name string) {
	value, ok := sqlInstances.LoadAndDelete(name)
	if !ok {
		return
	}
	if instance, ok := value.(*SQLDB); ok && instance.DB != nil {
		instance.DB.Close()
	}
}
