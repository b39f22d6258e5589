package db

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"salarypredict/ml"
)

var ErrNonFiniteSalary = errors.New("predicted salary is not finite")

const schema = `
CREATE TABLE IF NOT EXISTS employees (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    age REAL NOT NULL,
    gender TEXT NOT NULL,
    education_level TEXT NOT NULL,
    job_title TEXT NOT NULL,
    years_of_experience REAL NOT NULL,
    created_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS predictions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    employee_id INTEGER NOT NULL REFERENCES employees(id),
    predicted_salary REAL NOT NULL,
    model_version TEXT NOT NULL,
    created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_predictions_employee ON predictions(employee_id);
CREATE TABLE IF NOT EXISTS training_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    model_version TEXT NOT NULL,
    mae REAL,
    mse REAL,
    r2 REAL,
    train_rows INTEGER NOT NULL,
    test_rows INTEGER NOT NULL,
    dropped_rows INTEGER NOT NULL DEFAULT 0,
    trained_at DATETIME NOT NULL
);
`

// Store is the append-only SQLite store for submissions and training runs.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies the schema.
// Writes go through a single connection, so concurrent requests are
// serialized by the pool.
func Open(path string) (*Store, error) {
	database, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	database.SetMaxOpenConns(1)

	if _, err := database.Exec(schema); err != nil {
		database.Close()
		return nil, err
	}
	return &Store{db: database, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// StoredPrediction is one submitted record with the salary predicted for it.
type StoredPrediction struct {
	EmployeeID      int64     `json:"employee_id"`
	Record          ml.Record `json:"record"`
	PredictedSalary float64   `json:"predicted_salary"`
	ModelVersion    string    `json:"model_version"`
	CreatedAt       time.Time `json:"created_at"`
}

// SavePrediction stores the employee row and its prediction in one
// transaction and returns the new employee id.
func (s *Store) SavePrediction(ctx context.Context, rec ml.Record, salary float64, modelVersion string) (int64, error) {
	if math.IsNaN(salary) || math.IsInf(salary, 0) {
		return 0, ErrNonFiniteSalary
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	now := s.now().UTC()
	res, err := tx.ExecContext(ctx, `
        INSERT INTO employees (age, gender, education_level, job_title, years_of_experience, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Age, rec.Gender, rec.EducationLevel, rec.JobTitle, rec.YearsOfExperience, now)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	employeeID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return 0, err
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO predictions (employee_id, predicted_salary, model_version, created_at)
        VALUES (?, ?, ?, ?)`,
		employeeID, salary, modelVersion, now)
	if err != nil {
		tx.Rollback()
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return employeeID, nil
}

// ListPredictions returns stored submissions newest first. limit <= 0 returns
// every row.
func (s *Store) ListPredictions(ctx context.Context, limit int) ([]StoredPrediction, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT e.id, e.age, e.gender, e.education_level, e.job_title, e.years_of_experience,
               p.predicted_salary, p.model_version, e.created_at
        FROM employees e
        JOIN predictions p ON p.employee_id = e.id
        ORDER BY e.created_at DESC, e.id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	predictions := make([]StoredPrediction, 0)
	for rows.Next() {
		var p StoredPrediction
		if err := rows.Scan(&p.EmployeeID, &p.Record.Age, &p.Record.Gender, &p.Record.EducationLevel,
			&p.Record.JobTitle, &p.Record.YearsOfExperience, &p.PredictedSalary, &p.ModelVersion, &p.CreatedAt); err != nil {
			return nil, err
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

type TrainingLog struct {
	ModelVersion string      `json:"model_version"`
	Metrics      *ml.Metrics `json:"metrics,omitempty"`
	TrainRows    int         `json:"train_rows"`
	TestRows     int         `json:"test_rows"`
	DroppedRows  int         `json:"dropped_rows"`
	TrainedAt    time.Time   `json:"trained_at"`
}

func (s *Store) SaveTrainingLog(ctx context.Context, entry TrainingLog) error {
	if entry.ModelVersion == "" {
		return errors.New("model version required")
	}
	var mae, mse, r2 sql.NullFloat64
	if entry.Metrics != nil {
		mae = sql.NullFloat64{Float64: entry.Metrics.MAE, Valid: true}
		mse = sql.NullFloat64{Float64: entry.Metrics.MSE, Valid: true}
		r2 = sql.NullFloat64{Float64: entry.Metrics.R2, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO training_log (model_version, mae, mse, r2, train_rows, test_rows, dropped_rows, trained_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ModelVersion, mae, mse, r2, entry.TrainRows, entry.TestRows, entry.DroppedRows, entry.TrainedAt.UTC())
	return err
}

func (s *Store) LoadTrainingLog(ctx context.Context) ([]TrainingLog, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT model_version, mae, mse, r2, train_rows, test_rows, dropped_rows, trained_at
        FROM training_log
        ORDER BY trained_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]TrainingLog, 0)
	for rows.Next() {
		var entry TrainingLog
		var mae, mse, r2 sql.NullFloat64
		if err := rows.Scan(&entry.ModelVersion, &mae, &mse, &r2, &entry.TrainRows, &entry.TestRows,
			&entry.DroppedRows, &entry.TrainedAt); err != nil {
			return nil, err
		}
		if mae.Valid && mse.Valid && r2.Valid {
			entry.Metrics = &ml.Metrics{MAE: mae.Float64, MSE: mse.Float64, R2: r2.Float64}
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
