package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/worktrack/timeclock-api/internal/models"
)

// EmployeeRepository reads employee identity records. The core only consumes
// ids, names and the active flag; employee administration lives elsewhere.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs the repository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeColumns = "id, first_name, last_name, qr_token, is_active, created_at"

// ListActive returns active employees ordered by name.
func (r *EmployeeRepository) ListActive(ctx context.Context) ([]models.Employee, error) {
	query := fmt.Sprintf(`SELECT %s FROM employees WHERE is_active = TRUE ORDER BY last_name ASC, first_name ASC`, employeeColumns)
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query); err != nil {
		return nil, fmt.Errorf("list active employees: %w", err)
	}
	return employees, nil
}

// ListAll returns every employee ordered by name, active or not.
func (r *EmployeeRepository) ListAll(ctx context.Context) ([]models.Employee, error) {
	query := fmt.Sprintf(`SELECT %s FROM employees ORDER BY last_name ASC, first_name ASC`, employeeColumns)
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}

// GetByID returns an employee by id, or nil when absent.
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	query := fmt.Sprintf(`SELECT %s FROM employees WHERE id = $1`, employeeColumns)
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return &employee, nil
}

// GetByQRToken resolves the badge token presented at the tablet, or nil.
func (r *EmployeeRepository) GetByQRToken(ctx context.Context, token string) (*models.Employee, error) {
	query := fmt.Sprintf(`SELECT %s FROM employees WHERE qr_token = $1`, employeeColumns)
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee by qr token: %w", err)
	}
	return &employee, nil
}
