// Package catalog хранилище справочных сущностей платформы:
// организации, филиалы, ресурсы и шаблоны расписания.
// Чистый CRUD вокруг движка резервирования, без инвариантов вместимости.
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
	"github.com/m04kA/SMC-TimeslotService/pkg/dbmetrics"
	"github.com/m04kA/SMC-TimeslotService/pkg/psqlbuilder"
)

// Repository репозиторий справочника
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория справочника
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// ---------- Organizations ----------

// CreateOrganization создает организацию
func (r *Repository) CreateOrganization(ctx context.Context, org *domain.Organization) (*domain.Organization, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("organizations").
		Columns("name").
		Values(org.Name).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateOrganization - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&org.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: CreateOrganization - execute insert: %v", ErrExecQuery, err)
	}

	org.CreatedAt = createdAt.Time
	org.UpdatedAt = updatedAt.Time
	return org, nil
}

// ListOrganizations получает все организации, отсортированные по имени
func (r *Repository) ListOrganizations(ctx context.Context) ([]*domain.Organization, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "created_at", "updated_at").
		From("organizations").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListOrganizations - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOrganizations - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	orgs := make([]*domain.Organization, 0)
	for rows.Next() {
		var org domain.Organization
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&org.ID, &org.Name, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: ListOrganizations - scan row: %v", ErrScanRow, err)
		}
		org.CreatedAt = createdAt.Time
		org.UpdatedAt = updatedAt.Time
		orgs = append(orgs, &org)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListOrganizations - rows error: %v", ErrScanRow, err)
	}
	return orgs, nil
}

// GetOrganization получает организацию по ID
func (r *Repository) GetOrganization(ctx context.Context, id int64) (*domain.Organization, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "created_at", "updated_at").
		From("organizations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetOrganization - build select query: %v", ErrBuildQuery, err)
	}

	var org domain.Organization
	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&org.ID, &org.Name, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetOrganization - scan organization: %v", ErrScanRow, err)
	}

	org.CreatedAt = createdAt.Time
	org.UpdatedAt = updatedAt.Time
	return &org, nil
}

// UpdateOrganization обновляет имя организации
func (r *Repository) UpdateOrganization(ctx context.Context, id int64, name string) error {
	return r.execUpdate(ctx, "UpdateOrganization", ErrOrganizationNotFound,
		psqlbuilder.Update("organizations").
			Set("name", name).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": id}))
}

// DeleteOrganization удаляет организацию
func (r *Repository) DeleteOrganization(ctx context.Context, id int64) error {
	return r.execDelete(ctx, "DeleteOrganization", ErrOrganizationNotFound,
		psqlbuilder.Delete("organizations").Where(squirrel.Eq{"id": id}))
}

// ---------- Branches ----------

var branchColumns = []string{"id", "org_id", "name", "timezone", "active", "created_at", "updated_at"}

// CreateBranch создает филиал организации
func (r *Repository) CreateBranch(ctx context.Context, b *domain.Branch) (*domain.Branch, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("branches").
		Columns("org_id", "name", "timezone", "active").
		Values(b.OrgID, b.Name, b.Timezone, b.Active).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateBranch - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&b.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: CreateBranch - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time
	return b, nil
}

// ListBranches получает филиалы организации.
// Если onlyActive - только активные (публичная выдача).
func (r *Repository) ListBranches(ctx context.Context, orgID int64, onlyActive bool) ([]*domain.Branch, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(branchColumns...).
		From("branches").
		Where(squirrel.Eq{"org_id": orgID}).
		OrderBy("name ASC")
	if onlyActive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"active": true})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListBranches - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListBranches - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	branches := make([]*domain.Branch, 0)
	for rows.Next() {
		var b domain.Branch
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&b.ID, &b.OrgID, &b.Name, &b.Timezone, &b.Active, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: ListBranches - scan row: %v", ErrScanRow, err)
		}
		b.CreatedAt = createdAt.Time
		b.UpdatedAt = updatedAt.Time
		branches = append(branches, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListBranches - rows error: %v", ErrScanRow, err)
	}
	return branches, nil
}

// UpdateBranch обновляет филиал
func (r *Repository) UpdateBranch(ctx context.Context, id int64, name, timezone string, active bool) error {
	return r.execUpdate(ctx, "UpdateBranch", ErrBranchNotFound,
		psqlbuilder.Update("branches").
			Set("name", name).
			Set("timezone", timezone).
			Set("active", active).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": id}))
}

// DeleteBranch удаляет филиал
func (r *Repository) DeleteBranch(ctx context.Context, id int64) error {
	return r.execDelete(ctx, "DeleteBranch", ErrBranchNotFound,
		psqlbuilder.Delete("branches").Where(squirrel.Eq{"id": id}))
}

// ---------- Resources ----------

var resourceColumns = []string{"id", "branch_id", "name", "description", "capacity", "active", "created_at", "updated_at"}

// CreateResource создает ресурс в филиале
func (r *Repository) CreateResource(ctx context.Context, res *domain.Resource) (*domain.Resource, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("resources").
		Columns("branch_id", "name", "description", "capacity", "active").
		Values(res.BranchID, res.Name, res.Description, res.Capacity, res.Active).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateResource - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&res.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: CreateResource - execute insert: %v", ErrExecQuery, err)
	}

	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time
	return res, nil
}

// GetResource получает ресурс по ID.
// Используется движком для проверки ссылок до захвата блокировки слота.
func (r *Repository) GetResource(ctx context.Context, id int64) (*domain.Resource, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(resourceColumns...).
		From("resources").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetResource - build select query: %v", ErrBuildQuery, err)
	}

	var res domain.Resource
	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&res.ID, &res.BranchID, &res.Name, &res.Description, &res.Capacity, &res.Active, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrResourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetResource - scan resource: %v", ErrScanRow, err)
	}

	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time
	return &res, nil
}

// ListResources получает ресурсы филиала.
// Если onlyActive - только активные (публичная выдача).
func (r *Repository) ListResources(ctx context.Context, branchID int64, onlyActive bool) ([]*domain.Resource, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(resourceColumns...).
		From("resources").
		Where(squirrel.Eq{"branch_id": branchID}).
		OrderBy("name ASC")
	if onlyActive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"active": true})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListResources - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListResources - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	resources := make([]*domain.Resource, 0)
	for rows.Next() {
		var res domain.Resource
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&res.ID, &res.BranchID, &res.Name, &res.Description, &res.Capacity, &res.Active, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: ListResources - scan row: %v", ErrScanRow, err)
		}
		res.CreatedAt = createdAt.Time
		res.UpdatedAt = updatedAt.Time
		resources = append(resources, &res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListResources - rows error: %v", ErrScanRow, err)
	}
	return resources, nil
}

// UpdateResource обновляет ресурс
func (r *Repository) UpdateResource(ctx context.Context, id int64, name string, description *string, capacity int, active bool) error {
	return r.execUpdate(ctx, "UpdateResource", ErrResourceNotFound,
		psqlbuilder.Update("resources").
			Set("name", name).
			Set("description", description).
			Set("capacity", capacity).
			Set("active", active).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": id}))
}

// DeleteResource удаляет ресурс
func (r *Repository) DeleteResource(ctx context.Context, id int64) error {
	return r.execDelete(ctx, "DeleteResource", ErrResourceNotFound,
		psqlbuilder.Delete("resources").Where(squirrel.Eq{"id": id}))
}

// ---------- Schedule templates ----------

var templateColumns = []string{"id", "resource_id", "day_of_week", "start_time", "end_time", "max_capacity", "created_at", "updated_at"}

// CreateTemplate создает шаблон расписания ресурса
func (r *Repository) CreateTemplate(ctx context.Context, t *domain.ScheduleTemplate) (*domain.ScheduleTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("schedule_templates").
		Columns("resource_id", "day_of_week", "start_time", "end_time", "max_capacity").
		Values(t.ResourceID, t.DayOfWeek, t.StartTime, t.EndTime, t.MaxCapacity).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateTemplate - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&t.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: CreateTemplate - execute insert: %v", ErrExecQuery, err)
	}

	t.CreatedAt = createdAt.Time
	t.UpdatedAt = updatedAt.Time
	return t, nil
}

// ListTemplates получает шаблоны расписания ресурса
func (r *Repository) ListTemplates(ctx context.Context, resourceID int64) ([]*domain.ScheduleTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(templateColumns...).
		From("schedule_templates").
		Where(squirrel.Eq{"resource_id": resourceID}).
		OrderBy("day_of_week, start_time").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListTemplates - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListTemplates - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	templates := make([]*domain.ScheduleTemplate, 0)
	for rows.Next() {
		var t domain.ScheduleTemplate
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.ResourceID, &t.DayOfWeek, &t.StartTime, &t.EndTime, &t.MaxCapacity, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: ListTemplates - scan row: %v", ErrScanRow, err)
		}
		t.CreatedAt = createdAt.Time
		t.UpdatedAt = updatedAt.Time
		templates = append(templates, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListTemplates - rows error: %v", ErrScanRow, err)
	}
	return templates, nil
}

// UpdateTemplate обновляет шаблон расписания
func (r *Repository) UpdateTemplate(ctx context.Context, id int64, dayOfWeek int, startTime, endTime string, maxCapacity int) error {
	return r.execUpdate(ctx, "UpdateTemplate", ErrTemplateNotFound,
		psqlbuilder.Update("schedule_templates").
			Set("day_of_week", dayOfWeek).
			Set("start_time", startTime).
			Set("end_time", endTime).
			Set("max_capacity", maxCapacity).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": id}))
}

// DeleteTemplate удаляет шаблон расписания
func (r *Repository) DeleteTemplate(ctx context.Context, id int64) error {
	return r.execDelete(ctx, "DeleteTemplate", ErrTemplateNotFound,
		psqlbuilder.Delete("schedule_templates").Where(squirrel.Eq{"id": id}))
}

// ---------- helpers ----------

func (r *Repository) execUpdate(ctx context.Context, op string, notFound error, builder squirrel.UpdateBuilder) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}

func (r *Repository) execDelete(ctx context.Context, op string, notFound error, builder squirrel.DeleteBuilder) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build delete query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute delete: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
