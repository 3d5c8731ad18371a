package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daykeep/backend/domain"
	"github.com/daykeep/backend/repository"
)

type groupRepository struct {
	pool *pgxpool.Pool
}

// NewGroupRepository returns a Postgres-backed implementation of GroupRepository.
func NewGroupRepository(pool *pgxpool.Pool) repository.GroupRepository {
	return &groupRepository{pool: pool}
}

func (r *groupRepository) GetByID(ctx context.Context, userID, id int64) (*domain.Group, error) {
	const query = `
	SELECT id, user_id, name, view_mode, sort_order, created_at, updated_at
	FROM groups
	WHERE id = $1 AND user_id = $2
	`
	row := r.pool.QueryRow(ctx, query, id, userID)
	return scanGroup(row)
}

func (r *groupRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Group, error) {
	const query = `
	SELECT id, user_id, name, view_mode, sort_order, created_at, updated_at
	FROM groups
	WHERE user_id = $1
	ORDER BY sort_order, id
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []domain.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *group)
	}
	return groups, rows.Err()
}

func (r *groupRepository) Create(ctx context.Context, group *domain.Group) (*domain.Group, error) {
	if group == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO groups (user_id, name, view_mode, sort_order)
	VALUES ($1, $2, $3, (
		SELECT COALESCE(MAX(sort_order), 0) + 1 FROM groups WHERE user_id = $1
	))
	RETURNING id, sort_order, created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		group.UserID,
		group.Name,
		group.ViewMode,
	).Scan(&group.ID, &group.SortOrder, &group.CreatedAt, &group.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewError(domain.ErrCodeDuplicate, "group with this name already exists")
		}
		return nil, err
	}

	return group, nil
}

func (r *groupRepository) Update(ctx context.Context, group *domain.Group) error {
	if group == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE groups
	SET name = $3,
		view_mode = $4,
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		group.ID,
		group.UserID,
		group.Name,
		group.ViewMode,
	).Scan(&group.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrGroupNotFound
		}
		if isUniqueViolation(err) {
			return domain.NewError(domain.ErrCodeDuplicate, "group with this name already exists")
		}
		return err
	}

	return nil
}

func (r *groupRepository) Delete(ctx context.Context, userID, id int64) error {
	const query = `DELETE FROM groups WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGroupNotFound
	}
	return nil
}

func (r *groupRepository) Reorder(ctx context.Context, userID int64, orderedIDs []int64) error {
	if len(orderedIDs) == 0 {
		return nil
	}

	const query = `
	UPDATE groups
	SET sort_order = $3, updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	`

	batch := &pgx.Batch{}
	for i, id := range orderedIDs {
		batch.Queue(query, id, userID, i+1)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range orderedIDs {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (r *groupRepository) GetPinGroup(ctx context.Context, userID, id int64) (*domain.PinGroup, error) {
	const query = `
	SELECT id, user_id, group_id, name, sort_order, created_at
	FROM pin_groups
	WHERE id = $1 AND user_id = $2
	`
	row := r.pool.QueryRow(ctx, query, id, userID)
	return scanPinGroup(row)
}

func (r *groupRepository) ListPinGroups(ctx context.Context, userID, groupID int64) ([]domain.PinGroup, error) {
	const query = `
	SELECT id, user_id, group_id, name, sort_order, created_at
	FROM pin_groups
	WHERE user_id = $1 AND ($2 = 0 OR group_id = $2)
	ORDER BY sort_order, id
	`
	rows, err := r.pool.Query(ctx, query, userID, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pinGroups []domain.PinGroup
	for rows.Next() {
		pg, err := scanPinGroup(rows)
		if err != nil {
			return nil, err
		}
		pinGroups = append(pinGroups, *pg)
	}
	return pinGroups, rows.Err()
}

func (r *groupRepository) CreatePinGroup(ctx context.Context, pg *domain.PinGroup) (*domain.PinGroup, error) {
	if pg == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO pin_groups (user_id, group_id, name, sort_order)
	VALUES ($1, $2, $3, (
		SELECT COALESCE(MAX(sort_order), 0) + 1 FROM pin_groups WHERE group_id = $2
	))
	RETURNING id, sort_order, created_at
	`

	if err := r.pool.QueryRow(ctx, query,
		pg.UserID,
		pg.GroupID,
		pg.Name,
	).Scan(&pg.ID, &pg.SortOrder, &pg.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewError(domain.ErrCodeDuplicate, "pin group with this name already exists")
		}
		return nil, err
	}

	return pg, nil
}

func (r *groupRepository) UpdatePinGroup(ctx context.Context, pg *domain.PinGroup) error {
	if pg == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE pin_groups
	SET name = $3
	WHERE id = $1 AND user_id = $2
	`
	tag, err := r.pool.Exec(ctx, query, pg.ID, pg.UserID, pg.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewError(domain.ErrCodeDuplicate, "pin group with this name already exists")
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPinGroupNotFound
	}
	return nil
}

func (r *groupRepository) DeletePinGroup(ctx context.Context, userID, id int64) error {
	const query = `DELETE FROM pin_groups WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPinGroupNotFound
	}
	return nil
}

func (r *groupRepository) GetPin(ctx context.Context, userID, id int64) (*domain.GroupPin, error) {
	const query = `
	SELECT id, user_id, pin_group_id, task_id, sort_order, created_at
	FROM group_pins
	WHERE id = $1 AND user_id = $2
	`
	row := r.pool.QueryRow(ctx, query, id, userID)
	return scanPin(row)
}

func (r *groupRepository) ListPins(ctx context.Context, userID, pinGroupID int64) ([]domain.GroupPin, error) {
	const query = `
	SELECT id, user_id, pin_group_id, task_id, sort_order, created_at
	FROM group_pins
	WHERE user_id = $1 AND pin_group_id = $2
	ORDER BY sort_order, id
	`
	rows, err := r.pool.Query(ctx, query, userID, pinGroupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pins []domain.GroupPin
	for rows.Next() {
		pin, err := scanPin(rows)
		if err != nil {
			return nil, err
		}
		pins = append(pins, *pin)
	}
	return pins, rows.Err()
}

func (r *groupRepository) PinIDs(ctx context.Context, pinGroupID int64) ([]int64, error) {
	const query = `
	SELECT id
	FROM group_pins
	WHERE pin_group_id = $1
	ORDER BY sort_order, id
	`
	rows, err := r.pool.Query(ctx, query, pinGroupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *groupRepository) NextPinSortOrder(ctx context.Context, pinGroupID int64) (int, error) {
	const query = `
	SELECT COALESCE(MAX(sort_order), 0) + 1
	FROM group_pins
	WHERE pin_group_id = $1
	`
	var next int
	if err := r.pool.QueryRow(ctx, query, pinGroupID).Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

func (r *groupRepository) RepackPins(ctx context.Context, pinGroupID int64, orderedIDs []int64) error {
	if len(orderedIDs) == 0 {
		return nil
	}

	const query = `
	UPDATE group_pins
	SET sort_order = $3
	WHERE id = $1 AND pin_group_id = $2
	`

	batch := &pgx.Batch{}
	for i, id := range orderedIDs {
		batch.Queue(query, id, pinGroupID, i+1)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range orderedIDs {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (r *groupRepository) CreatePin(ctx context.Context, pin *domain.GroupPin) (*domain.GroupPin, error) {
	if pin == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO group_pins (user_id, pin_group_id, task_id, sort_order)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at
	`

	if err := r.pool.QueryRow(ctx, query,
		pin.UserID,
		pin.PinGroupID,
		pin.TaskID,
		pin.SortOrder,
	).Scan(&pin.ID, &pin.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewError(domain.ErrCodeDuplicate, "task is already pinned in this pin group")
		}
		return nil, err
	}

	return pin, nil
}

func (r *groupRepository) DeletePin(ctx context.Context, userID, id int64) error {
	const query = `DELETE FROM group_pins WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPinNotFound
	}
	return nil
}

func (r *groupRepository) DeletePinsForTask(ctx context.Context, taskID int64) error {
	const query = `DELETE FROM group_pins WHERE task_id = $1`
	_, err := r.pool.Exec(ctx, query, taskID)
	return err
}

func scanGroup(row rowScanner) (*domain.Group, error) {
	var group domain.Group

	if err := row.Scan(
		&group.ID,
		&group.UserID,
		&group.Name,
		&group.ViewMode,
		&group.SortOrder,
		&group.CreatedAt,
		&group.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, err
	}

	return &group, nil
}

func scanPinGroup(row rowScanner) (*domain.PinGroup, error) {
	var pg domain.PinGroup

	if err := row.Scan(
		&pg.ID,
		&pg.UserID,
		&pg.GroupID,
		&pg.Name,
		&pg.SortOrder,
		&pg.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPinGroupNotFound
		}
		return nil, err
	}

	return &pg, nil
}

func scanPin(row rowScanner) (*domain.GroupPin, error) {
	var pin domain.GroupPin

	if err := row.Scan(
		&pin.ID,
		&pin.UserID,
		&pin.PinGroupID,
		&pin.TaskID,
		&pin.SortOrder,
		&pin.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPinNotFound
		}
		return nil, err
	}

	return &pin, nil
}
