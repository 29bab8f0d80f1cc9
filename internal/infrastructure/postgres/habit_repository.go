package postgres

import (
	"context"
	"fmt"
	"time"

	"habit-tracker/internal/domain/entity"
	"habit-tracker/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const habitColumns = `
	id, user_id, place, habit_time, action,
	is_pleasant, linked_habit_id, frequency, reward, duration, is_public,
	last_reminded_at, next_remind_at, created_at, updated_at
`

type habitRepository struct {
	pool *pgxpool.Pool
}

// NewHabitRepository creates a new PostgreSQL habit repository
func NewHabitRepository(pool *pgxpool.Pool) repository.HabitRepository {
	return &habitRepository{pool: pool}
}

func (r *habitRepository) Create(ctx context.Context, habit *entity.Habit) error {
	query := `
		INSERT INTO habits (` + habitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.pool.Exec(ctx, query,
		habit.ID, habit.UserID, habit.Place, habit.Time, habit.Action,
		habit.IsPleasant, habit.LinkedHabitID, habit.Frequency, habit.Reward, habit.Duration, habit.IsPublic,
		habit.LastRemindedAt, habit.NextRemindAt, habit.CreatedAt, habit.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create habit: %w", err)
	}

	return nil
}

func scanHabit(row pgx.Row) (*entity.Habit, error) {
	habit := &entity.Habit{}
	err := row.Scan(
		&habit.ID, &habit.UserID, &habit.Place, &habit.Time, &habit.Action,
		&habit.IsPleasant, &habit.LinkedHabitID, &habit.Frequency, &habit.Reward, &habit.Duration, &habit.IsPublic,
		&habit.LastRemindedAt, &habit.NextRemindAt, &habit.CreatedAt, &habit.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return habit, nil
}

func (r *habitRepository) GetByID(ctx context.Context, habitID uuid.UUID) (*entity.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1`

	habit, err := scanHabit(r.pool.QueryRow(ctx, query, habitID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, entity.ErrHabitNotFound
		}
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}

	return habit, nil
}

func (r *habitRepository) GetByUserID(ctx context.Context, userID uuid.UUID, filter *entity.HabitFilter) ([]*entity.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = $1`
	query, args := applyFilter(query, []any{userID}, filter)
	query += ` ORDER BY created_at ASC`
	return r.queryHabits(ctx, query, args...)
}

func (r *habitRepository) GetPublic(ctx context.Context, filter *entity.HabitFilter) ([]*entity.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE is_public = TRUE`
	query, args := applyFilter(query, nil, filter)
	query += ` ORDER BY created_at ASC`
	return r.queryHabits(ctx, query, args...)
}

// applyFilter appends a clause per set filter field, numbering placeholders
// after the args already collected.
func applyFilter(query string, args []any, filter *entity.HabitFilter) (string, []any) {
	if filter == nil {
		return query, args
	}
	if filter.IsPublic != nil {
		args = append(args, *filter.IsPublic)
		query += fmt.Sprintf(` AND is_public = $%d`, len(args))
	}
	if filter.TimeFrom != nil {
		args = append(args, *filter.TimeFrom)
		query += fmt.Sprintf(` AND habit_time >= $%d`, len(args))
	}
	if filter.TimeTo != nil {
		args = append(args, *filter.TimeTo)
		query += fmt.Sprintf(` AND habit_time <= $%d`, len(args))
	}
	return query, args
}

func (r *habitRepository) GetDue(ctx context.Context, now time.Time) ([]*entity.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE next_remind_at <= $1 ORDER BY next_remind_at ASC`
	return r.queryHabits(ctx, query, now)
}

func (r *habitRepository) queryHabits(ctx context.Context, query string, args ...any) ([]*entity.Habit, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get habits: %w", err)
	}
	defer rows.Close()

	var habits []*entity.Habit
	for rows.Next() {
		habit, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, habit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate habits: %w", err)
	}

	return habits, nil
}

func (r *habitRepository) Update(ctx context.Context, habit *entity.Habit) error {
	query := `
		UPDATE habits SET
			place = $1,
			habit_time = $2,
			action = $3,
			is_pleasant = $4,
			linked_habit_id = $5,
			frequency = $6,
			reward = $7,
			duration = $8,
			is_public = $9,
			next_remind_at = $10,
			updated_at = $11
		WHERE id = $12
	`

	result, err := r.pool.Exec(ctx, query,
		habit.Place, habit.Time, habit.Action,
		habit.IsPleasant, habit.LinkedHabitID, habit.Frequency, habit.Reward, habit.Duration, habit.IsPublic,
		habit.NextRemindAt, habit.UpdatedAt, habit.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}

	if result.RowsAffected() == 0 {
		return entity.ErrHabitNotFound
	}

	return nil
}

// Delete removes the habit and clears inbound linked_habit references in one
// transaction. The linked_habit relation is a weak reference: deleting the
// target must not cascade into its dependents.
func (r *habitRepository) Delete(ctx context.Context, habitID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE habits SET linked_habit_id = NULL, updated_at = $1 WHERE linked_habit_id = $2`,
		time.Now().UTC(), habitID,
	); err != nil {
		return fmt.Errorf("failed to clear linked habit references: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM habits WHERE id = $1`, habitID)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}

	if result.RowsAffected() == 0 {
		return entity.ErrHabitNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	return nil
}

func (r *habitRepository) UpdateReminderState(ctx context.Context, habitID uuid.UUID, lastRemindedAt, nextRemindAt time.Time) error {
	query := `
		UPDATE habits SET
			last_reminded_at = $1,
			next_remind_at = $2,
			updated_at = $3
		WHERE id = $4
	`

	result, err := r.pool.Exec(ctx, query, lastRemindedAt, nextRemindAt, time.Now().UTC(), habitID)
	if err != nil {
		return fmt.Errorf("failed to update reminder state: %w", err)
	}

	if result.RowsAffected() == 0 {
		return entity.ErrHabitNotFound
	}

	return nil
}
