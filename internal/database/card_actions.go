package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/Renal37/cardledger/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrDuplicateAction = errors.New("card action already recorded")

const (
	InsertCardActionQuery = `
		INSERT INTO
			card_actions (id, user_id, card_id, action, outcome, error_code)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	SelectCardActionsQuery = `
		SELECT
			id::text,
			user_id,
			card_id,
			action,
			outcome,
			error_code,
			created_at
		FROM
			card_actions
		WHERE
			user_id = $1 AND card_id = $2
		ORDER BY
			created_at DESC
		LIMIT 100
	`
)

// RecordCardAction пишет итог команды над картой. Пустой ID заменяется новым uuid.
func (d *Database) RecordCardAction(ctx context.Context, action models.CardAction) error {
	id := action.ID
	if id == "" {
		id = uuid.NewString()
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid card action id %q: %w", id, err)
	}

	_, err := d.db.Exec(ctx, InsertCardActionQuery,
		id, action.UserID, action.CardID, action.Action, action.Outcome, action.ErrorCode)
	if err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
			return ErrDuplicateAction
		}
		return fmt.Errorf("failed to record card action: %w", err)
	}

	return nil
}

// FindCardActions - последние действия пользователя над картой, новые первыми.
func (d *Database) FindCardActions(ctx context.Context, userID, cardID string) ([]models.CardAction, error) {
	rows, err := d.db.Query(ctx, SelectCardActionsQuery, userID, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to find card actions: %w", err)
	}
	defer rows.Close()

	result := make([]models.CardAction, 0)
	for rows.Next() {
		var item models.CardAction
		if err := rows.Scan(&item.ID, &item.UserID, &item.CardID, &item.Action, &item.Outcome, &item.ErrorCode, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan card action: %w", err)
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate card actions: %w", err)
	}

	return result, nil
}
