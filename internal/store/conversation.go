package store

import (
	"context"
	"fmt"
	"time"

	"firerisk/internal/utils"
	"firerisk/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const conversationTableName = "conversation_history"

var conversationColumns = utils.StructTagValues(types.ConversationMessage{})

type ConversationRepository struct {
	db DBTX
}

func NewConversationRepository(db DBTX) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// AppendMessage adds a message to the end of an assessment transcript.
func (r *ConversationRepository) AppendMessage(ctx context.Context, message *types.ConversationMessage) error {
	if err := live(r.db); err != nil {
		return err
	}

	message.CreatedAt = time.Now()

	query, args, err := psql().
		Insert(conversationTableName).
		SetMap(utils.StructToMap(message, "id")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert message query: %w", err)
	}

	err = r.db.QueryRow(ctx, query, args...).Scan(&message.ID)
	return utils.ErrorWrapOrNil(err, "failed to append conversation message")
}

// History returns the full transcript in chronological order.
func (r *ConversationRepository) History(ctx context.Context, assessmentID int64) ([]*types.ConversationMessage, error) {
	if err := live(r.db); err != nil {
		return nil, err
	}

	query, args, err := psql().
		Select(conversationColumns...).
		From(conversationTableName).
		Where(sq.Eq{"assessment_id": assessmentID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate conversation history query: %w", err)
	}

	var messages = make([]*types.ConversationMessage, 0)
	err = pgxscan.Select(ctx, r.db, &messages, query, args...)
	if err != nil {
		return nil, utils.ErrorWrapOrNil(err, "failed to fetch conversation history")
	}

	return messages, nil
}
