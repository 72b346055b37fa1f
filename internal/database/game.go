// internal/database/game.go
package database

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/bankroll-games/bankroll/internal/cache"
)

// InsertGameSummaryTx persists one finished game and its per-player results
// inside the caller's transaction.
//
// Schema:
//
//	games(id serial, room_code text, rounds int, finished_at timestamptz)
//	game_results(game_id int, player_token uuid, player_name text,
//	             score int, hearts_left int, multipliers_left int)
func InsertGameSummaryTx(ctx context.Context, tx pgx.Tx, rec cache.GameSummaryRecord) error {
	var gameID int64
	insertGameQ := `
		INSERT INTO games (room_code, rounds, finished_at)
		VALUES ($1, $2, to_timestamp($3 / 1000.0))
		RETURNING id
	`
	if err := tx.QueryRow(ctx, insertGameQ, rec.RoomID, rec.Rounds, rec.FinishedAt).Scan(&gameID); err != nil {
		return err
	}

	insertResultQ := `
		INSERT INTO game_results (
			game_id, player_token, player_name, score, hearts_left, multipliers_left
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, res := range rec.Results {
		if _, err := tx.Exec(ctx, insertResultQ,
			gameID, res.Token, res.Name, res.Score, res.Hearts, res.Multipliers,
		); err != nil {
			return err
		}
	}
	return nil
}
