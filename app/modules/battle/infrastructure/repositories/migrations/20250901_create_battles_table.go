package migrations

import (
	"context"
	"fmt"

	battledb "github.com/Round-Table-Club/battleboard-bot/app/modules/battle/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Creating battles table...")
			if _, err := db.NewCreateTable().Model((*battledb.Battle)(nil)).IfNotExists().Exec(ctx); err != nil {
				return err
			}
			// Partial unique index: the (guild_id, battle_url) pair is the
			// duplicate-detection key, but pending rows have no URL yet.
			if _, err := db.ExecContext(ctx,
				`CREATE UNIQUE INDEX IF NOT EXISTS battles_guild_url_uq
				 ON battles (guild_id, battle_url)
				 WHERE battle_url IS NOT NULL AND battle_url <> ''`); err != nil {
				return err
			}
			if _, err := db.ExecContext(ctx,
				`CREATE INDEX IF NOT EXISTS battles_guild_time_idx
				 ON battles (guild_id, battle_time DESC)`); err != nil {
				return err
			}
			fmt.Println("battles table created successfully!")
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Dropping battles table...")
			if _, err := db.NewDropTable().Model((*battledb.Battle)(nil)).IfExists().Cascade().Exec(ctx); err != nil {
				return err
			}
			fmt.Println("battles table dropped successfully!")
			return nil
		},
	)
}
