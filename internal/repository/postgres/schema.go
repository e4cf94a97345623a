package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the files table if it does not exist.
//
// owner_id and object_path are guarded against change by a trigger so the
// database enforces the same immutability the service does.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			owner_id UUID NOT NULL,
			name TEXT NOT NULL,
			size BIGINT NOT NULL CHECK (size >= 0),
			mime_type TEXT NOT NULL,
			object_path TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT %[1]s_path_owner CHECK (split_part(object_path, '/', 1) = owner_id::text)
		)`, tables.Files),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_owner_created_idx ON %[1]s (owner_id, created_at DESC)`, tables.Files),
		fmt.Sprintf(`
		CREATE OR REPLACE FUNCTION %[1]s_freeze_owner() RETURNS trigger AS $$
		BEGIN
			IF NEW.owner_id IS DISTINCT FROM OLD.owner_id OR NEW.object_path IS DISTINCT FROM OLD.object_path THEN
				RAISE EXCEPTION 'owner_id and object_path are immutable' USING ERRCODE = 'check_violation';
			END IF;
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql`, tables.Files),
		fmt.Sprintf(`DROP TRIGGER IF EXISTS %[1]s_freeze_owner ON %[1]s`, tables.Files),
		fmt.Sprintf(`
		CREATE TRIGGER %[1]s_freeze_owner
			BEFORE UPDATE ON %[1]s
			FOR EACH ROW EXECUTE FUNCTION %[1]s_freeze_owner()`, tables.Files),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// EnableRowLevelSecurity installs owner-only policies on the files table for
// clients that reach it directly through Supabase's REST API. Requires the
// Supabase auth schema (auth.uid()).
func EnableRowLevelSecurity(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	t := tables.Files
	statements := []string{
		fmt.Sprintf(`ALTER TABLE %s ENABLE ROW LEVEL SECURITY`, t),
		fmt.Sprintf(`DROP POLICY IF EXISTS "owner select" ON %s`, t),
		fmt.Sprintf(`CREATE POLICY "owner select" ON %s FOR SELECT USING (auth.uid() = owner_id)`, t),
		fmt.Sprintf(`DROP POLICY IF EXISTS "owner insert" ON %s`, t),
		fmt.Sprintf(`CREATE POLICY "owner insert" ON %s FOR INSERT WITH CHECK (auth.uid() = owner_id)`, t),
		fmt.Sprintf(`DROP POLICY IF EXISTS "owner update" ON %s`, t),
		fmt.Sprintf(`CREATE POLICY "owner update" ON %s FOR UPDATE USING (auth.uid() = owner_id) WITH CHECK (auth.uid() = owner_id)`, t),
		fmt.Sprintf(`DROP POLICY IF EXISTS "owner delete" ON %s`, t),
		fmt.Sprintf(`CREATE POLICY "owner delete" ON %s FOR DELETE USING (auth.uid() = owner_id)`, t),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("enable row level security: %w", err)
		}
	}
	return nil
}

// DropSchema removes the files table and its trigger function
func DropSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	stmts := []string{
		fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, tables.Files),
		fmt.Sprintf(`DROP FUNCTION IF EXISTS %s_freeze_owner()`, tables.Files),
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("drop schema: %w", err)
		}
	}
	return nil
}
