package postgresql

// Migrations returns the versioned schema for the workflow store. The
// definition is stored as JSONB and carried verbatim: the database never
// interprets the step tree.
func Migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS workflows (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL,
				owner TEXT NOT NULL DEFAULT '',
				published_id TEXT NOT NULL DEFAULT '',
				definition JSONB NOT NULL,
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL,
				published_at TIMESTAMPTZ,
				deleted_at TIMESTAMPTZ
			);

			CREATE INDEX IF NOT EXISTS idx_workflows_status ON workflows (status) WHERE deleted_at IS NULL;
			CREATE INDEX IF NOT EXISTS idx_workflows_owner ON workflows (owner) WHERE deleted_at IS NULL;
		`,
	}
}
