package database

// schemaStatements creates every table the repositories depend on.
// Entities share the same metadata columns; parameter bundles and
// feature flags live in jsonb.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS workspaces (
		ref_id UUID PRIMARY KEY,
		version INTEGER NOT NULL,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		created_time TIMESTAMPTZ NOT NULL,
		last_modified_time TIMESTAMPTZ NOT NULL,
		archived_time TIMESTAMPTZ,
		name TEXT NOT NULL,
		timezone TEXT NOT NULL,
		default_project_ref_id UUID NOT NULL,
		feature_flags JSONB NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		ref_id UUID PRIMARY KEY,
		version INTEGER NOT NULL,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		created_time TIMESTAMPTZ NOT NULL,
		last_modified_time TIMESTAMPTZ NOT NULL,
		archived_time TIMESTAMPTZ,
		workspace_ref_id UUID NOT NULL,
		key TEXT NOT NULL,
		name TEXT NOT NULL,
		UNIQUE (workspace_ref_id, key)
	)`,
	`CREATE TABLE IF NOT EXISTS inbox_tasks (
		ref_id UUID PRIMARY KEY,
		version INTEGER NOT NULL,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		created_time TIMESTAMPTZ NOT NULL,
		last_modified_time TIMESTAMPTZ NOT NULL,
		archived_time TIMESTAMPTZ,
		workspace_ref_id UUID NOT NULL,
		project_ref_id UUID NOT NULL,
		source TEXT NOT NULL,
		big_plan_ref_id UUID,
		habit_ref_id UUID,
		chore_ref_id UUID,
		metric_ref_id UUID,
		person_ref_id UUID,
		slack_task_ref_id UUID,
		email_task_ref_id UUID,
		name TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		eisen TEXT NOT NULL,
		difficulty TEXT,
		status TEXT NOT NULL,
		actionable_date TIMESTAMPTZ,
		due_date TIMESTAMPTZ,
		accepted_time TIMESTAMPTZ,
		working_time TIMESTAMPTZ,
		completed_time TIMESTAMPTZ,
		recurring_timeline TEXT,
		recurring_repeat_index INTEGER,
		recurring_gen_right_now TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_inbox_tasks_workspace ON inbox_tasks (workspace_ref_id)`,
	`CREATE INDEX IF NOT EXISTS idx_inbox_tasks_source ON inbox_tasks (workspace_ref_id, source)`,
	`CREATE TABLE IF NOT EXISTS big_plans (
		ref_id UUID PRIMARY KEY,
		version INTEGER NOT NULL,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		created_time TIMESTAMPTZ NOT NULL,
		last_modified_time TIMESTAMPTZ NOT NULL,
		archived_time TIMESTAMPTZ,
		workspace_ref_id UUID NOT NULL,
		project_ref_id UUID NOT NULL,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		actionable_date TIMESTAMPTZ,
		due_date TIMESTAMPTZ,
		accepted_time TIMESTAMPTZ,
		working_time TIMESTAMPTZ,
		completed_time TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS habits (
		ref_id UUID PRIMARY KEY,
		version INTEGER NOT NULL,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		created_time TIMESTAMPTZ NOT NULL,
		last_modified_time TIMESTAMPTZ NOT NULL,
		archived_time TIMESTAMPTZ,
		workspace_ref_id UUID NOT NULL,
		project_ref_id UUID NOT NULL,
		name TEXT NOT NULL,
		period TEXT NOT NULL,
		gen_params JSONB NOT NULL,
		suspended BOOLEAN NOT NULL DEFAULT FALSE,
		repeats_in_period_count INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS chores (
		ref_id UUID PRIMARY KEY,
		version INTEGER NOT NULL,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		created_time TIMESTAMPTZ NOT NULL,
		last_modified_time TIMESTAMPTZ NOT NULL,
		archived_time TIMESTAMPTZ,
		workspace_ref_id UUID NOT NULL,
		project_ref_id UUID NOT NULL,
		name TEXT NOT NULL,
		period TEXT NOT NULL,
		gen_params JSONB NOT NULL,
		suspended BOOLEAN NOT NULL DEFAULT FALSE,
		must_do BOOLEAN NOT NULL DEFAULT FALSE,
		start_at_date TIMESTAMPTZ,
		end_at_date TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS metrics (
		ref_id UUID PRIMARY KEY,
		version INTEGER NOT NULL,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		created_time TIMESTAMPTZ NOT NULL,
		last_modified_time TIMESTAMPTZ NOT NULL,
		archived_time TIMESTAMPTZ,
		workspace_ref_id UUID NOT NULL,
		key TEXT NOT NULL,
		name TEXT NOT NULL,
		unit TEXT,
		collection_project_ref_id UUID,
		collection_params JSONB,
		UNIQUE (workspace_ref_id, key)
	)`,
	`CREATE TABLE IF NOT EXISTS metric_entries (
		ref_id UUID PRIMARY KEY,
		version INTEGER NOT NULL,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		created_time TIMESTAMPTZ NOT NULL,
		last_modified_time TIMESTAMPTZ NOT NULL,
		archived_time TIMESTAMPTZ,
		metric_ref_id UUID NOT NULL,
		collection_time TIMESTAMPTZ NOT NULL,
		value DOUBLE PRECISION NOT NULL,
		notes TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_metric_entries_metric ON metric_entries (metric_ref_id)`,
	`CREATE TABLE IF NOT EXISTS persons (
		ref_id UUID PRIMARY KEY,
		version INTEGER NOT NULL,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		created_time TIMESTAMPTZ NOT NULL,
		last_modified_time TIMESTAMPTZ NOT NULL,
		archived_time TIMESTAMPTZ,
		workspace_ref_id UUID NOT NULL,
		name TEXT NOT NULL,
		relationship TEXT NOT NULL,
		catch_up_params JSONB,
		birthday_day INTEGER,
		birthday_month INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS slack_tasks (
		ref_id UUID PRIMARY KEY,
		version INTEGER NOT NULL,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		created_time TIMESTAMPTZ NOT NULL,
		last_modified_time TIMESTAMPTZ NOT NULL,
		archived_time TIMESTAMPTZ,
		workspace_ref_id UUID NOT NULL,
		slack_user TEXT NOT NULL,
		channel TEXT,
		message TEXT NOT NULL,
		generation_extra_info TEXT NOT NULL DEFAULT '',
		has_generated_task BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS email_tasks (
		ref_id UUID PRIMARY KEY,
		version INTEGER NOT NULL,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		created_time TIMESTAMPTZ NOT NULL,
		last_modified_time TIMESTAMPTZ NOT NULL,
		archived_time TIMESTAMPTZ,
		workspace_ref_id UUID NOT NULL,
		from_address TEXT NOT NULL,
		from_name TEXT NOT NULL,
		to_address TEXT NOT NULL,
		subject TEXT NOT NULL,
		body TEXT NOT NULL,
		generation_extra_info TEXT NOT NULL DEFAULT '',
		has_generated_task BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS vacations (
		ref_id UUID PRIMARY KEY,
		version INTEGER NOT NULL,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		created_time TIMESTAMPTZ NOT NULL,
		last_modified_time TIMESTAMPTZ NOT NULL,
		archived_time TIMESTAMPTZ,
		workspace_ref_id UUID NOT NULL,
		name TEXT NOT NULL,
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS entity_events (
		id BIGSERIAL PRIMARY KEY,
		entity_kind TEXT NOT NULL,
		entity_id UUID NOT NULL,
		event_name TEXT NOT NULL,
		source TEXT NOT NULL,
		version INTEGER NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_entity_events_entity ON entity_events (entity_kind, entity_id)`,
}
