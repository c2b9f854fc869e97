package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Automation rules, one row per rule, tenant-scoped by workspace_id
			CREATE TABLE automation_rules (
				id UUID PRIMARY KEY,
				workspace_id VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				trigger_event VARCHAR(255) NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT true,
				filters JSONB NOT NULL DEFAULT '[]',
				action_chain JSONB NOT NULL DEFAULT '[]',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			-- The engine's hot path: active rules of one workspace for one event
			CREATE INDEX idx_automation_rules_lookup
				ON automation_rules(workspace_id, trigger_event)
				WHERE is_active AND deleted_at IS NULL;

			CREATE INDEX idx_automation_rules_workspace ON automation_rules(workspace_id);
			CREATE INDEX idx_automation_rules_created_at ON automation_rules(created_at);
		`,
	}
}
