package sqlite

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE documents (
				id TEXT PRIMARY KEY,
				document_type TEXT NOT NULL,
				system_number TEXT NOT NULL UNIQUE,
				content TEXT NOT NULL,
				paper_count INTEGER NOT NULL CHECK (paper_count >= 1),
				attachment_description TEXT,
				deadline TIMESTAMP,
				creator_id TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			);

			CREATE INDEX idx_documents_created_at ON documents(created_at);

			CREATE TABLE document_addresses (
				id TEXT PRIMARY KEY,
				document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
				party_type TEXT NOT NULL CHECK (party_type IN ('SENDER', 'RECIPIENT')),
				user_id TEXT,
				external_user_id TEXT,
				organization_id TEXT,
				is_responsible BOOLEAN NOT NULL DEFAULT FALSE,
				comment TEXT,
				position INTEGER NOT NULL DEFAULT 0
			);

			CREATE TABLE document_confidentials (
				id TEXT PRIMARY KEY,
				document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
				level TEXT NOT NULL,
				UNIQUE (document_id, level)
			);

			CREATE TABLE document_accesses (
				id TEXT PRIMARY KEY,
				document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
				user_id TEXT NOT NULL,
				access_type TEXT NOT NULL,
				expires_at TIMESTAMP
			);
		`,
		2: `
			CREATE TABLE registration_numbers (
				id TEXT PRIMARY KEY,
				prefix TEXT NOT NULL,
				number TEXT NOT NULL,
				postfix TEXT NOT NULL,
				registrator_id TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			);

			CREATE TABLE document_registrations (
				id TEXT PRIMARY KEY,
				document_id TEXT NOT NULL UNIQUE REFERENCES documents(id) ON DELETE CASCADE,
				registration_number_id TEXT REFERENCES registration_numbers(id),
				external_registration_number TEXT,
				external_registration_at TIMESTAMP
			);
		`,
		3: `
			CREATE TABLE workflows (
				id TEXT PRIMARY KEY,
				document_id TEXT NOT NULL UNIQUE REFERENCES documents(id) ON DELETE CASCADE,
				started_at TIMESTAMP,
				finished_at TIMESTAMP,
				created_at TIMESTAMP NOT NULL
			);

			CREATE TABLE workflow_steps (
				id TEXT PRIMARY KEY,
				workflow_id TEXT NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				step_type TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'WAITING',
				step_order INTEGER NOT NULL CHECK (step_order >= 1),
				is_active BOOLEAN NOT NULL DEFAULT FALSE,
				started_at TIMESTAMP,
				finished_at TIMESTAMP
			);

			CREATE TABLE workflow_participants (
				id TEXT PRIMARY KEY,
				step_id TEXT NOT NULL REFERENCES workflow_steps(id) ON DELETE CASCADE,
				user_id TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'WAITING',
				started_at TIMESTAMP,
				finished_at TIMESTAMP,
				comment TEXT,
				deadline TIMESTAMP,
				is_responsible BOOLEAN NOT NULL DEFAULT FALSE,
				position INTEGER NOT NULL DEFAULT 0
			);

			CREATE INDEX idx_workflow_participants_step_id ON workflow_participants(step_id);
		`,
		4: `
			CREATE TABLE document_events (
				id TEXT PRIMARY KEY,
				document_id TEXT NOT NULL,
				event_type TEXT NOT NULL,
				actor_id TEXT,
				occurred_at TIMESTAMP NOT NULL,
				payload TEXT NOT NULL
			);

			CREATE INDEX idx_document_events_document_id ON document_events(document_id, occurred_at);
		`,
	}
}
