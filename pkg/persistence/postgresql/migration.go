package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE documents (
				id UUID PRIMARY KEY,
				document_type VARCHAR(50) NOT NULL,
				system_number VARCHAR(64) NOT NULL UNIQUE,
				content TEXT NOT NULL,
				paper_count INTEGER NOT NULL CHECK (paper_count >= 1),
				attachment_description VARCHAR(100),
				deadline TIMESTAMP WITH TIME ZONE,
				creator_id VARCHAR(255) NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_documents_created_at ON documents(created_at);
			CREATE INDEX idx_documents_document_type ON documents(document_type);

			CREATE TABLE document_addresses (
				id UUID PRIMARY KEY,
				document_id UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
				party_type VARCHAR(20) NOT NULL CHECK (party_type IN ('SENDER', 'RECIPIENT')),
				user_id VARCHAR(255),
				external_user_id VARCHAR(255),
				organization_id VARCHAR(255),
				is_responsible BOOLEAN NOT NULL DEFAULT FALSE,
				comment VARCHAR(255),
				position INTEGER NOT NULL DEFAULT 0
			);

			CREATE INDEX idx_document_addresses_document_id ON document_addresses(document_id);

			CREATE TABLE document_confidentials (
				id UUID PRIMARY KEY,
				document_id UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
				level VARCHAR(100) NOT NULL,
				UNIQUE (document_id, level)
			);

			CREATE TABLE document_accesses (
				id UUID PRIMARY KEY,
				document_id UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
				user_id VARCHAR(255) NOT NULL,
				access_type VARCHAR(20) NOT NULL,
				expires_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_document_accesses_expires_at ON document_accesses(expires_at);
		`,
		2: `
			CREATE TABLE registration_numbers (
				id UUID PRIMARY KEY,
				prefix VARCHAR(20) NOT NULL,
				number VARCHAR(20) NOT NULL,
				postfix VARCHAR(20) NOT NULL,
				registrator_id VARCHAR(255) NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_registration_numbers_prefix ON registration_numbers(prefix);

			CREATE TABLE document_registrations (
				id UUID PRIMARY KEY,
				document_id UUID NOT NULL UNIQUE REFERENCES documents(id) ON DELETE CASCADE,
				registration_number_id UUID REFERENCES registration_numbers(id),
				external_registration_number VARCHAR(255),
				external_registration_at TIMESTAMP WITH TIME ZONE
			);
		`,
		3: `
			CREATE TABLE workflows (
				id UUID PRIMARY KEY,
				document_id UUID NOT NULL UNIQUE REFERENCES documents(id) ON DELETE CASCADE,
				started_at TIMESTAMP WITH TIME ZONE,
				finished_at TIMESTAMP WITH TIME ZONE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE TABLE workflow_steps (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				step_type VARCHAR(50) NOT NULL,
				status VARCHAR(50) NOT NULL DEFAULT 'WAITING',
				step_order INTEGER NOT NULL CHECK (step_order >= 1),
				is_active BOOLEAN NOT NULL DEFAULT FALSE,
				started_at TIMESTAMP WITH TIME ZONE,
				finished_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_workflow_steps_workflow_id ON workflow_steps(workflow_id);

			CREATE TABLE workflow_participants (
				id UUID PRIMARY KEY,
				step_id UUID NOT NULL REFERENCES workflow_steps(id) ON DELETE CASCADE,
				user_id VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL DEFAULT 'WAITING',
				started_at TIMESTAMP WITH TIME ZONE,
				finished_at TIMESTAMP WITH TIME ZONE,
				comment VARCHAR(255),
				deadline TIMESTAMP WITH TIME ZONE,
				is_responsible BOOLEAN NOT NULL DEFAULT FALSE,
				position INTEGER NOT NULL DEFAULT 0
			);

			CREATE INDEX idx_workflow_participants_step_id ON workflow_participants(step_id);
			CREATE INDEX idx_workflow_participants_user_id ON workflow_participants(user_id);
		`,
		4: `
			CREATE TABLE document_events (
				id UUID PRIMARY KEY,
				document_id UUID NOT NULL,
				event_type VARCHAR(50) NOT NULL,
				actor_id VARCHAR(255),
				occurred_at TIMESTAMP WITH TIME ZONE NOT NULL,
				payload JSONB NOT NULL
			);

			CREATE INDEX idx_document_events_document_id ON document_events(document_id, occurred_at);
		`,
	}
}
