package sqlbase

import (
	"fmt"
	"strings"

	"github.com/dukex/docflow/pkg/workflow"
)

// StatusRules pairs the rule used for a document's creator with the one used
// for everyone else.
type StatusRules struct {
	Creator     workflow.StatusRule
	Participant workflow.StatusRule
}

// DefaultStatusRules renders the same projection workflow.StatusFor evaluates in memory.
var DefaultStatusRules = StatusRules{
	Creator:     workflow.CreatorRule,
	Participant: workflow.ParticipantRule,
}

// StatusExpression renders the viewer's projected status as one scalar SQL
// expression:
//
//	CASE WHEN d.creator_id = $1 THEN (creator subquery) ELSE (participant subquery) END
//
// documentAlias names the documents table in the outer query and
// viewerPlaceholder is the bind parameter holding the viewer id. The
// expression yields NULL when no step qualifies.
func StatusExpression(rules StatusRules, documentAlias, viewerPlaceholder string) string {
	return fmt.Sprintf("CASE WHEN %s.creator_id = %s THEN %s ELSE %s END",
		documentAlias,
		viewerPlaceholder,
		statusSubquery(rules.Creator, documentAlias, viewerPlaceholder),
		statusSubquery(rules.Participant, documentAlias, viewerPlaceholder),
	)
}

func statusSubquery(rule workflow.StatusRule, documentAlias, viewerPlaceholder string) string {
	var query strings.Builder

	query.WriteString("(SELECT s.status FROM workflows w JOIN workflow_steps s ON s.workflow_id = w.id")
	fmt.Fprintf(&query, " WHERE w.document_id = %s.id", documentAlias)
	query.WriteString(" AND (s.is_active OR s.finished_at IS NOT NULL)")

	if rule.RequireParticipation {
		fmt.Fprintf(&query,
			" AND EXISTS (SELECT 1 FROM workflow_participants p WHERE p.step_id = s.id AND p.user_id = %s)",
			viewerPlaceholder,
		)
	}

	query.WriteString(" ORDER BY ")
	query.WriteString(orderBy(rule.OrderBy))
	query.WriteString(" LIMIT 1)")

	return query.String()
}

func orderBy(keys []workflow.SortKey) string {
	terms := make([]string, 0, len(keys))

	for _, key := range keys {
		term := "s." + key.Field.Column()
		if key.Descending {
			term += " DESC"
		} else {
			term += " ASC"
		}

		if key.Field == workflow.FieldStartedAt || key.Field == workflow.FieldFinishedAt {
			term += " NULLS LAST"
		}

		terms = append(terms, term)
	}

	return strings.Join(terms, ", ")
}
