/*
MIT License

# Copyright (c) 2025 OcomSoft

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/
package oracle

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ocomsoft/makeviews/internal/providers/catalog"
	"github.com/ocomsoft/makeviews/internal/types"
	"github.com/ocomsoft/makeviews/internal/utils"
)

// ORA-27475: "unknown job"
const jobNotFoundCode = 27475

// Storage and refresh clauses every materialized view is created with:
// full refresh on demand, no materialized view log.
const materializedViewOptions = "PCTFREE 0 PCTUSED 0 COMPRESS FOR OLTP NOLOGGING REFRESH COMPLETE ON DEMAND"

// Failure messages sent by refresh jobs are cut to this many characters of SQLERRM
const errorTextLength = 200

var simpleIdentifier = regexp.MustCompile(`^[a-z][a-z_0-9$#]*$`)

// Provider implements the Provider interface for Oracle
type Provider struct{}

// New creates a new Oracle provider
func New() *Provider {
	return &Provider{}
}

// Capabilities reports full view support for Oracle
func (p *Provider) Capabilities() types.Capabilities {
	return types.Capabilities{
		Views:                 true,
		MaterializedViews:     true,
		ViewColumnsDefinition: true,
		ReplaceView:           true,
	}
}

// QuoteColumnName quotes an identifier. Plain lower case names are folded
// to upper case so they match unquoted Oracle identifiers.
func (p *Provider) QuoteColumnName(name string) string {
	if simpleIdentifier.MatchString(name) {
		return `"` + strings.ToUpper(name) + `"`
	}
	return `"` + name + `"`
}

// QuoteTableName quotes a possibly schema-qualified table name
func (p *Provider) QuoteTableName(name string) string {
	return utils.QuoteQualified(name, p.QuoteColumnName)
}

// GenerateCreateMaterializedView generates CREATE MATERIALIZED VIEW for Oracle
func (p *Provider) GenerateCreateMaterializedView(quotedName, columnList, selectQuery string) (string, error) {
	var sql strings.Builder
	sql.WriteString("CREATE MATERIALIZED VIEW ")
	sql.WriteString(quotedName)
	if columnList != "" {
		fmt.Fprintf(&sql, " (%s)", columnList)
	}
	sql.WriteString(" " + materializedViewOptions)
	sql.WriteString(" AS " + selectQuery)
	return sql.String(), nil
}

// JobName returns the scheduler job name used for a materialized view. Any
// schema prefix of viewName is not part of the job name.
func JobName(viewName string) string {
	_, base := utils.SplitQualifiedName(viewName)
	return strings.ToUpper(base) + "_RJ"
}

// refreshNames returns the qualified view and job names. A schema in
// viewName takes precedence over the default schema.
func refreshNames(defaultSchema, viewName string) (view, job string) {
	schema, base := utils.SplitQualifiedName(viewName)
	if schema == "" {
		schema = defaultSchema
	}
	return qualify(schema, strings.ToUpper(base)), qualify(schema, JobName(base))
}

// GenerateCreateRefreshJob generates a DBMS_SCHEDULER job that completely
// refreshes the materialized view and mails the failure instead of letting
// the job fail silently.
func (p *Provider) GenerateCreateRefreshJob(job *types.RefreshJob) (string, error) {
	if err := job.Validate(); err != nil {
		return "", err
	}
	if job.NotifyTarget == "" {
		return "", fmt.Errorf("refresh job for %s: notify target is required", job.ViewName)
	}

	target, jobName := refreshNames(job.Schema, job.ViewName)
	sender := job.NotifySender
	if sender == "" {
		sender = job.NotifyTarget
	}

	var action strings.Builder
	action.WriteString("DECLARE l_code NUMBER; l_text VARCHAR2(4000); ")
	fmt.Fprintf(&action, "BEGIN DBMS_MVIEW.REFRESH(%s, 'C'); ", utils.QuoteLiteral(target))
	action.WriteString("EXCEPTION WHEN OTHERS THEN ")
	fmt.Fprintf(&action, "l_code := SQLCODE; l_text := SUBSTR(SQLERRM, 1, %d); ", errorTextLength)
	fmt.Fprintf(&action, "UTL_MAIL.SEND(sender => %s, recipients => %s, subject => %s, message => l_code || ': ' || l_text); ",
		utils.QuoteLiteral(sender),
		utils.QuoteLiteral(job.NotifyTarget),
		utils.QuoteLiteral("Refresh of "+target+" failed"))
	action.WriteString("END;")

	var sql strings.Builder
	sql.WriteString("BEGIN\n")
	sql.WriteString("  DBMS_SCHEDULER.CREATE_JOB(\n")
	fmt.Fprintf(&sql, "    job_name        => %s,\n", utils.QuoteLiteral(jobName))
	sql.WriteString("    job_type        => 'PLSQL_BLOCK',\n")
	fmt.Fprintf(&sql, "    job_action      => %s,\n", utils.QuoteLiteral(action.String()))
	fmt.Fprintf(&sql, "    repeat_interval => %s,\n", utils.QuoteLiteral(job.RepeatInterval))
	sql.WriteString("    enabled         => TRUE,\n")
	fmt.Fprintf(&sql, "    comments        => %s);\n", utils.QuoteLiteral("Complete refresh of "+target))
	sql.WriteString("END;")
	return sql.String(), nil
}

// GenerateDropRefreshJob generates the scheduler job drop for a materialized view
func (p *Provider) GenerateDropRefreshJob(schema, viewName string) (string, error) {
	_, jobName := refreshNames(schema, viewName)
	return fmt.Sprintf("BEGIN DBMS_SCHEDULER.DROP_JOB(job_name => %s); END;",
		utils.QuoteLiteral(jobName)), nil
}

// IsJobNotFound reports whether err is ORA-27475. The code is read from the
// driver error rather than matched in the message text.
func (p *Provider) IsJobNotFound(err error) bool {
	var oraErr interface{ Code() int }
	if errors.As(err, &oraErr) {
		return oraErr.Code() == jobNotFoundCode
	}
	return false
}

// GetColumns lists the columns of a table or view from ALL_TAB_COLUMNS
func (p *Provider) GetColumns(ctx context.Context, db catalog.Queryer, tableName string) ([]string, error) {
	schema, name := utils.SplitQualifiedName(tableName)

	query := `
		SELECT LOWER(column_name)
		FROM all_tab_columns
		WHERE table_name = :1
		  AND owner = NVL(:2, SYS_CONTEXT('USERENV', 'CURRENT_SCHEMA'))
		ORDER BY column_id`

	var owner any
	if schema != "" {
		owner = strings.ToUpper(schema)
	}

	return catalog.Columns(ctx, db, query, strings.ToUpper(name), owner)
}

func qualify(schema, name string) string {
	if schema == "" {
		return name
	}
	return strings.ToUpper(schema) + "." + name
}
