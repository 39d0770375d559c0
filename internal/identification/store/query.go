package store

import (
	"fmt"
	"strings"

	"github.com/zlovtnik/nfe-identifications/internal/identification/models"
)

// selectColumns is the shared column list for every read context. Order
// must match row.scanTargets.
const selectColumns = `internal_key,
	c_uf, c_nf, nat_op, mod_, serie, n_nf,
	to_char(dh_emi, '` + tsFormatSQL + `'),
	to_char(dh_sai_ent, '` + tsFormatSQL + `'),
	to_char(dh_cont, '` + tsFormatSQL + `'),
	x_just,
	tp_nf, id_dest, c_mun_fg, tp_imp, tp_emis, c_dv, tp_amb,
	fin_nfe, ind_final, ind_pres, proc_emi, ver_proc,
	to_char(created_at, '` + tsFormatSQL + `'),
	to_char(updated_at, '` + tsFormatSQL + `')`

const tableName = "nfe_identifications"

// buildListQuery assembles the count and page queries for a filter set.
// Every filter value is bound as a parameter; nothing is interpolated into
// the SQL text. The count query shares the WHERE clause with the select so
// the total stays consistent with the filtered page.
//
// Pagination is 1-indexed. Ordering is emission timestamp descending with
// internal_key as the tie-break so pages are stable across requests.
func buildListQuery(f models.ListFilter, page, pageSize int) (countSQL string, countArgs []any, selectSQL string, selectArgs []any) {
	clauses := make([]string, 0, 5)
	args := make([]any, 0, 5)

	if f.NatOp != "" {
		args = append(args, f.NatOp)
		clauses = append(clauses, fmt.Sprintf("nat_op ILIKE '%%' || $%d || '%%'", len(args)))
	}
	if f.NNF != "" {
		args = append(args, f.NNF)
		clauses = append(clauses, fmt.Sprintf("n_nf LIKE '%%' || $%d || '%%'", len(args)))
	}
	if f.TpNF != "" {
		args = append(args, f.TpNF)
		clauses = append(clauses, fmt.Sprintf("tp_nf = $%d", len(args)))
	}
	if f.DhEmi != "" {
		args = append(args, f.DhEmi)
		clauses = append(clauses, fmt.Sprintf("dh_emi::date = $%d::date", len(args)))
	}
	if f.Search != "" {
		args = append(args, f.Search)
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			"(nat_op ILIKE '%%' || $%d || '%%' OR n_nf LIKE '%%' || $%d || '%%' OR tp_nf LIKE '%%' || $%d || '%%')",
			n, n, n))
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	countSQL = "SELECT COUNT(*) FROM " + tableName + where
	countArgs = args

	selectArgs = make([]any, len(args), len(args)+2)
	copy(selectArgs, args)
	selectArgs = append(selectArgs, pageSize, (page-1)*pageSize)
	selectSQL = fmt.Sprintf(
		"SELECT %s FROM %s%s ORDER BY dh_emi DESC, internal_key DESC LIMIT $%d OFFSET $%d",
		selectColumns, tableName, where, len(selectArgs)-1, len(selectArgs))

	return countSQL, countArgs, selectSQL, selectArgs
}
