// Package store persists NFe identifications in PostgreSQL. It owns row
// mapping, timestamp format policy and dynamic filter query construction;
// the cache-aside orchestration lives in the service package.
package store

import (
	"context"
	"database/sql"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/zlovtnik/nfe-identifications/internal/identification/models"
	"github.com/zlovtnik/nfe-identifications/pkg/domainerrors"
)

// Postgres is the backing-store implementation. The *sql.DB handle is
// pooled and safe for concurrent use; Postgres holds no other state.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed identification store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// List returns one page of identifications plus the total count for the
// filter set. The count and page queries share the same WHERE clause and
// run concurrently.
func (s *Postgres) List(ctx context.Context, page, pageSize int, filter models.ListFilter) ([]models.Identification, uint64, error) {
	if page < 1 || pageSize < 1 {
		return nil, 0, domainerrors.New(domainerrors.CodeBadRequest, "page and page size must be positive")
	}

	countSQL, countArgs, selectSQL, selectArgs := buildListQuery(filter, page, pageSize)

	var (
		total   uint64
		records []models.Identification
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.db.QueryRowContext(gctx, countSQL, countArgs...).Scan(&total); err != nil {
			return domainerrors.Wrap(err, domainerrors.CodeBackingStore, "count identifications")
		}
		return nil
	})
	g.Go(func() error {
		rows, err := s.db.QueryContext(gctx, selectSQL, selectArgs...)
		if err != nil {
			return domainerrors.Wrap(err, domainerrors.CodeBackingStore, "list identifications")
		}
		defer rows.Close()

		records = make([]models.Identification, 0, pageSize)
		for rows.Next() {
			var r row
			if err := rows.Scan(r.scanTargets()...); err != nil {
				return domainerrors.Wrap(err, domainerrors.CodeBackingStore, "scan identification row")
			}
			rec, err := rowToRecord(r)
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		if err := rows.Err(); err != nil {
			return domainerrors.Wrap(err, domainerrors.CodeBackingStore, "iterate identification rows")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// GetByKey returns the record addressed by a canonical identifier, or a
// not-found error when no row matches.
func (s *Postgres) GetByKey(ctx context.Context, internalKey string) (*models.Identification, error) {
	key, err := storageKey(internalKey)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + selectColumns + " FROM " + tableName + " WHERE internal_key = $1"
	var r row
	if err := s.db.QueryRowContext(ctx, query, key).Scan(r.scanTargets()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainerrors.New(domainerrors.CodeNotFound, "identification not found")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeBackingStore, "get identification")
	}
	rec, err := rowToRecord(r)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Insert persists a new record under the given canonical identifier. The
// audit timestamps default to the store's clock.
func (s *Postgres) Insert(ctx context.Context, internalKey string, in models.CreateIdentification) error {
	key, err := storageKey(internalKey)
	if err != nil {
		return err
	}

	const query = `INSERT INTO ` + tableName + ` (
		internal_key, c_uf, c_nf, nat_op, mod_, serie, n_nf,
		dh_emi, dh_sai_ent, dh_cont, x_just,
		tp_nf, id_dest, c_mun_fg, tp_imp, tp_emis, c_dv, tp_amb,
		fin_nfe, ind_final, ind_pres, proc_emi, ver_proc
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7,
		$8::timestamptz, $9::timestamptz, $10::timestamptz, $11,
		$12, $13, $14, $15, $16, $17, $18,
		$19, $20, $21, $22, $23
	)`

	_, err = s.db.ExecContext(ctx, query,
		key, in.CUF, in.CNF, in.NatOp, in.Mod, in.Serie, in.NNF,
		formatTimestamp(in.DhEmi), formatOptionalTimestamp(in.DhSaiEnt), formatOptionalTimestamp(in.DhCont), nullString(in.XJust),
		in.TpNF, in.IDDest, in.CMunFG, in.TpImp, in.TpEmis, in.CDV, in.TpAmb,
		in.FinNFe, in.IndFinal, in.IndPres, in.ProcEmi, in.VerProc,
	)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeBackingStore, "insert identification")
	}
	return nil
}

// Update applies a column-wise null-coalescing update: each column is set
// to the supplied value when present, otherwise preserved. updated_at is
// refreshed by the store's clock. Zero affected rows is an update failure,
// distinct from a backing-store error.
func (s *Postgres) Update(ctx context.Context, internalKey string, in models.UpdateIdentification) error {
	key, err := storageKey(internalKey)
	if err != nil {
		return err
	}

	const query = `UPDATE ` + tableName + ` SET
		c_uf = COALESCE($2, c_uf),
		c_nf = COALESCE($3, c_nf),
		nat_op = COALESCE($4, nat_op),
		mod_ = COALESCE($5, mod_),
		serie = COALESCE($6, serie),
		n_nf = COALESCE($7, n_nf),
		dh_emi = COALESCE($8::timestamptz, dh_emi),
		dh_sai_ent = COALESCE($9::timestamptz, dh_sai_ent),
		dh_cont = COALESCE($10::timestamptz, dh_cont),
		x_just = COALESCE($11, x_just),
		tp_nf = COALESCE($12, tp_nf),
		id_dest = COALESCE($13, id_dest),
		c_mun_fg = COALESCE($14, c_mun_fg),
		tp_imp = COALESCE($15, tp_imp),
		tp_emis = COALESCE($16, tp_emis),
		c_dv = COALESCE($17, c_dv),
		tp_amb = COALESCE($18, tp_amb),
		fin_nfe = COALESCE($19, fin_nfe),
		ind_final = COALESCE($20, ind_final),
		ind_pres = COALESCE($21, ind_pres),
		proc_emi = COALESCE($22, proc_emi),
		ver_proc = COALESCE($23, ver_proc),
		updated_at = now()
	WHERE internal_key = $1`

	var dhEmi sql.NullString
	if in.DhEmi != nil {
		dhEmi = sql.NullString{String: formatTimestamp(*in.DhEmi), Valid: true}
	}

	res, err := s.db.ExecContext(ctx, query,
		key, nullString(in.CUF), nullString(in.CNF), nullString(in.NatOp), nullString(in.Mod),
		nullString(in.Serie), nullString(in.NNF),
		dhEmi, formatOptionalTimestamp(in.DhSaiEnt), formatOptionalTimestamp(in.DhCont), nullString(in.XJust),
		nullString(in.TpNF), nullString(in.IDDest), nullString(in.CMunFG), nullString(in.TpImp),
		nullString(in.TpEmis), nullString(in.CDV), nullString(in.TpAmb), nullString(in.FinNFe),
		nullString(in.IndFinal), nullString(in.IndPres), nullString(in.ProcEmi), nullString(in.VerProc),
	)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeBackingStore, "update identification")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeBackingStore, "update rows affected")
	}
	if affected == 0 {
		return domainerrors.New(domainerrors.CodeUpdateFailed, "identification not found")
	}
	return nil
}

// Delete removes the addressed record. A zero-row delete is surfaced as
// not-found rather than silent success.
func (s *Postgres) Delete(ctx context.Context, internalKey string) error {
	key, err := storageKey(internalKey)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM "+tableName+" WHERE internal_key = $1", key)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeBackingStore, "delete identification")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeBackingStore, "delete rows affected")
	}
	if affected == 0 {
		return domainerrors.New(domainerrors.CodeNotFound, "identification not found")
	}
	return nil
}
