package store

import (
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/zlovtnik/nfe-identifications/internal/identification/models"
	"github.com/zlovtnik/nfe-identifications/pkg/domainerrors"
)

// Timestamp columns are exchanged with the store as fixed-format strings
// with millisecond precision and an explicit offset. The read format must
// match the write format per column; both sides of the round trip use the
// layouts below and nothing else.
const (
	// tsLayout is the Go layout for timestamp column values.
	tsLayout = "2006-01-02 15:04:05.000 -07:00"
	// tsFormatSQL is the matching Postgres to_char format.
	tsFormatSQL = "YYYY-MM-DD HH24:MI:SS.MS TZH:TZM"
	// dateLayout is the layout for the emission-date filter value.
	dateLayout = "2006-01-02"
)

// row mirrors the select column list in order. Timestamps arrive as
// strings; optional columns as NullString.
type row struct {
	internalKeyHex string
	cUF            string
	cNF            string
	natOp          string
	mod            string
	serie          string
	nNF            string
	dhEmi          string
	dhSaiEnt       sql.NullString
	dhCont         sql.NullString
	xJust          sql.NullString
	tpNF           string
	idDest         string
	cMunFG         string
	tpImp          string
	tpEmis         string
	cDV            string
	tpAmb          string
	finNFe         string
	indFinal       string
	indPres        string
	procEmi        string
	verProc        string
	createdAt      string
	updatedAt      string
}

// scanTargets returns the scan destinations matching selectColumns order.
func (r *row) scanTargets() []any {
	return []any{
		&r.internalKeyHex, &r.cUF, &r.cNF, &r.natOp, &r.mod, &r.serie, &r.nNF,
		&r.dhEmi, &r.dhSaiEnt, &r.dhCont, &r.xJust,
		&r.tpNF, &r.idDest, &r.cMunFG, &r.tpImp, &r.tpEmis, &r.cDV, &r.tpAmb,
		&r.finNFe, &r.indFinal, &r.indPres, &r.procEmi, &r.verProc,
		&r.createdAt, &r.updatedAt,
	}
}

// rowToRecord converts a storage row into the domain record. A stored key
// that fails canonical parsing is fatal for the row, as is any timestamp
// value that is present but unparsable. Absent optional timestamps map to
// nil without error.
func rowToRecord(r row) (models.Identification, error) {
	key, err := canonicalKey(r.internalKeyHex)
	if err != nil {
		return models.Identification{}, err
	}

	dhEmi, err := parseTimestamp("dh_emi", r.dhEmi)
	if err != nil {
		return models.Identification{}, err
	}
	dhSaiEnt, err := parseOptionalTimestamp("dh_sai_ent", r.dhSaiEnt)
	if err != nil {
		return models.Identification{}, err
	}
	dhCont, err := parseOptionalTimestamp("dh_cont", r.dhCont)
	if err != nil {
		return models.Identification{}, err
	}
	createdAt, err := parseTimestamp("created_at", r.createdAt)
	if err != nil {
		return models.Identification{}, err
	}
	updatedAt, err := parseTimestamp("updated_at", r.updatedAt)
	if err != nil {
		return models.Identification{}, err
	}

	var xJust *string
	if r.xJust.Valid {
		v := r.xJust.String
		xJust = &v
	}

	return models.Identification{
		InternalKey: key,
		CUF:         r.cUF,
		CNF:         r.cNF,
		NatOp:       r.natOp,
		Mod:         r.mod,
		Serie:       r.serie,
		NNF:         r.nNF,
		DhEmi:       dhEmi,
		DhSaiEnt:    dhSaiEnt,
		DhCont:      dhCont,
		XJust:       xJust,
		TpNF:        r.tpNF,
		IDDest:      r.idDest,
		CMunFG:      r.cMunFG,
		TpImp:       r.tpImp,
		TpEmis:      r.tpEmis,
		CDV:         r.cDV,
		TpAmb:       r.tpAmb,
		FinNFe:      r.finNFe,
		IndFinal:    r.indFinal,
		IndPres:     r.indPres,
		ProcEmi:     r.procEmi,
		VerProc:     r.verProc,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// canonicalKey renders a stored 32-char hex key in canonical hyphenated
// form. uuid.Parse accepts both shapes, so this also validates.
func canonicalKey(hexKey string) (string, error) {
	u, err := uuid.Parse(hexKey)
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeInvalidIdentifier, "stored internal key is not a valid identifier")
	}
	return u.String(), nil
}

// storageKey converts a canonical identifier into the 32-char lowercase hex
// form the store indexes by. Rejects anything uuid.Parse does not accept in
// canonical hyphenated form.
func storageKey(canonical string) (string, error) {
	u, err := uuid.Parse(canonical)
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeInvalidIdentifier, "malformed identifier")
	}
	return hex.EncodeToString(u[:]), nil
}

func parseTimestamp(column, value string) (time.Time, error) {
	t, err := time.Parse(tsLayout, value)
	if err != nil {
		return time.Time{}, domainerrors.Wrap(err, domainerrors.CodeParse, "unparsable "+column+" timestamp")
	}
	return t, nil
}

// parseOptionalTimestamp maps NULL to nil. Presence with an unparsable
// value is an error, never a silent fallback.
func parseOptionalTimestamp(column string, value sql.NullString) (*time.Time, error) {
	if !value.Valid {
		return nil, nil
	}
	t, err := parseTimestamp(column, value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// formatTimestamp renders a timestamp in the single write format.
func formatTimestamp(t time.Time) string {
	return t.Format(tsLayout)
}

// formatOptionalTimestamp renders an optional timestamp, mapping nil to a
// NULL parameter.
func formatOptionalTimestamp(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTimestamp(*t), Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
