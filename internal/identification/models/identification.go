// Package models defines the NFe identification domain record and its
// input shapes.
package models

import "time"

// Identification is the canonical in-memory representation of one NFe
// identification group (ide).
//
// Invariants:
//   - InternalKey is minted by the repository at creation time, never
//     supplied by the caller, and immutable once assigned.
//   - CreatedAt is set once at insertion and never modified.
//   - UpdatedAt is refreshed by the backing store's clock on every
//     successful update, never by client-supplied values.
type Identification struct {
	InternalKey string     `json:"internal_key"`
	CUF         string     `json:"c_uf"`
	CNF         string     `json:"c_nf"`
	NatOp       string     `json:"nat_op"`
	Mod         string     `json:"mod"`
	Serie       string     `json:"serie"`
	NNF         string     `json:"n_nf"`
	DhEmi       time.Time  `json:"dh_emi"`
	DhSaiEnt    *time.Time `json:"dh_sai_ent,omitempty"`
	DhCont      *time.Time `json:"dh_cont,omitempty"`
	XJust       *string    `json:"x_just,omitempty"`
	TpNF        string     `json:"tp_nf"`
	IDDest      string     `json:"id_dest"`
	CMunFG      string     `json:"c_mun_fg"`
	TpImp       string     `json:"tp_imp"`
	TpEmis      string     `json:"tp_emis"`
	CDV         string     `json:"c_dv"`
	TpAmb       string     `json:"tp_amb"`
	FinNFe      string     `json:"fin_nfe"`
	IndFinal    string     `json:"ind_final"`
	IndPres     string     `json:"ind_pres"`
	ProcEmi     string     `json:"proc_emi"`
	VerProc     string     `json:"ver_proc"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateIdentification carries the caller-supplied fields for a new record.
// The internal key and audit timestamps are server-assigned.
type CreateIdentification struct {
	CUF      string     `json:"c_uf"`
	CNF      string     `json:"c_nf"`
	NatOp    string     `json:"nat_op"`
	Mod      string     `json:"mod"`
	Serie    string     `json:"serie"`
	NNF      string     `json:"n_nf"`
	DhEmi    time.Time  `json:"dh_emi"`
	DhSaiEnt *time.Time `json:"dh_sai_ent,omitempty"`
	DhCont   *time.Time `json:"dh_cont,omitempty"`
	XJust    *string    `json:"x_just,omitempty"`
	TpNF     string     `json:"tp_nf"`
	IDDest   string     `json:"id_dest"`
	CMunFG   string     `json:"c_mun_fg"`
	TpImp    string     `json:"tp_imp"`
	TpEmis   string     `json:"tp_emis"`
	CDV      string     `json:"c_dv"`
	TpAmb    string     `json:"tp_amb"`
	FinNFe   string     `json:"fin_nfe"`
	IndFinal string     `json:"ind_final"`
	IndPres  string     `json:"ind_pres"`
	ProcEmi  string     `json:"proc_emi"`
	VerProc  string     `json:"ver_proc"`
}

// UpdateIdentification carries a partial update. A nil field preserves the
// stored value; a non-nil field overwrites it. The store evaluates this
// column-wise with COALESCE so an omitted field never nulls a column.
type UpdateIdentification struct {
	CUF      *string    `json:"c_uf,omitempty"`
	CNF      *string    `json:"c_nf,omitempty"`
	NatOp    *string    `json:"nat_op,omitempty"`
	Mod      *string    `json:"mod,omitempty"`
	Serie    *string    `json:"serie,omitempty"`
	NNF      *string    `json:"n_nf,omitempty"`
	DhEmi    *time.Time `json:"dh_emi,omitempty"`
	DhSaiEnt *time.Time `json:"dh_sai_ent,omitempty"`
	DhCont   *time.Time `json:"dh_cont,omitempty"`
	XJust    *string    `json:"x_just,omitempty"`
	TpNF     *string    `json:"tp_nf,omitempty"`
	IDDest   *string    `json:"id_dest,omitempty"`
	CMunFG   *string    `json:"c_mun_fg,omitempty"`
	TpImp    *string    `json:"tp_imp,omitempty"`
	TpEmis   *string    `json:"tp_emis,omitempty"`
	CDV      *string    `json:"c_dv,omitempty"`
	TpAmb    *string    `json:"tp_amb,omitempty"`
	FinNFe   *string    `json:"fin_nfe,omitempty"`
	IndFinal *string    `json:"ind_final,omitempty"`
	IndPres  *string    `json:"ind_pres,omitempty"`
	ProcEmi  *string    `json:"proc_emi,omitempty"`
	VerProc  *string    `json:"ver_proc,omitempty"`
}

// IsEmpty reports whether the update supplies no fields at all.
func (u UpdateIdentification) IsEmpty() bool {
	return u.CUF == nil && u.CNF == nil && u.NatOp == nil && u.Mod == nil &&
		u.Serie == nil && u.NNF == nil && u.DhEmi == nil && u.DhSaiEnt == nil &&
		u.DhCont == nil && u.XJust == nil && u.TpNF == nil && u.IDDest == nil &&
		u.CMunFG == nil && u.TpImp == nil && u.TpEmis == nil && u.CDV == nil &&
		u.TpAmb == nil && u.FinNFe == nil && u.IndFinal == nil && u.IndPres == nil &&
		u.ProcEmi == nil && u.VerProc == nil
}
