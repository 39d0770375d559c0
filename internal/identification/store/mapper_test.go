package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlovtnik/nfe-identifications/pkg/domainerrors"
)

func validRow() row {
	return row{
		internalKeyHex: "b5eb3b675cc64463bb0fa4fc3fb2fd57",
		cUF:            "35",
		cNF:            "12345678",
		natOp:          "Venda de mercadoria",
		mod:            "55",
		serie:          "1",
		nNF:            "123",
		dhEmi:          "2024-01-01 10:00:00.000 -03:00",
		dhSaiEnt:       sql.NullString{String: "2024-01-01 12:30:00.500 -03:00", Valid: true},
		tpNF:           "1",
		idDest:         "1",
		cMunFG:         "3550308",
		tpImp:          "1",
		tpEmis:         "1",
		cDV:            "9",
		tpAmb:          "2",
		finNFe:         "1",
		indFinal:       "1",
		indPres:        "1",
		procEmi:        "0",
		verProc:        "1.0.0",
		createdAt:      "2024-01-01 10:00:01.000 +00:00",
		updatedAt:      "2024-01-01 10:00:01.000 +00:00",
	}
}

func TestRowToRecord(t *testing.T) {
	rec, err := rowToRecord(validRow())
	require.NoError(t, err)

	assert.Equal(t, "b5eb3b67-5cc6-4463-bb0f-a4fc3fb2fd57", rec.InternalKey)
	assert.Equal(t, "35", rec.CUF)
	assert.Equal(t, "123", rec.NNF)

	wantEmi := time.Date(2024, 1, 1, 10, 0, 0, 0, time.FixedZone("", -3*3600))
	assert.True(t, rec.DhEmi.Equal(wantEmi), "dh_emi mismatch: %v", rec.DhEmi)

	require.NotNil(t, rec.DhSaiEnt)
	wantSai := time.Date(2024, 1, 1, 12, 30, 0, 500_000_000, time.FixedZone("", -3*3600))
	assert.True(t, rec.DhSaiEnt.Equal(wantSai), "dh_sai_ent mismatch: %v", rec.DhSaiEnt)

	assert.Nil(t, rec.DhCont)
	assert.Nil(t, rec.XJust)
}

func TestRowToRecordInvalidKey(t *testing.T) {
	r := validRow()
	r.internalKeyHex = "not-hex-at-all"

	_, err := rowToRecord(r)
	require.Error(t, err)
	assert.True(t, domainerrors.HasCode(err, domainerrors.CodeInvalidIdentifier))
}

func TestRowToRecordUnparsableRequiredTimestamp(t *testing.T) {
	r := validRow()
	r.dhEmi = "01/01/2024 10:00"

	_, err := rowToRecord(r)
	require.Error(t, err)
	assert.True(t, domainerrors.HasCode(err, domainerrors.CodeParse),
		"a required timestamp must fail the read, never default to now")
}

func TestRowToRecordUnparsableOptionalTimestamp(t *testing.T) {
	r := validRow()
	r.dhCont = sql.NullString{String: "garbage", Valid: true}

	_, err := rowToRecord(r)
	require.Error(t, err)
	assert.True(t, domainerrors.HasCode(err, domainerrors.CodeParse))
}

func TestRowToRecordAbsentOptionalIsNil(t *testing.T) {
	r := validRow()
	r.dhSaiEnt = sql.NullString{}

	rec, err := rowToRecord(r)
	require.NoError(t, err)
	assert.Nil(t, rec.DhSaiEnt)
}

func TestTimestampRoundTrip(t *testing.T) {
	in := time.Date(2024, 6, 15, 23, 59, 58, 123_000_000, time.FixedZone("", -3*3600))

	out, err := parseTimestamp("dh_emi", formatTimestamp(in))
	require.NoError(t, err)
	assert.True(t, out.Equal(in), "round trip lost precision: %v != %v", out, in)
}

func TestStorageKey(t *testing.T) {
	key, err := storageKey("b5eb3b67-5cc6-4463-bb0f-a4fc3fb2fd57")
	require.NoError(t, err)
	assert.Equal(t, "b5eb3b675cc64463bb0fa4fc3fb2fd57", key)

	_, err = storageKey("zz")
	require.Error(t, err)
	assert.True(t, domainerrors.HasCode(err, domainerrors.CodeInvalidIdentifier))
}

func TestCanonicalKeyLowercases(t *testing.T) {
	key, err := canonicalKey("B5EB3B675CC64463BB0FA4FC3FB2FD57")
	require.NoError(t, err)
	assert.Equal(t, "b5eb3b67-5cc6-4463-bb0f-a4fc3fb2fd57", key)
}
