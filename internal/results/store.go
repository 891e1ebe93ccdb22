// Package results is the durable catalog of effective-area results,
// backed by SQLite. Arrays are stored as little-endian float64 BLOBs and
// the configuration snapshot as a JSON column, so a stored result reloads
// bit-exactly.
package results

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/AnushkaDurg/poinsseta/internal/aeff"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS results (
	result_id      TEXT PRIMARY KEY,
	created_at     TEXT NOT NULL,
	bins           INTEGER NOT NULL,
	azimuths       INTEGER NOT NULL,
	n0             BLOB NOT NULL,
	elevation      BLOB NOT NULL,
	geometric      BLOB NOT NULL,
	pexit          BLOB NOT NULL,
	pdecay         BLOB NOT NULL,
	ptrigger       BLOB NOT NULL,
	effective_area BLOB NOT NULL,
	args_json      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS calc_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	result_id   TEXT,
	seed        INTEGER NOT NULL,
	trials_json TEXT,
	strategy    TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	note        TEXT,
	created_at  TEXT NOT NULL,
	FOREIGN KEY (result_id) REFERENCES results(result_id)
);
`

// #endregion schema

// #region store-struct
// Store manages stored effective-area results in SQLite.
type Store struct {
	db *sql.DB
}

// Summary is one catalog row without the array payloads.
type Summary struct {
	ResultID  string
	CreatedAt time.Time
	Bins      int
	Azimuths  int
	Args      aeff.Args
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStoreWithDB wraps an existing database handle. Used by tests.
func NewStoreWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region save
// Save stores a result and returns its generated ID.
func (s *Store) Save(a *aeff.EffectiveArea) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	argsJSON, err := json.Marshal(a.Args)
	if err != nil {
		return "", fmt.Errorf("marshal args: %w", err)
	}

	bins := len(a.Elevation)
	azimuths := 0
	if bins > 0 {
		azimuths = len(a.EffectiveArea[0])
	}

	flat := make([]float64, 0, bins*azimuths)
	for _, row := range a.EffectiveArea {
		flat = append(flat, row...)
	}

	_, err = s.db.Exec(
		`INSERT INTO results (result_id, created_at, bins, azimuths, n0, elevation,
		                      geometric, pexit, pdecay, ptrigger, effective_area, args_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, now.Format(time.RFC3339Nano), bins, azimuths,
		encodeInts(a.N0), encodeFloats(a.Elevation),
		encodeFloats(a.Geometric), encodeFloats(a.Pexit),
		encodeFloats(a.Pdecay), encodeFloats(a.Ptrigger),
		encodeFloats(flat), string(argsJSON),
	)
	if err != nil {
		return "", fmt.Errorf("insert result: %w", err)
	}
	return id, nil
}

// #endregion save

// #region get
// Get retrieves one stored result by ID.
func (s *Store) Get(id string) (*aeff.EffectiveArea, error) {
	var bins, azimuths int
	var n0, elev, geo, pexit, pdecay, ptrigger, eaFlat []byte
	var argsJSON string
	err := s.db.QueryRow(
		`SELECT bins, azimuths, n0, elevation, geometric, pexit, pdecay, ptrigger,
		        effective_area, args_json
		 FROM results WHERE result_id = ?`, id,
	).Scan(&bins, &azimuths, &n0, &elev, &geo, &pexit, &pdecay, &ptrigger, &eaFlat, &argsJSON)
	if err != nil {
		return nil, fmt.Errorf("get result %s: %w", id, err)
	}

	a := &aeff.EffectiveArea{
		N0:        decodeInts(n0),
		Elevation: decodeFloats(elev),
		Geometric: decodeFloats(geo),
		Pexit:     decodeFloats(pexit),
		Pdecay:    decodeFloats(pdecay),
		Ptrigger:  decodeFloats(ptrigger),
	}
	if err := json.Unmarshal([]byte(argsJSON), &a.Args); err != nil {
		return nil, fmt.Errorf("unmarshal args: %w", err)
	}
	if len(a.N0) != bins || len(a.Elevation) != bins || len(a.Geometric) != bins ||
		len(a.Pexit) != bins || len(a.Pdecay) != bins || len(a.Ptrigger) != bins {
		return nil, fmt.Errorf("result %s: array blobs disagree with the recorded %d bins", id, bins)
	}

	flat := decodeFloats(eaFlat)
	if len(flat) != bins*azimuths {
		return nil, fmt.Errorf("result %s: effective area blob has %d values, want %d",
			id, len(flat), bins*azimuths)
	}
	a.EffectiveArea = make([][]float64, bins)
	for i := 0; i < bins; i++ {
		a.EffectiveArea[i] = flat[i*azimuths : (i+1)*azimuths]
	}
	return a, nil
}

// #endregion get

// #region list
// List returns the most recent catalog entries.
func (s *Store) List(limit int) ([]Summary, error) {
	rows, err := s.db.Query(
		`SELECT result_id, created_at, bins, azimuths, args_json
		 FROM results ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sm Summary
		var createdStr, argsJSON string
		if err := rows.Scan(&sm.ResultID, &createdStr, &sm.Bins, &sm.Azimuths, &argsJSON); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		sm.CreatedAt, err = time.Parse(time.RFC3339Nano, createdStr)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		if err := json.Unmarshal([]byte(argsJSON), &sm.Args); err != nil {
			return nil, fmt.Errorf("unmarshal args: %w", err)
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

// #endregion list

// #region load-many
// LoadMany loads the given stored results and combines them with the
// default unweighted rule. When allowAltitudes is non-empty, results
// whose recorded altitude is not in the allow-list are skipped and
// counted. Zero IDs is an aeff.ErrNoInputs error.
func (s *Store) LoadMany(ids []string, allowAltitudes []float64) (*aeff.EffectiveArea, int, error) {
	if len(ids) == 0 {
		return nil, 0, fmt.Errorf("load many: %w", aeff.ErrNoInputs)
	}

	var combined *aeff.EffectiveArea
	skipped := 0
	for _, id := range ids {
		a, err := s.Get(id)
		if err != nil {
			return nil, skipped, err
		}
		if !altitudeAllowed(a.Args.Altitude, allowAltitudes) {
			skipped++
			continue
		}
		if combined == nil {
			combined = a
			continue
		}
		combined, err = aeff.Combine(combined, a)
		if err != nil {
			return nil, skipped, fmt.Errorf("combine %s: %w", id, err)
		}
	}
	if combined == nil {
		return nil, skipped, fmt.Errorf(
			"all %d stored results skipped by the altitude filter: %w", skipped, aeff.ErrNoInputs)
	}
	return combined, skipped, nil
}

func altitudeAllowed(alt float64, allowed []float64) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if math.Abs(alt-a) <= 1e-6 {
			return true
		}
	}
	return false
}

// #endregion load-many

// #region blob-encoding
func encodeFloats(v []float64) []byte {
	buf := make([]byte, len(v)*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeFloats(b []byte) []float64 {
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v
}

func encodeInts(v []int) []byte {
	buf := make([]byte, len(v)*8)
	for i, n := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(n))
	}
	return buf
}

func decodeInts(b []byte) []int {
	v := make([]int, len(b)/8)
	for i := range v {
		v[i] = int(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v
}

// #endregion blob-encoding
