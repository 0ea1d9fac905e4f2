// Package meshstore persists computed chunk vertex buffers across runs so a
// revisited region does not re-sample the noise source.
package meshstore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Faultbox/planetlod/internal/logger"
)

// ErrNotFound is returned by Get when no entry matches the key.
var ErrNotFound = errors.New("meshstore: not found")

// Key identifies one chunk's geometry. Fingerprint covers the noise
// parameters so changing them invalidates old entries.
type Key struct {
	Grid        string
	Level       int32
	X, Y        int32
	Fingerprint uint64
	NumVertex   int
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d/%d,%d/%x/%d", k.Grid, k.Level, k.X, k.Y, k.Fingerprint, k.NumVertex)
}

type putReq struct {
	key  Key
	blob []byte
}

// Store is a sqlite-backed vertex cache. Reads are synchronous, writes are
// queued and applied by a single writer goroutine.
type Store struct {
	db  *sql.DB
	log *zap.Logger

	enc *zstd.Encoder
	dec *zstd.Decoder

	ch   chan putReq
	wg   sync.WaitGroup
	once sync.Once

	closed  atomic.Bool
	dropped atomic.Int64
	written atomic.Int64
}

// Open opens or creates the store at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty store path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store pragmas: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store schema: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		_ = db.Close()
		return nil, err
	}

	s := &Store{
		db:  db,
		log: logger.Named("meshstore"),
		enc: enc,
		dec: dec,
		ch:  make(chan putReq, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	s.log.Debug("mesh store opened", zap.String("path", path))
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS chunks (
		grid TEXT NOT NULL,
		level INTEGER NOT NULL,
		ix INTEGER NOT NULL,
		iy INTEGER NOT NULL,
		fingerprint INTEGER NOT NULL,
		num_vertex INTEGER NOT NULL,
		data BLOB NOT NULL,
		PRIMARY KEY (grid, level, ix, iy, fingerprint, num_vertex)
	);`)
	return err
}

// Get returns the vertex buffer stored under key.
func (s *Store) Get(key Key) ([]float32, error) {
	if s.closed.Load() {
		return nil, ErrNotFound
	}
	var blob []byte
	err := s.db.QueryRow(
		`SELECT data FROM chunks WHERE grid=? AND level=? AND ix=? AND iy=? AND fingerprint=? AND num_vertex=?`,
		key.Grid, key.Level, key.X, key.Y, int64(key.Fingerprint), key.NumVertex,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	raw, err := s.dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("decode %s: %d bytes is not a float32 array", key, len(raw))
	}
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out, nil
}

// Put queues vertices for storage under key. The slice is encoded before
// Put returns. Entries are dropped when the writer falls behind.
func (s *Store) Put(key Key, vertices []float32) {
	if s == nil || s.closed.Load() {
		return
	}
	raw := make([]byte, len(vertices)*4)
	for i, f := range vertices {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(f))
	}
	select {
	case s.ch <- putReq{key: key, blob: s.enc.EncodeAll(raw, nil)}:
	default:
		s.dropped.Add(1)
	}
}

// Written returns how many entries the writer has committed.
func (s *Store) Written() int64 { return s.written.Load() }

// Dropped returns how many Puts were discarded because the queue was full.
func (s *Store) Dropped() int64 { return s.dropped.Load() }

func (s *Store) loop() {
	ctx := context.Background()
	const insert = `INSERT OR REPLACE INTO chunks(grid,level,ix,iy,fingerprint,num_vertex,data) VALUES(?,?,?,?,?,?,?)`

	for first := range s.ch {
		batch := []putReq{first}
	drain:
		for len(batch) < 256 {
			select {
			case r, ok := <-s.ch:
				if !ok {
					break drain
				}
				batch = append(batch, r)
			default:
				break drain
			}
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			s.log.Warn("mesh store begin failed", zap.Error(err))
			continue
		}
		for _, r := range batch {
			k := r.key
			if _, err := tx.ExecContext(ctx, insert,
				k.Grid, k.Level, k.X, k.Y, int64(k.Fingerprint), k.NumVertex, r.blob); err != nil {
				s.log.Warn("mesh store write failed", zap.Stringer("key", k), zap.Error(err))
			}
		}
		if err := tx.Commit(); err != nil {
			s.log.Warn("mesh store commit failed", zap.Error(err))
			continue
		}
		s.written.Add(int64(len(batch)))
	}
}

// Close flushes queued writes and closes the database.
func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		s.enc.Close()
		s.dec.Close()
		err = s.db.Close()
	})
	return err
}
