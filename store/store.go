// Package store persists the learned action-value table between runs.
package store

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/nstehr/vimy/vimy-scout/learn"
)

// DefaultFile is the table file name used when none is configured.
const DefaultFile = "scout_data.gob.zst"

const formatVersion = 1

// Header is the JSON line at the top of every table file; it lets tools
// inspect a file without decoding the gob body.
type Header struct {
	Version int `json:"version"`
	Actions int `json:"actions"`
	Rows    int `json:"rows"`
}

// FileStore keeps the table in a single zstd-compressed file.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFile
	}
	return &FileStore{Path: path}
}

// Load restores rows from the file into t. A missing file leaves t untouched
// and is not an error.
func (s *FileStore) Load(t *learn.Table) error {
	h, rows, err := ReadTable(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if h.Actions != t.Actions() {
		return fmt.Errorf("load %s: file has %d actions, catalog has %d", s.Path, h.Actions, t.Actions())
	}
	return t.Restore(rows)
}

// Save overwrites the file with every row of t. The write goes to a temp file
// that is renamed into place, so a crash never leaves a truncated table.
func (s *FileStore) Save(t *learn.Table) error {
	rows := t.Rows()
	return WriteTable(s.Path, Header{Version: formatVersion, Actions: t.Actions(), Rows: len(rows)}, rows)
}

func WriteTable(path string, h Header, rows []learn.Row) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, err := json.Marshal(h)
	if err != nil {
		return err
	}
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := gob.NewEncoder(bw).Encode(rows); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func ReadTable(path string) (Header, []learn.Row, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, nil, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return h, nil, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, nil, fmt.Errorf("decode header: %w", err)
	}
	if h.Version != formatVersion {
		return h, nil, fmt.Errorf("unsupported table version %d", h.Version)
	}

	var rows []learn.Row
	if err := gob.NewDecoder(br).Decode(&rows); err != nil {
		return h, nil, fmt.Errorf("gob decode: %w", err)
	}
	return h, rows, nil
}
