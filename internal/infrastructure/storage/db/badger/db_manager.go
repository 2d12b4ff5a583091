package dbbadger

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/timshannon/badgerhold/v4"
)

const historyLocation = "history"

// DbManager holds all the badgerhold stores in a single data structure.
type DbManager struct {
	Store *badgerhold.Store
}

// NewDbManager opens (or creates if not exists) the badger store on disk. It
// expects a base data dir and an optional logger. An empty data dir opens an
// in-memory store.
func NewDbManager(baseDbDir string, logger badger.Logger) (*DbManager, error) {
	dbDir := ""
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, historyLocation)
	}

	historyDb, err := createDb(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	return &DbManager{
		Store: historyDb,
	}, nil
}

// Close closes the underlying stores.
func (d *DbManager) Close() error {
	return d.Store.Close()
}

// JSONEncode encodes badgerhold values as JSON, so that stored entries stay
// readable with any badger tool.
func JSONEncode(value interface{}) ([]byte, error) {
	return json.Marshal(value)
}

// JSONDecode ...
func JSONDecode(data []byte, value interface{}) error {
	return json.Unmarshal(data, value)
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	opts := badger.DefaultOptions(dbDir)
	if len(dbDir) <= 0 {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = logger
	opts.Compression = options.ZSTD

	return badgerhold.Open(badgerhold.Options{
		Encoder:          JSONEncode,
		Decoder:          JSONDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
