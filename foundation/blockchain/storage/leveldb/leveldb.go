// Package leveldb implements the ability to read and write blocks to a
// LevelDB database keyed by block number.
package leveldb

import (
	"encoding/binary"
	"encoding/json"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	ldbErrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// ErrNotFound is returned when a block number is not in the database.
var ErrNotFound = errors.New("block does not exist")

// blockPrefix namespaces the block keys inside the database.
var blockPrefix = []byte("blk/")

// options returns the leveldb options used for opening a database.
func options() *opt.Options {
	return &opt.Options{
		Compression: opt.SnappyCompression,
	}
}

// LevelDB represents the serialization implementation for reading and storing
// blocks in a leveldb database. This implements the database.Storage interface.
type LevelDB struct {
	path string
	ldb  *leveldb.DB
}

// New opens a leveldb instance defined by the given path. If it doesn't
// exist, it's created.
func New(path string, ev database.EventHandler) (*LevelDB, error) {
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	ldb, err := leveldb.OpenFile(path, options())

	// If the database is corrupted, attempt to recover.
	var corrupted *ldbErrors.ErrCorrupted
	if errors.As(err, &corrupted) {
		ev("leveldb: New: WARNING: corruption detected for path %s: %s", path, err)

		ldb, err = leveldb.RecoverFile(path, options())
		if err != nil {
			return nil, errors.Wrapf(err, "recovering leveldb at %s", path)
		}

		ev("leveldb: New: recovered from corruption for path %s", path)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "opening leveldb at %s", path)
	}

	return &LevelDB{path: path, ldb: ldb}, nil
}

// Close closes the leveldb instance.
func (db *LevelDB) Close() error {
	return db.ldb.Close()
}

// Write takes the specified database block and stores it under its
// block number.
func (db *LevelDB) Write(blockData database.BlockData) error {
	data, err := json.Marshal(blockData)
	if err != nil {
		return errors.Wrapf(err, "encoding block %d", blockData.Number)
	}

	if err := db.ldb.Put(key(blockData.Number), data, nil); err != nil {
		return errors.Wrapf(err, "writing block %d", blockData.Number)
	}

	return nil
}

// GetBlock locates and returns the contents of the specified block by number.
func (db *LevelDB) GetBlock(num uint64) (database.BlockData, error) {
	data, err := db.ldb.Get(key(num), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return database.BlockData{}, errors.Wrapf(ErrNotFound, "block %d", num)
		}
		return database.BlockData{}, errors.Wrapf(err, "reading block %d", num)
	}

	var blockData database.BlockData
	if err := json.Unmarshal(data, &blockData); err != nil {
		return database.BlockData{}, errors.Wrapf(err, "decoding block %d", num)
	}

	return blockData, nil
}

// ForEach returns an iterator to walk through all the blocks
// starting with block number 1.
func (db *LevelDB) ForEach() database.Iterator {
	return &levelIterator{db: db}
}

// Reset deletes every block from the database.
func (db *LevelDB) Reset() error {
	iter := db.ldb.NewIterator(nil, nil)
	defer iter.Release()

	batch := new(leveldb.Batch)
	for iter.Next() {
		batch.Delete(iter.Key())
	}
	if err := iter.Error(); err != nil {
		return errors.Wrap(err, "iterating blocks")
	}

	return errors.Wrap(db.ldb.Write(batch, nil), "deleting blocks")
}

// key forms the database key for the specified block. Big endian keeps
// the keys sorted by block number.
func key(num uint64) []byte {
	k := make([]byte, len(blockPrefix)+8)
	copy(k, blockPrefix)
	binary.BigEndian.PutUint64(k[len(blockPrefix):], num)

	return k
}

// =============================================================================

// levelIterator represents the iteration implementation for walking
// through and reading blocks in leveldb. This implements the database
// Iterator interface.
type levelIterator struct {
	db      *LevelDB // Access to the leveldb storage API.
	current uint64   // Current block number being iterated over.
	eoc     bool     // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from leveldb.
func (li *levelIterator) Next() (database.BlockData, error) {
	if li.eoc {
		return database.BlockData{}, errors.New("end of chain")
	}

	li.current++
	blockData, err := li.db.GetBlock(li.current)
	if errors.Is(err, ErrNotFound) {
		li.eoc = true
	}

	return blockData, err
}

// Done returns the end of chain value.
func (li *levelIterator) Done() bool {
	return li.eoc
}
