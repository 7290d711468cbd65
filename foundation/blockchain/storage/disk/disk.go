// Package disk stores every block in its own indented JSON file named after
// the block number, so a stored chain can be read and edited by hand.
package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Disk keeps the block files under a single directory.
type Disk struct {
	dir string
}

// New opens the directory, creating it when it doesn't exist.
func New(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	return &Disk{dir: dir}, nil
}

// Close has nothing to release since files are only open while being
// read or written.
func (d *Disk) Close() error {
	return nil
}

// Write stores the block in <number>.json. The data goes to a temporary
// file first and is renamed into place, so a crash never leaves a partly
// written block behind.
func (d *Disk) Write(blockData database.BlockData) error {
	data, err := json.MarshalIndent(blockData, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding block %d: %w", blockData.Number, err)
	}

	tmp, err := os.CreateTemp(d.dir, ".block-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing block %d: %w", blockData.Number, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), d.blockFile(blockData.Number))
}

// GetBlock reads and decodes the file of the specified block. A block that
// was never written returns an error matching fs.ErrNotExist.
func (d *Disk) GetBlock(num uint64) (database.BlockData, error) {
	data, err := os.ReadFile(d.blockFile(num))
	if err != nil {
		return database.BlockData{}, fmt.Errorf("block %d: %w", num, err)
	}

	var blockData database.BlockData
	if err := json.Unmarshal(data, &blockData); err != nil {
		return database.BlockData{}, fmt.Errorf("decoding block %d: %w", num, err)
	}

	return blockData, nil
}

// ForEach walks the block files from number 1 until a number is missing.
func (d *Disk) ForEach() database.Iterator {
	return &iterator{d: d}
}

// Reset removes every block file.
func (d *Disk) Reset() error {
	if err := os.RemoveAll(d.dir); err != nil {
		return err
	}

	return os.MkdirAll(d.dir, 0755)
}

func (d *Disk) blockFile(num uint64) string {
	return filepath.Join(d.dir, strconv.FormatUint(num, 10)+".json")
}

// =============================================================================

type iterator struct {
	d    *Disk
	last uint64
	done bool
}

// Next reads the following block file. A missing file ends the walk, any
// other failure is returned without ending it.
func (it *iterator) Next() (database.BlockData, error) {
	if it.done {
		return database.BlockData{}, fs.ErrNotExist
	}

	it.last++
	blockData, err := it.d.GetBlock(it.last)
	if errors.Is(err, fs.ErrNotExist) {
		it.done = true
	}

	return blockData, err
}

// Done reports whether the end of the chain was reached.
func (it *iterator) Done() bool {
	return it.done
}
