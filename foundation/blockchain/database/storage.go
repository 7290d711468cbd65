package database

// BlockData represents what is written to storage. The genesis block is
// number 0 and is never stored, so stored blocks start at number 1.
type BlockData struct {
	Number uint64 `json:"number"`
	Block  Block  `json:"block"`
}

// NewBlockData constructs the value to serialize to storage.
func NewBlockData(number uint64, block Block) BlockData {
	return BlockData{
		Number: number,
		Block:  block.Clone(),
	}
}

// Storage interface represents the behavior required to be implemented by any
// package providing support for reading and writing the blockchain.
type Storage interface {
	Write(blockData BlockData) error
	GetBlock(num uint64) (BlockData, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}
