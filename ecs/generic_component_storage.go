package ecs

import "iter"

const (
	genericBlockSize = 64
)

// blockStorage stores values of type T in fixed-size blocks. Blocks are
// heap-allocated individually so a pointer handed out by alloc stays valid
// until the slot is freed, however far the storage grows.
type blockStorage[T any] struct {
	blocks    []*[genericBlockSize]T
	filled    []*[genericBlockSize]bool
	freeSlots []int
	nextIndex int
	count     int
}

// alloc reserves a zeroed slot and returns its index and address.
func (bs *blockStorage[T]) alloc() (int, *T) {
	var index int
	if len(bs.freeSlots) > 0 {
		index = bs.freeSlots[len(bs.freeSlots)-1]
		bs.freeSlots = bs.freeSlots[:len(bs.freeSlots)-1]
	} else {
		index = bs.nextIndex
		bs.nextIndex++
		if index/genericBlockSize >= len(bs.blocks) {
			bs.blocks = append(bs.blocks, new([genericBlockSize]T))
			bs.filled = append(bs.filled, new([genericBlockSize]bool))
		}
	}

	blockIdx := index / genericBlockSize
	slotIdx := index % genericBlockSize
	bs.filled[blockIdx][slotIdx] = true
	bs.count++
	return index, &bs.blocks[blockIdx][slotIdx]
}

// get returns the value at index, or nil if the slot is empty.
func (bs *blockStorage[T]) get(index int) *T {
	if index < 0 {
		return nil
	}

	blockIdx := index / genericBlockSize
	slotIdx := index % genericBlockSize

	if blockIdx >= len(bs.blocks) || !bs.filled[blockIdx][slotIdx] {
		return nil
	}

	return &bs.blocks[blockIdx][slotIdx]
}

// free zeroes the slot and makes it available for reuse.
func (bs *blockStorage[T]) free(index int) bool {
	if bs.get(index) == nil {
		return false
	}

	blockIdx := index / genericBlockSize
	slotIdx := index % genericBlockSize

	var zero T
	bs.blocks[blockIdx][slotIdx] = zero
	bs.filled[blockIdx][slotIdx] = false
	bs.freeSlots = append(bs.freeSlots, index)
	bs.count--
	return true
}

// iter yields every filled slot in index order.
func (bs *blockStorage[T]) iter() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i := 0; i < bs.nextIndex; i++ {
			blockIdx := i / genericBlockSize
			slotIdx := i % genericBlockSize

			if !bs.filled[blockIdx][slotIdx] {
				continue
			}

			if !yield(i, &bs.blocks[blockIdx][slotIdx]) {
				return
			}
		}
	}
}

func (bs *blockStorage[T]) len() int {
	return bs.count
}
