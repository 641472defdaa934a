package world

// TypeID identifies a block or fluid type in the registry.
type TypeID uint16

// BlockState is a block type id plus 48 bits of metadata packed into a word.
// The zero value is the empty (air) state.
type BlockState uint64

// FluidState uses the same packing as BlockState. The zero value means no fluid.
type FluidState uint64

const metaBits = 48
const metaMask = 1<<metaBits - 1

// NewBlockState packs a type id and metadata.
func NewBlockState(id TypeID, meta uint64) BlockState {
	return BlockState(uint64(id)<<metaBits | meta&metaMask)
}

// ID returns the block type id.
func (s BlockState) ID() TypeID { return TypeID(s >> metaBits) }

// Meta returns the metadata bits.
func (s BlockState) Meta() uint64 { return uint64(s) & metaMask }

// IsEmpty reports whether the state is air.
func (s BlockState) IsEmpty() bool { return s == 0 }

// NewFluidState packs a fluid type id and metadata (typically the level).
func NewFluidState(id TypeID, meta uint64) FluidState {
	return FluidState(uint64(id)<<metaBits | meta&metaMask)
}

// ID returns the fluid type id.
func (s FluidState) ID() TypeID { return TypeID(s >> metaBits) }

// Meta returns the metadata bits.
func (s FluidState) Meta() uint64 { return uint64(s) & metaMask }

// IsEmpty reports whether there is no fluid.
func (s FluidState) IsEmpty() bool { return s == 0 }

// Face identifies a face of a block
type Face int

const (
	FaceNorth Face = iota // -Z
	FaceSouth             // +Z
	FaceEast              // +X
	FaceWest              // -X
	FaceTop               // +Y
	FaceBottom            // -Y
)

// Faces lists all six faces in a fixed order.
var Faces = [6]Face{FaceNorth, FaceSouth, FaceEast, FaceWest, FaceTop, FaceBottom}

// Offset returns the unit step along the face normal.
func (f Face) Offset() (dx, dy, dz int) {
	switch f {
	case FaceNorth:
		return 0, 0, -1
	case FaceSouth:
		return 0, 0, 1
	case FaceEast:
		return 1, 0, 0
	case FaceWest:
		return -1, 0, 0
	case FaceTop:
		return 0, 1, 0
	case FaceBottom:
		return 0, -1, 0
	}
	return 0, 0, 0
}

// Opposite returns the face pointing the other way.
func (f Face) Opposite() Face {
	switch f {
	case FaceNorth:
		return FaceSouth
	case FaceSouth:
		return FaceNorth
	case FaceEast:
		return FaceWest
	case FaceWest:
		return FaceEast
	case FaceTop:
		return FaceBottom
	default:
		return FaceTop
	}
}

func (f Face) String() string {
	switch f {
	case FaceNorth:
		return "north"
	case FaceSouth:
		return "south"
	case FaceEast:
		return "east"
	case FaceWest:
		return "west"
	case FaceTop:
		return "top"
	case FaceBottom:
		return "bottom"
	}
	return "unknown"
}

// MeshPriority orders remesh requests. Lower values are more urgent.
type MeshPriority uint8

const (
	PriorityPlayerInteract MeshPriority = iota // blocks placed or broken by the player
	PriorityFluidUpdate
	PriorityBlockUpdate
	PriorityChunkUnload // a neighbour was unloaded
	PriorityChunkLoad
)

func (p MeshPriority) String() string {
	switch p {
	case PriorityPlayerInteract:
		return "player_interact"
	case PriorityFluidUpdate:
		return "fluid_update"
	case PriorityBlockUpdate:
		return "block_update"
	case PriorityChunkUnload:
		return "chunk_unload"
	case PriorityChunkLoad:
		return "chunk_load"
	}
	return "unknown"
}

// ProxyHandle is a non-owning reference to a chunk's render proxy. It
// resolves only while the proxy it was issued for is still registered.
type ProxyHandle struct {
	Index uint32
	Gen   uint32
}

// Valid reports whether the handle was ever issued.
func (h ProxyHandle) Valid() bool { return h.Gen != 0 }
