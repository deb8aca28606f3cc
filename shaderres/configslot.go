package shaderres

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gfxcache/shaderir"
)

// ConfigSlotKind selects how a ConfigSlot's value is produced.
type ConfigSlotKind int

const (
	ConfigImm ConfigSlotKind = iota
	ConfigUserSgpr
	ConfigViewPortOffsetX
	ConfigViewPortOffsetY
	ConfigViewPortOffsetZ
	ConfigViewPortScaleX
	ConfigViewPortScaleY
	ConfigViewPortScaleZ
	ConfigPsInputVGpr
	ConfigVsPrimType
	ConfigVsIndexOffset
	ConfigCsTgIdCompCnt
	ConfigCsInputSGpr
	ConfigMemoryTable
	ConfigImageMemoryTable
	ConfigGds
	ConfigCbCompSwap
	ConfigResourceSlot
)

// ConfigSlot is one fixup the compiled shader declares over its
// per-stage uniform config buffer: a byte offset to patch, and the kind
// of value to patch it with.
type ConfigSlot struct {
	Kind         ConfigSlotKind
	Offset       uint32
	Imm          uint64
	SgprIndex    uint32
	ResourceSlot int
}

// ConfigContext carries the draw-time state a non-ResourceSlot
// ConfigSlot resolves against: viewport transform, per-stage register
// usage, and the device addresses of the memory tables a shader indexes
// by resource slot.
type ConfigContext struct {
	ViewPortOffset       [3]float32
	ViewPortScale        [3]float32
	PsInputVGprMask      uint32
	VsPrimType           uint32
	VsIndexOffset        uint32
	CsTgIdCompCnt        uint32
	CsInputSGprBase      uint32
	GdsBaseOffset        uint32
	CbCompSwap           uint32
	BufferTableAddress   uint64
	ImageTableAddress    uint64
}

// PatchConfigBuffer resolves every slot except ConfigResourceSlot kinds
// into buf at its declared offset, and returns the ConfigResourceSlot
// entries for a later call to ResolveResourceSlots once buildMemoryTable
// has assigned table indices.
func PatchConfigBuffer(buf []byte, slots []ConfigSlot, env shaderir.Env, ctx ConfigContext) ([]ConfigSlot, error) {
	var pending []ConfigSlot

	for _, slot := range slots {
		switch slot.Kind {
		case ConfigResourceSlot:
			pending = append(pending, slot)
			continue
		case ConfigImm:
			writeWord(buf, slot.Offset, uint32(slot.Imm))
		case ConfigUserSgpr:
			v, ok := env.UserSgpr(slot.SgprIndex)
			if !ok {
				return nil, fmt.Errorf("shaderres: config slot at offset %d: user sgpr %d not bound", slot.Offset, slot.SgprIndex)
			}
			writeWord(buf, slot.Offset, uint32(v))
		case ConfigViewPortOffsetX:
			writeFloat(buf, slot.Offset, ctx.ViewPortOffset[0])
		case ConfigViewPortOffsetY:
			writeFloat(buf, slot.Offset, ctx.ViewPortOffset[1])
		case ConfigViewPortOffsetZ:
			writeFloat(buf, slot.Offset, ctx.ViewPortOffset[2])
		case ConfigViewPortScaleX:
			writeFloat(buf, slot.Offset, ctx.ViewPortScale[0])
		case ConfigViewPortScaleY:
			writeFloat(buf, slot.Offset, ctx.ViewPortScale[1])
		case ConfigViewPortScaleZ:
			writeFloat(buf, slot.Offset, ctx.ViewPortScale[2])
		case ConfigPsInputVGpr:
			writeWord(buf, slot.Offset, ctx.PsInputVGprMask)
		case ConfigVsPrimType:
			writeWord(buf, slot.Offset, ctx.VsPrimType)
		case ConfigVsIndexOffset:
			writeWord(buf, slot.Offset, ctx.VsIndexOffset)
		case ConfigCsTgIdCompCnt:
			writeWord(buf, slot.Offset, ctx.CsTgIdCompCnt)
		case ConfigCsInputSGpr:
			writeWord(buf, slot.Offset, ctx.CsInputSGprBase)
		case ConfigMemoryTable:
			writeDWord(buf, slot.Offset, ctx.BufferTableAddress)
		case ConfigImageMemoryTable:
			writeDWord(buf, slot.Offset, ctx.ImageTableAddress)
		case ConfigGds:
			writeWord(buf, slot.Offset, ctx.GdsBaseOffset)
		case ConfigCbCompSwap:
			writeWord(buf, slot.Offset, ctx.CbCompSwap)
		default:
			return nil, fmt.Errorf("shaderres: config slot at offset %d: unknown kind %d", slot.Offset, slot.Kind)
		}
	}

	return pending, nil
}

// ResolveResourceSlots patches the ConfigResourceSlot fixups PatchConfigBuffer
// deferred: each writes the device address of the memory-table slot that
// result.SlotResources resolved its declared resource to. Call after
// BuildMemoryTable and BuildImageMemoryTable have populated
// result.SlotResources.
func ResolveResourceSlots(buf []byte, pending []ConfigSlot, result *LoadResult, bufferTable, imageTable MemoryTable) error {
	for _, slot := range pending {
		idx, ok := result.SlotResources[slot.ResourceSlot]
		if !ok {
			return fmt.Errorf("shaderres: config slot at offset %d: resource slot %d has no assigned table index", slot.Offset, slot.ResourceSlot)
		}

		table := bufferTable
		if result.ResourceSlotIsImage[slot.ResourceSlot] {
			table = imageTable
		}
		if idx < 0 || idx >= len(table) {
			return fmt.Errorf("shaderres: config slot at offset %d: table index %d out of range", slot.Offset, idx)
		}

		writeDWord(buf, slot.Offset, table[idx].DeviceAddress)
	}
	return nil
}

func writeWord(buf []byte, offset uint32, v uint32) {
	binary.LittleEndian.PutUint32(buf[offset:], v)
}

func writeDWord(buf []byte, offset uint32, v uint64) {
	binary.LittleEndian.PutUint64(buf[offset:], v)
}

func writeFloat(buf []byte, offset uint32, v float32) {
	writeWord(buf, offset, math.Float32bits(v))
}
