// Package sensors is the catalog of well-known sensor ids.
//
// Ids are opaque to the decoder and registry; the catalog only gives them
// names, units and plausible ranges for display and for hosts building
// frames.
package sensors

import (
	"fmt"
	"math"
	"sort"
)

// ID identifies a sensor on the wire.
type ID byte

// CPU sensors.
const (
	CPUTempPackage  ID = 0x01
	CPULoadTotal    ID = 0x02
	CPUClock        ID = 0x03
	CPUPowerPackage ID = 0x04
	CPUTempCore     ID = 0x05
	CPULoadCore     ID = 0x06
	CPUPowerCore    ID = 0x07
	CPUTempCCD      ID = 0x08
	CPUVoltage      ID = 0x09
)

// GPU sensors.
const (
	GPUTempCore    ID = 0x10
	GPULoadCore    ID = 0x11
	GPUClockCore   ID = 0x12
	GPUClockMemory ID = 0x13
	GPUPower       ID = 0x14
	GPULoadMemory  ID = 0x15
	GPUFan         ID = 0x16
	GPUTempMemory  ID = 0x17
	GPUTempHotspot ID = 0x18
	GPULoadVideo   ID = 0x19
)

// Memory sensors.
const (
	RAMUsed      ID = 0x20
	RAMAvailable ID = 0x21
	RAMLoad      ID = 0x22
)

// Storage sensors.
const (
	DiskTemp  ID = 0x30
	DiskLoad  ID = 0x31
	DiskRead  ID = 0x32
	DiskWrite ID = 0x33
)

// Network sensors.
const (
	NetUpload   ID = 0x40
	NetDownload ID = 0x41
)

// Motherboard sensors.
const (
	BoardTemp ID = 0x50
	BoardFan1 ID = 0x51
	BoardFan2 ID = 0x52
	BoardFan3 ID = 0x53
)

// Unknown is never assigned to a sensor.
const Unknown ID = 0xff

// Category groups sensors by the hardware they describe.
type Category string

// Categories.
const (
	CategoryCPU     Category = "cpu"
	CategoryGPU     Category = "gpu"
	CategoryMemory  Category = "memory"
	CategoryStorage Category = "storage"
	CategoryNetwork Category = "network"
	CategoryBoard   Category = "board"
)

// Kind describes what a sensor measures.
type Kind int

// Kinds.
const (
	KindOther Kind = iota
	KindTemperature
	KindLoad
	KindClock
	KindPower
	KindVoltage
	KindFan
	KindMemory
	KindThroughput
)

// Info describes a sensor.
type Info struct {
	ID       ID
	Name     string
	Unit     string
	Category Category
	Kind     Kind
}

type valueRange struct {
	min, max float64
}

var kindRanges = map[Kind]valueRange{
	KindTemperature: {-40, 150},
	KindLoad:        {0, 100},
	KindClock:       {0, 10000},
	KindPower:       {0, 1000},
	KindVoltage:     {0, 15},
	KindFan:         {0, 20000},
	KindMemory:      {0, 1024},
	KindThroughput:  {0, math.Inf(1)},
}

var kindUnits = map[Kind]string{
	KindTemperature: "°C",
	KindLoad:        "%",
	KindClock:       "MHz",
	KindPower:       "W",
	KindVoltage:     "V",
	KindFan:         "RPM",
	KindMemory:      "GB",
	KindThroughput:  "KB/s",
}

var catalog = map[ID]Info{}

func define(id ID, name string, cat Category, kind Kind) {
	catalog[id] = Info{ID: id, Name: name, Unit: kindUnits[kind], Category: cat, Kind: kind}
}

func init() {
	define(CPUTempPackage, "CPU Temp", CategoryCPU, KindTemperature)
	define(CPULoadTotal, "CPU Load", CategoryCPU, KindLoad)
	define(CPUClock, "CPU Clock", CategoryCPU, KindClock)
	define(CPUPowerPackage, "CPU Power", CategoryCPU, KindPower)
	define(CPUTempCore, "CPU Core Temp", CategoryCPU, KindTemperature)
	define(CPULoadCore, "CPU Core Load", CategoryCPU, KindLoad)
	define(CPUPowerCore, "CPU Core Power", CategoryCPU, KindPower)
	define(CPUTempCCD, "CPU CCD Temp", CategoryCPU, KindTemperature)
	define(CPUVoltage, "CPU Voltage", CategoryCPU, KindVoltage)

	define(GPUTempCore, "GPU Temp", CategoryGPU, KindTemperature)
	define(GPULoadCore, "GPU Load", CategoryGPU, KindLoad)
	define(GPUClockCore, "GPU Clock", CategoryGPU, KindClock)
	define(GPUClockMemory, "GPU Mem Clock", CategoryGPU, KindClock)
	define(GPUPower, "GPU Power", CategoryGPU, KindPower)
	define(GPULoadMemory, "GPU Memory", CategoryGPU, KindLoad)
	define(GPUFan, "GPU Fan", CategoryGPU, KindFan)
	define(GPUTempMemory, "GPU Mem Temp", CategoryGPU, KindTemperature)
	define(GPUTempHotspot, "GPU Hotspot", CategoryGPU, KindTemperature)
	define(GPULoadVideo, "GPU Video Load", CategoryGPU, KindLoad)

	define(RAMUsed, "RAM Used", CategoryMemory, KindMemory)
	define(RAMAvailable, "RAM Available", CategoryMemory, KindMemory)
	define(RAMLoad, "RAM Load", CategoryMemory, KindLoad)

	define(DiskTemp, "Disk Temp", CategoryStorage, KindTemperature)
	define(DiskLoad, "Disk Load", CategoryStorage, KindLoad)
	define(DiskRead, "Disk Read", CategoryStorage, KindThroughput)
	define(DiskWrite, "Disk Write", CategoryStorage, KindThroughput)

	define(NetUpload, "Net Upload", CategoryNetwork, KindThroughput)
	define(NetDownload, "Net Download", CategoryNetwork, KindThroughput)

	define(BoardTemp, "MB Temp", CategoryBoard, KindTemperature)
	define(BoardFan1, "MB Fan 1", CategoryBoard, KindFan)
	define(BoardFan2, "MB Fan 2", CategoryBoard, KindFan)
	define(BoardFan3, "MB Fan 3", CategoryBoard, KindFan)
}

// Lookup returns the catalog entry of id.
func Lookup(id ID) (Info, bool) {
	info, ok := catalog[id]
	return info, ok
}

// All returns every catalog entry ordered by id.
func All() []Info {
	infos := make([]Info, 0, len(catalog))
	for _, info := range catalog {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Name returns the display name, "Unknown" for ids outside the catalog.
func (id ID) Name() string {
	if info, ok := catalog[id]; ok {
		return info.Name
	}
	return "Unknown"
}

// Unit returns the display unit, empty for ids outside the catalog.
func (id ID) Unit() string {
	return catalog[id].Unit
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return fmt.Sprintf("0x%02x(%s)", byte(id), id.Name())
}

// Plausible reports whether v is a believable value for id. NaN and
// infinities never are, nor is any value of an unknown id.
func (id ID) Plausible(v float32) bool {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	info, ok := catalog[id]
	if !ok {
		return false
	}
	r, ok := kindRanges[info.Kind]
	if !ok {
		return false
	}
	return f >= r.min && f <= r.max
}
