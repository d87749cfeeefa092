package model

// SystemResources mirrors one `/system/resource/print` reply.
//
// Memory and disk counters are byte counts.
type SystemResources struct {
	Uptime          Duration `ros:"uptime"`
	Version         string   `ros:"version"`
	BuildTime       string   `ros:"build-time"`
	FactorySoftware string   `ros:"factory-software"`

	FreeMemory  uint64 `ros:"free-memory"`
	TotalMemory uint64 `ros:"total-memory"`

	CPU      string `ros:"cpu"`
	CPUCount uint8  `ros:"cpu-count"`
	CPULoad  uint16 `ros:"cpu-load"`

	FreeHDDSpace  uint64 `ros:"free-hdd-space"`
	TotalHDDSpace uint64 `ros:"total-hdd-space"`

	ArchitectureName string `ros:"architecture-name"`
	BoardName        string `ros:"board-name"`
	Platform         string `ros:"platform"`
}

// Identity mirrors one `/system/identity/print` reply.
type Identity struct {
	Name string `ros:"name"`
}

// ActiveUser is one row of a `/user/active/listen` stream. Rows arrive
// in two shapes: a full record when a session opens, and a tombstone
// carrying only ID and Dead=true when it closes. Fields other than ID
// and Dead keep their zero value on tombstones.
type ActiveUser struct {
	ID   string `ros:".id"`
	Dead bool   `ros:".dead"`

	When    string `ros:"when"`
	Name    string `ros:"name"`
	Address string `ros:"address"`
	Via     string `ros:"via"`
	Group   string `ros:"group"`
	Radius  bool   `ros:"radius"`
}

// InterfaceChange is one row of an `/interface/listen` stream. The
// device reports only the internal ID of the entry that changed; the
// current state has to be fetched separately.
type InterfaceChange struct {
	ID string `ros:".id"`
}

// Interface mirrors one `/interface/print` reply. Counters the device
// omits for some interface types decode as nil.
type Interface struct {
	ID   string `ros:".id"`
	Name string `ros:"name"`
	Type string `ros:"type"`

	MTU       MTU    `ros:"mtu"`
	ActualMTU uint16 `ros:"actual-mtu"`

	LastLinkUpTime string `ros:"last-link-up-time"`
	LinkDowns      uint32 `ros:"link-downs"`

	RxByte   uint64 `ros:"rx-byte"`
	TxByte   uint64 `ros:"tx-byte"`
	RxPacket uint64 `ros:"rx-packet"`
	TxPacket uint64 `ros:"tx-packet"`

	RxDrop      *uint64 `ros:"rx-drop"`
	TxDrop      *uint64 `ros:"tx-drop"`
	TxQueueDrop uint64  `ros:"tx-queue-drop"`
	RxError     *uint64 `ros:"rx-error"`
	TxError     *uint64 `ros:"tx-error"`

	FPRxByte   uint64 `ros:"fp-rx-byte"`
	FPTxByte   uint64 `ros:"fp-tx-byte"`
	FPRxPacket uint64 `ros:"fp-rx-packet"`
	FPTxPacket uint64 `ros:"fp-tx-packet"`

	Running  bool `ros:"running"`
	Slave    bool `ros:"slave"`
	Disabled bool `ros:"disabled"`
}
