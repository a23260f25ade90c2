package snapshot

const (
	// snapshot.ini keys
	SnapshotSectionName = "snapshot"
	VersionKey          = "version"
	DescriptionKey      = "description"

	// [dumpN] sections: raw memory images
	DumpFileSectionPrefix = "dump"
	DumpAddressKey        = "address"
	DumpLengthKey         = "length"
	DumpOffsetKey         = "offset"
	DumpFileKey           = "file"

	// [valueN] sections: values to summarize
	ValueSectionPrefix = "value"
	ValueNameKey       = "name"
	ValueTypeKey       = "type"
	ValueAddressKey    = "address"
)
