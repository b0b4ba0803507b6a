package viewstate

// Published view-state keys. Once released these names and their value
// formats must stay readable forever; add new keys instead of changing
// existing ones.
const (
	keyDataset  = "ds"
	keyFrom     = "from"
	keyTo       = "to"
	keyChannels = "ch"
	keyKeV      = "kev"
	keyDeadTime = "dt"
	keyMode     = "mode"
	keyScale    = "scale"
	keyOverlay  = "ov"
	keyBins     = "bins"
	keyAmpMin   = "amin"
	keyAmpMax   = "amax"
)
