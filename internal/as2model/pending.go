package as2model

// PendingRecord is persisted by PendingStore keyed on message-id for
// asynchronous MDN reconciliation: the MIC computed at send time, and the
// message's source-file path attribute (AttrSourceFilePath) at send time,
// empty when none was set. No copy of the file is made into a pending
// directory.
type PendingRecord struct {
	MessageID   string
	OriginalMIC string // AS2 wire-form string, "base64(digest), algorithm-id"
	PendingFile string
}
