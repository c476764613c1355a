package ledger

// FileStatus is the review state of a file, or a validator's opinion of it.
// The four colours are the known domain. UpdateFile and validator opinions
// may carry any other value; such values are kept verbatim and reported as
// custom by IsKnown.
type FileStatus string

const (
	StatusRed   FileStatus = "RED"
	StatusAmber FileStatus = "AMBER"
	StatusGreen FileStatus = "GREEN"
	StatusGrey  FileStatus = "GREY"

	// StatusNone is the initial opinion of a validator that has not reviewed yet.
	StatusNone FileStatus = ""
)

// IsKnown reports whether s is one of RED, AMBER, GREEN or GREY.
func (s FileStatus) IsKnown() bool {
	switch s {
	case StatusRed, StatusAmber, StatusGreen, StatusGrey:
		return true
	}
	return false
}

func (s FileStatus) String() string { return string(s) }
