package travel

// Tier is the severity used to colour a status badge.
type Tier string

const (
	TierNeutral Tier = "neutral"
	TierWarning Tier = "warning"
	TierSuccess Tier = "success"
	TierDanger  Tier = "danger"
	TierUnknown Tier = "unknown"
)

// Badge is the display classification of a status value.
// MessageID is empty for unrecognized statuses; Label then carries the raw value.
type Badge struct {
	Status    string `json:"status"`
	Tier      Tier   `json:"tier"`
	MessageID string `json:"-"`
	Label     string `json:"label"`
}

// Classify maps a request status to its badge. Unrecognized values fall back
// to the unknown tier and display the raw string.
func Classify(raw string) Badge {
	switch Status(raw) {
	case StatusSubmitted:
		return Badge{Status: raw, Tier: TierWarning, MessageID: "status.submitted", Label: "Pending Approval"}
	case StatusPMApproved:
		return Badge{Status: raw, Tier: TierSuccess, MessageID: "status.pm_approved", Label: "Approved"}
	case StatusPMRejected:
		return Badge{Status: raw, Tier: TierDanger, MessageID: "status.pm_rejected", Label: "Rejected"}
	case StatusOperationsCompleted:
		return Badge{Status: raw, Tier: TierSuccess, MessageID: "status.operations_completed", Label: "Completed"}
	case StatusCancelled:
		return Badge{Status: raw, Tier: TierNeutral, MessageID: "status.cancelled", Label: "Cancelled"}
	default:
		return Badge{Status: raw, Tier: TierUnknown, Label: raw}
	}
}

// ClassifyDocument maps a derived document status to its badge.
func ClassifyDocument(s DocumentStatus) Badge {
	switch s {
	case DocumentExpired:
		return Badge{Status: string(s), Tier: TierDanger, MessageID: "document.expired", Label: "Expired"}
	case DocumentExpiringSoon:
		return Badge{Status: string(s), Tier: TierWarning, MessageID: "document.expiring_soon", Label: "Expiring Soon"}
	case DocumentValid:
		return Badge{Status: string(s), Tier: TierSuccess, MessageID: "document.valid", Label: "Valid"}
	default:
		return Badge{Status: string(s), Tier: TierUnknown, Label: string(s)}
	}
}
