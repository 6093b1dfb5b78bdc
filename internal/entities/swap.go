package entities

type SwapProposalRequest struct {
	OfferedSlotID string `json:"offered_slot_id"`
	TargetSlotID  string `json:"target_slot_id"`
}

type SwapDecisionRequest struct {
	Decision string `json:"decision"` // ACCEPT or REJECT
}
