package ranking

import (
	"context"
)

// Gate names used in logs and metrics labels.
const (
	gateBlock  = "block"
	gateReport = "report"
)

// applyBlockGate drops candidates authored by users the requester has
// blocked. On lookup failure the gate is a no-op: candidates pass through
// unfiltered rather than the whole feed request failing. The failure is
// logged and counted.
func (s *Service) applyBlockGate(ctx context.Context, userID string, candidates []*Candidate) []*Candidate {
	blockedList, err := s.sources.Blocks.BlockedBy(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "blocked-user lookup failed, gate passing through",
			"gate", gateBlock,
			"user_id", userID,
			"error", err)
		s.metrics.IncGateFailOpen(gateBlock)
		return candidates
	}
	if len(blockedList) == 0 {
		return candidates
	}

	blocked := make(map[string]struct{}, len(blockedList))
	for _, id := range blockedList {
		blocked[id] = struct{}{}
	}

	kept := make([]*Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, isBlocked := blocked[c.Deal.AuthorID]; isBlocked {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// applyReportGate drops candidates whose aggregate report count has
// reached the threshold, or that the requester personally reported
// (even once). Fails open identically to the block gate on lookup error.
func (s *Service) applyReportGate(ctx context.Context, userID string, candidates []*Candidate) []*Candidate {
	dealIDs := make([]string, len(candidates))
	for i, c := range candidates {
		dealIDs[i] = c.Deal.ID
	}

	counts, err := s.sources.Reports.CountByDeals(ctx, dealIDs)
	if err != nil {
		s.logger.WarnContext(ctx, "report-count lookup failed, gate passing through",
			"gate", gateReport,
			"user_id", userID,
			"error", err)
		s.metrics.IncGateFailOpen(gateReport)
		return candidates
	}

	selfReported, err := s.sources.Reports.ReportedBy(ctx, dealIDs, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "self-report lookup failed, gate passing through",
			"gate", gateReport,
			"user_id", userID,
			"error", err)
		s.metrics.IncGateFailOpen(gateReport)
		return candidates
	}

	self := make(map[string]struct{}, len(selfReported))
	for _, id := range selfReported {
		self[id] = struct{}{}
	}

	kept := make([]*Candidate, 0, len(candidates))
	for _, c := range candidates {
		if counts[c.Deal.ID] >= s.cfg.ReportThreshold {
			continue
		}
		if _, reported := self[c.Deal.ID]; reported {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}
