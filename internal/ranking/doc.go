// Package ranking implements the deal feed scoring pipeline.
//
// A ranking request runs five stages in order: candidate retrieval with
// adaptive radius expansion, safety gating (blocks and reports), per-deal
// scoring (personal relevance, engagement quality, recency), diversity and
// perturbation post-processing, and response assembly. The pipeline is
// stateless; all persistent data is read through the source interfaces in
// sources.go, and every derived score lives in a per-request envelope that
// is discarded after assembly.
package ranking
